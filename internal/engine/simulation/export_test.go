package simulation

import "github.com/KirkDiggler/deadgrid/internal/entities/survival"

// StateForTest exposes the owned state to the external test package
func (s *Simulation) StateForTest() *State {
	return s.state
}

// SetWeatherForTest changes the sky without a draw
func (s *Simulation) SetWeatherForTest(w survival.Weather) {
	s.setWeather(w)
}
