package survival

// GameEvent is a generated narrative event awaiting exactly one choice
type GameEvent struct {
	ID          string   `json:"id"`
	TemplateID  string   `json:"template_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Choices     []Choice `json:"choices"`
}

// Choice returns the choice with the given id
func (e *GameEvent) Choice(id string) (*Choice, bool) {
	for i := range e.Choices {
		if e.Choices[i].ID == id {
			return &e.Choices[i], true
		}
	}
	return nil, false
}

// Choice is one option of a GameEvent.
// SuccessRate of zero or one means Outcome always applies.
type Choice struct {
	ID          string   `json:"id"`
	Text        string   `json:"text"`
	SuccessRate float64  `json:"success_rate,omitempty"`
	Outcome     Outcome  `json:"outcome"`
	Failure     *Outcome `json:"failure,omitempty"`
}

// Outcome is what happens when a choice resolves
type Outcome struct {
	Description  string            `json:"description"`
	Effects      Effects           `json:"effects"`
	SpawnThreats int               `json:"spawn_threats,omitempty"`
	Reputation   []ReputationDelta `json:"reputation,omitempty"`
}

// Effects are stat deltas applied by an outcome
type Effects struct {
	Health    int `json:"health,omitempty" yaml:"health"`
	Ammo      int `json:"ammo,omitempty" yaml:"ammo"`
	Food      int `json:"food,omitempty" yaml:"food"`
	Water     int `json:"water,omitempty" yaml:"water"`
	Medicine  int `json:"medicine,omitempty" yaml:"medicine"`
	Materials int `json:"materials,omitempty" yaml:"materials"`
	Survivors int `json:"survivors,omitempty" yaml:"survivors"`
}

// ReputationDelta shifts one faction's reputation
type ReputationDelta struct {
	Faction FactionID `json:"faction" yaml:"faction"`
	Delta   int       `json:"delta" yaml:"delta"`
}
