package survival

// StepKind classifies a single state delta
type StepKind string

// Step kinds emitted by the scheduler
const (
	StepMoved           StepKind = "moved"
	StepDetected        StepKind = "detected"
	StepAttacked        StepKind = "attacked"
	StepCounter         StepKind = "counter_attacked"
	StepKilled          StepKind = "killed"
	StepTurned          StepKind = "turned"
	StepLootDropped     StepKind = "loot_dropped"
	StepPickedUp        StepKind = "picked_up"
	StepItemUsed        StepKind = "item_used"
	StepScavenged       StepKind = "scavenged"
	StepTraded          StepKind = "traded"
	StepCampEstablished StepKind = "camp_established"
	StepCampReinforced  StepKind = "camp_reinforced"
	StepCampDefended    StepKind = "camp_defended"
	StepCampBreached    StepKind = "camp_breached"
	StepRecruited       StepKind = "recruited"
	StepConsumed        StepKind = "consumed"
	StepCasualty        StepKind = "casualty"
	StepHealed          StepKind = "healed"
	StepSpawned         StepKind = "spawned"
	StepReputation      StepKind = "reputation_changed"
	StepDayStarted      StepKind = "day_started"
	StepEventTriggered  StepKind = "event_triggered"
	StepChoiceResolved  StepKind = "choice_resolved"
	StepWaited          StepKind = "waited"
	StepGameOver        StepKind = "game_over"
	StepMissed          StepKind = "missed"
	StepWeather         StepKind = "weather_changed"
	StepSpread          StepKind = "spread"
	StepCollapsed       StepKind = "collapsed"
	StepHorde           StepKind = "horde"
	StepSupplyDrop      StepKind = "supply_drop"
)

// Step is one ordered state delta. Presentation layers animate steps
// independently of the core.
type Step struct {
	Phase    Phase     `json:"phase"`
	Kind     StepKind  `json:"kind"`
	ActorID  string    `json:"actor_id,omitempty"`
	TargetID string    `json:"target_id,omitempty"`
	From     *Position `json:"from,omitempty"`
	To       *Position `json:"to,omitempty"`
	Amount   int       `json:"amount,omitempty"`
	Detail   string    `json:"detail,omitempty"`
}

// Snapshot is a read-only copy of the simulation state
type Snapshot struct {
	Width        int               `json:"width"`
	Height       int               `json:"height"`
	Terrain      []string          `json:"terrain"`
	Phase        Phase             `json:"phase"`
	Day          int               `json:"day"`
	Turn         int               `json:"turn"`
	TurnsPerDay  int               `json:"turns_per_day"`
	Weather      Weather           `json:"weather"`
	Player       PlayerView        `json:"player"`
	Camp         *Camp             `json:"camp,omitempty"`
	Resources    Resources         `json:"resources"`
	Reputations  map[FactionID]int `json:"reputations"`
	Entities     []EntityView      `json:"entities"`
	PendingEvent *GameEvent        `json:"pending_event,omitempty"`
	GameOver     string            `json:"game_over,omitempty"`
}

// PlayerView is the player portion of a snapshot.
// Ammo mirrors the stockpile ammo count.
type PlayerView struct {
	ID         string    `json:"id"`
	Position   Position  `json:"position"`
	Health     int       `json:"health"`
	MaxHealth  int       `json:"max_health"`
	Ammo       int       `json:"ammo"`
	Survivors  int       `json:"survivors"`
	MeleeBonus int       `json:"melee_bonus"`
	Inventory  Inventory `json:"inventory"`
}

// EntityView flattens any non-player entity for rendering
type EntityView struct {
	ID          string        `json:"id"`
	Kind        Kind          `json:"kind"`
	Position    Position      `json:"position"`
	Variant     ZombieVariant `json:"variant,omitempty"`
	Name        string        `json:"name,omitempty"`
	Faction     FactionID     `json:"faction,omitempty"`
	Disposition Disposition   `json:"disposition,omitempty"`
	Health      int           `json:"health,omitempty"`
	MaxHealth   int           `json:"max_health,omitempty"`
	Detected    bool          `json:"detected,omitempty"`
	Item        ItemKind      `json:"item,omitempty"`
	Quantity    int           `json:"quantity,omitempty"`
	Scavenges   int           `json:"scavenges,omitempty"`
}

// ViewOf flattens an entity
func ViewOf(e Entity) EntityView {
	b := e.Base()
	v := EntityView{ID: b.ID, Kind: b.Kind, Position: b.Pos}
	switch t := e.(type) {
	case *Zombie:
		v.Variant = t.Variant
		v.Health = t.Health
		v.MaxHealth = t.MaxHealth
		v.Detected = t.Detected
	case *NPC:
		v.Name = t.Name
		v.Faction = t.Faction
		v.Disposition = t.Disposition
		v.Health = t.Health
		v.MaxHealth = t.MaxHealth
	case *Loot:
		v.Item = t.Item
		v.Quantity = t.Quantity
	case *Building:
		v.Name = t.Name
		v.Scavenges = t.Scavenges
	case *Player:
		v.Health = t.Health
		v.MaxHealth = t.MaxHealth
	}
	return v
}

// Recorder collects steps in order, stamping each with the current phase
type Recorder struct {
	phase Phase
	steps []Step
}

// NewRecorder starts recording in phase p
func NewRecorder(p Phase) *Recorder {
	return &Recorder{phase: p}
}

// SetPhase changes the phase stamped on later steps
func (r *Recorder) SetPhase(p Phase) {
	r.phase = p
}

// Phase returns the current phase
func (r *Recorder) Phase() Phase {
	return r.phase
}

// Add appends a step
func (r *Recorder) Add(s Step) {
	s.Phase = r.phase
	r.steps = append(r.steps, s)
}

// Steps returns everything recorded so far
func (r *Recorder) Steps() []Step {
	return r.steps
}

// Ptr returns a pointer to a copy of p, for Step.From and Step.To
func Ptr(p Position) *Position {
	return &p
}

// TurnResult reports what one accepted command did. Committed is false for
// actions that do not end the player's turn.
type TurnResult struct {
	Committed    bool       `json:"committed"`
	Phase        Phase      `json:"phase"`
	Day          int        `json:"day"`
	Turn         int        `json:"turn"`
	Steps        []Step     `json:"steps"`
	PendingEvent *GameEvent `json:"pending_event,omitempty"`
	GameOver     string     `json:"game_over,omitempty"`
}
