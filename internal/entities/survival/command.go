package survival

// CommandKind tells apart the two inputs the scheduler accepts
type CommandKind string

// Command kinds
const (
	CommandAction CommandKind = "action"
	CommandChoice CommandKind = "choice"
)

// Command is one accepted input. A playthrough is its seed, rules and the
// ordered list of commands.
type Command struct {
	Kind     CommandKind `json:"kind"`
	Action   *Action     `json:"action,omitempty"`
	EventID  string      `json:"event_id,omitempty"`
	ChoiceID string      `json:"choice_id,omitempty"`
}

// ActionCommand wraps a player action
func ActionCommand(a Action) Command {
	return Command{Kind: CommandAction, Action: &a}
}

// ChoiceCommand wraps an event choice
func ChoiceCommand(eventID, choiceID string) Command {
	return Command{Kind: CommandChoice, EventID: eventID, ChoiceID: choiceID}
}
