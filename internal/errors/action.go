package errors

import "fmt"

// Reason explains why the simulation declined a command
type Reason string

// MetaReason is the metadata key holding a Reason
const MetaReason = "reason"

// Decline reasons
const (
	ReasonNotYourTurn           Reason = "not_your_turn"
	ReasonOutOfBounds           Reason = "out_of_bounds"
	ReasonBlocked               Reason = "blocked"
	ReasonOutOfRange            Reason = "out_of_range"
	ReasonNoTarget              Reason = "no_target"
	ReasonInsufficientAmmo      Reason = "insufficient_ammo"
	ReasonInsufficientResources Reason = "insufficient_resources"
	ReasonCampExists            Reason = "camp_exists"
	ReasonNoCamp                Reason = "no_camp"
	ReasonNothingHere           Reason = "nothing_here"
	ReasonUnknownAction         Reason = "unknown_action"
	ReasonEventMismatch         Reason = "event_mismatch"
	ReasonUnknownChoice         Reason = "unknown_choice"
	ReasonGameOver              Reason = "game_over"
	ReasonFullHealth            Reason = "full_health"
)

// InvalidAction declines a player command. Malformed commands map to
// INVALID_ARGUMENT, everything else to FAILED_PRECONDITION.
func InvalidAction(reason Reason, message string) *Error {
	code := CodeFailedPrecondition
	switch reason {
	case ReasonUnknownAction, ReasonUnknownChoice:
		code = CodeInvalidArgument
	}
	return New(code, message).WithMeta(MetaReason, string(reason))
}

// InvalidActionf declines a player command with a formatted message
func InvalidActionf(reason Reason, format string, args ...interface{}) *Error {
	return InvalidAction(reason, fmt.Sprintf(format, args...))
}

// GetReason returns the decline reason of err, or "" when it has none
func GetReason(err error) Reason {
	switch v := GetMeta(err)[MetaReason].(type) {
	case string:
		return Reason(v)
	case Reason:
		return v
	}
	return ""
}

// IsInvalidAction reports whether err is a declined command
func IsInvalidAction(err error) bool {
	return GetReason(err) != ""
}

// IsNotYourTurn reports whether a command arrived outside its phase
func IsNotYourTurn(err error) bool {
	return GetReason(err) == ReasonNotYourTurn
}

// IsGameOver reports whether a command arrived after the simulation ended
func IsGameOver(err error) bool {
	return GetReason(err) == ReasonGameOver
}
