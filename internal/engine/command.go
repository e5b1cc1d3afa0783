package engine

import (
	"context"

	"github.com/KirkDiggler/deadgrid/internal/entities/survival"
	"github.com/KirkDiggler/deadgrid/internal/errors"
)

// Apply routes a journaled command to the matching Engine call
func Apply(ctx context.Context, e Engine, cmd survival.Command) (*survival.TurnResult, error) {
	return ApplyWithCommit(ctx, e, cmd, nil)
}

// ApplyWithCommit is Apply with a commit step that runs before observers
// hear about the change
func ApplyWithCommit(ctx context.Context, e Engine, cmd survival.Command, commit CommitFunc) (*survival.TurnResult, error) {
	switch cmd.Kind {
	case survival.CommandAction:
		if cmd.Action == nil {
			return nil, errors.InvalidArgument("action command has no action")
		}
		out, err := e.SubmitAction(ctx, &SubmitActionInput{Action: *cmd.Action, Commit: commit})
		if err != nil {
			return nil, err
		}
		return out.Result, nil
	case survival.CommandChoice:
		out, err := e.ResolveChoice(ctx, &ResolveChoiceInput{EventID: cmd.EventID, ChoiceID: cmd.ChoiceID, Commit: commit})
		if err != nil {
			return nil, err
		}
		return out.Result, nil
	default:
		return nil, errors.InvalidArgumentf("unknown command kind %q", cmd.Kind)
	}
}
