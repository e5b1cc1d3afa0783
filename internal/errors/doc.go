// Package errors provides structured, coded errors for deadgrid.
//
// Every error carries a Code, a caller-facing message and optional
// metadata. Codes map one to one onto gRPC status codes so transport
// layers can convert with ToGRPCError.
//
// # Declined actions
//
// The simulation never panics or propagates an exception for bad input.
// An illegal player command is declined with InvalidAction, which tags
// the error with a Reason in its metadata:
//
//	return nil, errors.InvalidAction(errors.ReasonOutOfRange, "no zombie within reach")
//
// Callers branch on the reason rather than on message text:
//
//	if errors.IsNotYourTurn(err) {
//	    // wait for the pending event to be resolved
//	}
//
// # Wrapping
//
// Wrap keeps the code and metadata of a wrapped *Error, so a reason
// survives through the orchestrator and handler layers:
//
//	if err := repo.Append(ctx, input); err != nil {
//	    return nil, errors.Wrapf(err, "failed to journal action for %s", id)
//	}
//
// # Validation
//
// ValidationBuilder accumulates field errors and yields one
// InvalidArgument error with a validation_errors meta entry:
//
//	vb := errors.NewValidationBuilder()
//	errors.ValidateRange("simulation.width", cfg.Width, 8, 256, vb)
//	return vb.Build()
package errors
