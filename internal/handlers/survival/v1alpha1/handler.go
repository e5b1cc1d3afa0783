// Package v1alpha1 serves playthroughs over gRPC
package v1alpha1

import (
	"context"
	"log/slog"
	"strconv"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KirkDiggler/deadgrid/internal/errors"
	"github.com/KirkDiggler/deadgrid/internal/orchestrators/playthrough"
)

// HandlerConfig holds dependencies for the simulation handler
type HandlerConfig struct {
	PlaythroughService playthrough.Service
}

// Validate ensures all required dependencies are present
func (c *HandlerConfig) Validate() error {
	if c.PlaythroughService == nil {
		return errors.InvalidArgument("playthrough service is required")
	}
	return nil
}

// Handler implements SimulationServiceServer
type Handler struct {
	playthroughService playthrough.Service
}

var _ SimulationServiceServer = (*Handler)(nil)

// NewHandler creates a new simulation handler
func NewHandler(cfg *HandlerConfig) (*Handler, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Handler{playthroughService: cfg.PlaythroughService}, nil
}

// StartPlaythrough creates a new game
func (h *Handler) StartPlaythrough(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in StartPlaythroughRequest
	if err := Decode(req, &in); err != nil {
		return nil, errors.ToGRPCError(err)
	}

	input := &playthrough.StartInput{Rules: in.Rules}
	if in.Seed != "" {
		seed, err := strconv.ParseUint(in.Seed, 10, 64)
		if err != nil {
			return nil, errors.ToGRPCError(errors.InvalidArgumentf("seed must be an unsigned integer, got %q", in.Seed))
		}
		input.Seed = &seed
	}

	out, err := h.playthroughService.Start(ctx, input)
	if err != nil {
		slog.Error("failed to start playthrough", "error", err)
		return nil, errors.ToGRPCError(err)
	}

	return respond(&StartPlaythroughResponse{
		PlaythroughID: out.PlaythroughID,
		Seed:          strconv.FormatUint(out.Seed, 10),
		Snapshot:      out.Snapshot,
	})
}

// SubmitAction plays one player action
func (h *Handler) SubmitAction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in SubmitActionRequest
	if err := Decode(req, &in); err != nil {
		return nil, errors.ToGRPCError(err)
	}
	if in.PlaythroughID == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("playthrough_id is required"))
	}
	if in.Action.Type == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("action.type is required"))
	}

	out, err := h.playthroughService.SubmitAction(ctx, &playthrough.SubmitActionInput{
		PlaythroughID: in.PlaythroughID,
		Action:        in.Action,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return respond(&TurnResponse{Result: out.Result})
}

// ResolveChoice answers the pending event
func (h *Handler) ResolveChoice(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in ResolveChoiceRequest
	if err := Decode(req, &in); err != nil {
		return nil, errors.ToGRPCError(err)
	}
	if in.PlaythroughID == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("playthrough_id is required"))
	}

	out, err := h.playthroughService.ResolveChoice(ctx, &playthrough.ResolveChoiceInput{
		PlaythroughID: in.PlaythroughID,
		EventID:       in.EventID,
		ChoiceID:      in.ChoiceID,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return respond(&TurnResponse{Result: out.Result})
}

// GetSnapshot reads the current state
func (h *Handler) GetSnapshot(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in GetSnapshotRequest
	if err := Decode(req, &in); err != nil {
		return nil, errors.ToGRPCError(err)
	}
	if in.PlaythroughID == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("playthrough_id is required"))
	}

	out, err := h.playthroughService.GetSnapshot(ctx, &playthrough.GetSnapshotInput{PlaythroughID: in.PlaythroughID})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return respond(&GetSnapshotResponse{Snapshot: out.Snapshot})
}

func respond(v any) (*structpb.Struct, error) {
	out, err := Encode(v)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return out, nil
}
