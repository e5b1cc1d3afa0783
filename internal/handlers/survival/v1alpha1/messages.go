package v1alpha1

import (
	"bytes"
	"encoding/json"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KirkDiggler/deadgrid/internal/config"
	"github.com/KirkDiggler/deadgrid/internal/entities/survival"
	"github.com/KirkDiggler/deadgrid/internal/errors"
)

// StartPlaythroughRequest starts a game. Seed is a decimal string because
// Struct numbers are doubles and cannot hold every uint64.
type StartPlaythroughRequest struct {
	Seed  string       `json:"seed,omitempty"`
	Rules *config.Game `json:"rules,omitempty"`
}

// StartPlaythroughResponse returns the new id and opening snapshot
type StartPlaythroughResponse struct {
	PlaythroughID string             `json:"playthrough_id"`
	Seed          string             `json:"seed"`
	Snapshot      *survival.Snapshot `json:"snapshot"`
}

// SubmitActionRequest plays one action
type SubmitActionRequest struct {
	PlaythroughID string          `json:"playthrough_id"`
	Action        survival.Action `json:"action"`
}

// ResolveChoiceRequest answers a pending event
type ResolveChoiceRequest struct {
	PlaythroughID string `json:"playthrough_id"`
	EventID       string `json:"event_id"`
	ChoiceID      string `json:"choice_id"`
}

// TurnResponse carries the outcome of an action or choice
type TurnResponse struct {
	Result *survival.TurnResult `json:"result"`
}

// GetSnapshotRequest reads a playthrough
type GetSnapshotRequest struct {
	PlaythroughID string `json:"playthrough_id"`
}

// GetSnapshotResponse carries a snapshot
type GetSnapshotResponse struct {
	Snapshot *survival.Snapshot `json:"snapshot"`
}

// Decode unpacks a Struct into one of the request types.
// Unknown fields are rejected.
func Decode(in *structpb.Struct, v any) error {
	if in == nil {
		return errors.InvalidArgument("request is required")
	}
	raw, err := protojson.Marshal(in)
	if err != nil {
		return errors.InvalidArgumentf("malformed request: %v", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.InvalidArgumentf("malformed request: %v", err)
	}
	return nil
}

// Encode packs any JSON-serializable value into a Struct
func Encode(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode response")
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, errors.Wrap(err, "failed to encode response")
	}
	return out, nil
}
