package playthrough

import (
	"context"
	"encoding/json"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/KirkDiggler/deadgrid/internal/entities/survival"
	"github.com/KirkDiggler/deadgrid/internal/errors"
	"github.com/KirkDiggler/deadgrid/internal/pkg/clock"
	redisclient "github.com/KirkDiggler/deadgrid/internal/redis"
)

const (
	// Key patterns: playthrough:{id}:header and playthrough:{id}:commands
	keyPrefix       = "playthrough:"
	headerSuffix    = ":header"
	commandsSuffix  = ":commands"
	errClientNil    = "redis client is required"
	errClockNil     = "clock is required"
	errCorruptEntry = "journal entry is corrupt"
)

// Config holds the configuration for the Redis repository
type Config struct {
	Client redisclient.Client
	Clock  clock.Clock
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c.Client == nil {
		return errors.InvalidArgument(errClientNil)
	}
	if c.Clock == nil {
		return errors.InvalidArgument(errClockNil)
	}
	return nil
}

// header is the journal minus its commands, stored as one zstd blob
type header struct {
	Journal
	TTL time.Duration `json:"ttl"`
}

type redisRepository struct {
	client  redisclient.Client
	clock   clock.Clock
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewRedisRepository creates a Redis-backed journal. Every value is JSON
// compressed with zstd; commands live in a list so appends stay O(1).
func NewRedisRepository(cfg *Config) (Repository, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create zstd encoder")
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create zstd decoder")
	}

	return &redisRepository{
		client:  cfg.Client,
		clock:   cfg.Clock,
		encoder: enc,
		decoder: dec,
	}, nil
}

// Ensure redisRepository implements Repository
var _ Repository = (*redisRepository)(nil)

func (r *redisRepository) encode(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal journal entry")
	}
	return r.encoder.EncodeAll(raw, nil), nil
}

func (r *redisRepository) decode(data []byte, v any) error {
	raw, err := r.decoder.DecodeAll(data, nil)
	if err != nil {
		return errors.DataLossf("%s: %v", errCorruptEntry, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.DataLossf("%s: %v", errCorruptEntry, err)
	}
	return nil
}

// Create stores a new journal header
func (r *redisRepository) Create(ctx context.Context, input *CreateInput) (*CreateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument(errInputNil)
	}
	if input.Journal == nil {
		return nil, errors.InvalidArgument(errJournalNil)
	}
	if input.Journal.ID == "" {
		return nil, errors.InvalidArgument(errIDEmpty)
	}

	h := header{Journal: copyJournal(input.Journal), TTL: input.TTL}
	h.Commands = nil
	h.CreatedAt = r.clock.Now()
	h.ExpiresAt = time.Time{}
	if input.TTL > 0 {
		h.ExpiresAt = h.CreatedAt.Add(input.TTL)
	}

	blob, err := r.encode(h)
	if err != nil {
		return nil, err
	}

	// SETNX guards the id; the stale command list of an expired journal
	// with the same id is cleared alongside
	headerKey, commandsKey := r.buildKeys(h.ID)
	created, err := r.client.SetNX(ctx, headerKey, blob, input.TTL).Result()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to store journal in Redis")
	}
	if !created {
		return nil, errors.AlreadyExists("playthrough " + h.ID + " already exists")
	}
	if err := r.client.Del(ctx, commandsKey).Err(); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to reset journal commands")
	}

	out := copyJournal(&h.Journal)
	return &CreateOutput{Journal: &out}, nil
}

// Get loads the header and every command
func (r *redisRepository) Get(ctx context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument(errInputNil)
	}
	if input.ID == "" {
		return nil, errors.InvalidArgument(errIDEmpty)
	}

	h, err := r.loadHeader(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	headerKey, commandsKey := r.buildKeys(input.ID)
	if h.TTL > 0 {
		// Appends slide the key TTL, so the stored expiry may be stale
		if remaining, err := r.client.TTL(ctx, headerKey).Result(); err == nil && remaining > 0 {
			h.ExpiresAt = r.clock.Now().Add(remaining)
		}
	}

	entries, err := r.client.LRange(ctx, commandsKey, 0, -1).Result()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to read journal commands")
	}
	for i, e := range entries {
		var cmd survival.Command
		if err := r.decode([]byte(e), &cmd); err != nil {
			return nil, errors.Wrapf(err, "command %d of %s", i, input.ID)
		}
		h.Commands = append(h.Commands, cmd)
	}

	return &GetOutput{Journal: &h.Journal}, nil
}

// Append pushes one command and slides the TTL of both keys
func (r *redisRepository) Append(ctx context.Context, input *AppendInput) (*AppendOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument(errInputNil)
	}
	if input.ID == "" {
		return nil, errors.InvalidArgument(errIDEmpty)
	}

	h, err := r.loadHeader(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	blob, err := r.encode(input.Command)
	if err != nil {
		return nil, err
	}

	headerKey, commandsKey := r.buildKeys(input.ID)
	pipe := r.client.TxPipeline()
	push := pipe.RPush(ctx, commandsKey, blob)
	if h.TTL > 0 {
		pipe.Expire(ctx, headerKey, h.TTL)
		pipe.Expire(ctx, commandsKey, h.TTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to append journal command")
	}

	return &AppendOutput{Length: int(push.Val())}, nil
}

// Delete removes both keys
func (r *redisRepository) Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument(errInputNil)
	}
	if input.ID == "" {
		return nil, errors.InvalidArgument(errIDEmpty)
	}

	headerKey, commandsKey := r.buildKeys(input.ID)
	if err := r.client.Del(ctx, headerKey, commandsKey).Err(); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to delete journal")
	}
	return &DeleteOutput{}, nil
}

func (r *redisRepository) loadHeader(ctx context.Context, id string) (*header, error) {
	headerKey, _ := r.buildKeys(id)
	blob, err := r.client.Get(ctx, headerKey).Bytes()
	if err != nil {
		if err == redisclient.Nil {
			return nil, errors.NotFoundf("playthrough %s not found", id)
		}
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to get journal from Redis")
	}

	var h header
	if err := r.decode(blob, &h); err != nil {
		return nil, errors.Wrapf(err, "header of %s", id)
	}
	h.Commands = nil
	return &h, nil
}

// buildKeys returns the header and command list keys for a playthrough
func (r *redisRepository) buildKeys(id string) (string, string) {
	return keyPrefix + id + headerSuffix, keyPrefix + id + commandsSuffix
}
