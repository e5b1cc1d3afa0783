package testutils

import (
	"sync"

	"github.com/KirkDiggler/rpg-toolkit/dice"
)

// ScriptedRoller is a dice.Roller that returns queued faces in order.
// Once the queue is empty it returns the highest face of each die, which
// makes every chance check fail.
type ScriptedRoller struct {
	mu     sync.Mutex
	values []int
	sizes  []int
}

var _ dice.Roller = (*ScriptedRoller)(nil)

// NewScriptedRoller queues the given faces
func NewScriptedRoller(values ...int) *ScriptedRoller {
	return &ScriptedRoller{values: values}
}

// Push queues more faces
func (r *ScriptedRoller) Push(values ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, values...)
}

// Roll returns the next queued face
func (r *ScriptedRoller) Roll(size int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sizes = append(r.sizes, size)
	if len(r.values) == 0 {
		return size, nil
	}
	v := r.values[0]
	r.values = r.values[1:]
	return v, nil
}

// RollN rolls count dice
func (r *ScriptedRoller) RollN(count, size int) ([]int, error) {
	out := make([]int, count)
	for i := range out {
		v, err := r.Roll(size)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Sizes returns the die size of every roll made so far
func (r *ScriptedRoller) Sizes() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.sizes...)
}

// Remaining returns how many queued faces are left
func (r *ScriptedRoller) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.values)
}
