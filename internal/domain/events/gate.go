package events

import (
	"sort"

	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
)

// Gate applies each effect at most once. Applied is keyed by Effect.Key and records the
// month in which the effect actually took place.
type Gate struct {
	Applied map[string]shared.Month `json:"applied,omitempty"`
}

// NewGate creates an empty gate
func NewGate() *Gate {
	return &Gate{Applied: make(map[string]shared.Month)}
}

// IsApplied reports whether the effect already went through the gate
func (g *Gate) IsApplied(e Effect) bool {
	_, ok := g.Applied[e.Key()]
	return ok
}

// ApplyOnce runs apply unless the effect has already been applied. The effect is only
// marked as applied when apply succeeds, so a failed application can be retried.
func (g *Gate) ApplyOnce(e Effect, m shared.Month, apply func(Effect) error) (bool, error) {
	if g.IsApplied(e) {
		return false, nil
	}
	if err := apply(e); err != nil {
		return false, err
	}
	if g.Applied == nil {
		g.Applied = make(map[string]shared.Month)
	}
	g.Applied[e.Key()] = m
	return true, nil
}

// Resolve pushes every effect due at m through the gate in (TriggerAt, ID) order and
// returns the ones applied by this call.
func (g *Gate) Resolve(effects []Effect, m shared.Month, apply func(Effect) error) ([]Effect, error) {
	var fired []Effect
	for _, e := range Due(effects, m) {
		ok, err := g.ApplyOnce(e, m, apply)
		if err != nil {
			return fired, err
		}
		if ok {
			fired = append(fired, e)
		}
	}
	return fired, nil
}

// Due returns the effects whose trigger month is at or before m, sorted by trigger then id
func Due(effects []Effect, m shared.Month) []Effect {
	var due []Effect
	for _, e := range effects {
		if !e.TriggerAt.After(m) {
			due = append(due, e)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		if due[i].TriggerAt != due[j].TriggerAt {
			return due[i].TriggerAt < due[j].TriggerAt
		}
		return due[i].ID < due[j].ID
	})
	return due
}

// Clone returns a deep copy
func (g Gate) Clone() Gate {
	applied := make(map[string]shared.Month, len(g.Applied))
	for k, v := range g.Applied {
		applied[k] = v
	}
	return Gate{Applied: applied}
}
