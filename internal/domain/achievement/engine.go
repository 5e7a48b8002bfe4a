package achievement

import (
	"sort"

	"github.com/airtime-fit/airtime/internal/domain/model"
)

// Engine runs the per-(user, rule) Locked -> Unlocked state machine for a
// single user. Unlocked is terminal; replaying the same event stream from
// an empty engine reproduces the same unlock set and timestamps.
type Engine struct {
	userID   string
	rules    []Rule
	unlocked map[string]struct{}
	unlocks  []model.AchievementUnlock // in unlock order
}

// NewEngine creates an engine over the given rule set. Rules are evaluated
// rule-id ascending so unlock timestamps are reproducible.
func NewEngine(userID string, rules []Rule) *Engine {
	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return &Engine{
		userID:   userID,
		rules:    sorted,
		unlocked: make(map[string]struct{}),
	}
}

// Evaluate checks every still-locked rule against the state after the
// triggering event was applied, and returns the unlocks fired by this
// event. Each rule fires at most once per engine lifetime.
func (e *Engine) Evaluate(state model.UserProgressState, trig Trigger) []model.AchievementUnlock {
	var fired []model.AchievementUnlock
	for _, r := range e.rules {
		if _, done := e.unlocked[r.ID]; done {
			continue
		}
		if r.Unlocks == nil || !r.Unlocks(state, trig) {
			continue
		}
		u := model.AchievementUnlock{
			UserID:     e.userID,
			RuleID:     r.ID,
			UnlockedAt: trig.Event.OccurredAt(),
		}
		e.unlocked[r.ID] = struct{}{}
		e.unlocks = append(e.unlocks, u)
		fired = append(fired, u)
	}
	return fired
}

// Unlocks returns all unlocks in the order they fired.
func (e *Engine) Unlocks() []model.AchievementUnlock {
	out := make([]model.AchievementUnlock, len(e.unlocks))
	copy(out, e.unlocks)
	return out
}

// UnlockedIDs returns the unlocked rule ids, ascending.
func (e *Engine) UnlockedIDs() []string {
	ids := make([]string, 0, len(e.unlocked))
	for id := range e.unlocked {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RuleByID looks a rule up in a rule set. ok is false for unknown ids.
func RuleByID(rules []Rule, id string) (Rule, bool) {
	for _, r := range rules {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}
