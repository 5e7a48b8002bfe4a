// Package achievement evaluates unlock rules against derived progress state.
package achievement

import (
	"github.com/airtime-fit/airtime/internal/domain/model"
)

// Rarity grades how hard a rule is to satisfy.
type Rarity string

// Known rarities, in ascending order of prestige.
const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Trigger carries the event that caused a re-evaluation, plus the facts
// about it the record engine already derived.
type Trigger struct {
	Event             model.Event
	IsNewPersonalBest bool
	HadPriorBest      bool
}

// Predicate reports whether a rule is satisfied given the progress state
// after the triggering event was applied. Predicates must be pure.
type Predicate func(state model.UserProgressState, trig Trigger) bool

// Rule is one static achievement definition. Rules are configuration,
// never mutated at runtime.
type Rule struct {
	ID          string
	Rarity      Rarity
	Title       string
	Description string
	Unlocks     Predicate
}

// Rule thresholds from the shipped catalog.
const (
	weekWarriorDays     = 7
	consistencyKingDays = 30
	jumpMasterJumps     = 1000
	formPerfectCaptures = 10
	lightningFastGain   = 5.0 // inches over the trailing improvement window
)

// Catalog returns the shipped rule set, ordered by rule id ascending.
func Catalog() []Rule {
	return []Rule{
		{
			ID:          "consistency_king",
			Rarity:      RarityEpic,
			Title:       "Consistency King",
			Description: "30 day streak",
			Unlocks: func(s model.UserProgressState, _ Trigger) bool {
				return s.CurrentStreakDays >= consistencyKingDays
			},
		},
		{
			ID:          "first_pr",
			Rarity:      RarityCommon,
			Title:       "First PR!",
			Description: "Beat your personal record",
			Unlocks: func(_ model.UserProgressState, trig Trigger) bool {
				return trig.IsNewPersonalBest && trig.HadPriorBest
			},
		},
		{
			ID:          "form_perfect",
			Rarity:      RarityRare,
			Title:       "Form Perfect",
			Description: "10 measured jumps on camera",
			Unlocks: func(s model.UserProgressState, _ Trigger) bool {
				return s.CameraJumps >= formPerfectCaptures
			},
		},
		{
			ID:          "jump_master",
			Rarity:      RarityEpic,
			Title:       "Jump Master",
			Description: "1000+ jumps",
			Unlocks: func(s model.UserProgressState, _ Trigger) bool {
				return s.TotalJumps >= jumpMasterJumps
			},
		},
		{
			ID:          "lightning_fast",
			Rarity:      RarityLegendary,
			Title:       "Lightning Fast",
			Description: "Improve 5\" in a month",
			Unlocks: func(s model.UserProgressState, _ Trigger) bool {
				return s.RecentImprovement >= lightningFastGain
			},
		},
		{
			ID:          "week_warrior",
			Rarity:      RarityRare,
			Title:       "Week Warrior",
			Description: "7 days streak",
			Unlocks: func(s model.UserProgressState, _ Trigger) bool {
				return s.CurrentStreakDays >= weekWarriorDays
			},
		},
	}
}
