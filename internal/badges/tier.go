package badges

import (
	"fmt"
	"strings"
)

// Tier identifies a streak badge level.
type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
	TierDiamond  Tier = "diamond"
)

// AllTiers returns all tiers from lowest to highest.
func AllTiers() []Tier {
	return []Tier{TierBronze, TierSilver, TierGold, TierPlatinum, TierDiamond}
}

// ParseTier returns the tier named s, or false.
func ParseTier(s string) (Tier, bool) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllTiers() {
		if t == known {
			return t, true
		}
	}
	return "", false
}

// DisplayName returns a human-readable label for the tier.
func (t Tier) DisplayName() string {
	switch t {
	case TierBronze:
		return "Bronze"
	case TierSilver:
		return "Silver"
	case TierGold:
		return "Gold"
	case TierPlatinum:
		return "Platinum"
	case TierDiamond:
		return "Diamond"
	default:
		return string(t)
	}
}

// Title returns the badge's award title, e.g. "BRONZE STAR".
func (t Tier) Title() string {
	switch t {
	case TierBronze:
		return "BRONZE STAR"
	case TierSilver:
		return "SILVER TROPHY"
	case TierGold:
		return "GOLD MEDAL"
	case TierPlatinum:
		return "PLATINUM CROWN"
	case TierDiamond:
		return "DIAMOND LEGEND"
	default:
		return strings.ToUpper(string(t))
	}
}

// Icon returns the display icon for the tier.
func (t Tier) Icon() string {
	switch t {
	case TierBronze:
		return "🎖️"
	case TierSilver:
		return "🏆"
	case TierGold:
		return "🥇"
	case TierPlatinum:
		return "👑"
	case TierDiamond:
		return "💎"
	default:
		return "✦"
	}
}

// Threshold returns the streak length that earns the tier.
func (t Tier) Threshold() int {
	for i, known := range AllTiers() {
		if t == known {
			return BaseThreshold * (i + 1)
		}
	}
	return 0
}

// Message returns the celebration line shown to the student. An empty name
// is replaced with "Champion".
func (t Tier) Message(name string) string {
	if name == "" {
		name = "Champion"
	}
	switch t {
	case TierBronze:
		return fmt.Sprintf("%s **%s** – %s, 5 in a row! Keep shining! ✨", t.Icon(), t.Title(), name)
	case TierSilver:
		return fmt.Sprintf("%s **%s** – %s hits 10 perfect! Unstoppable! 🚀", t.Icon(), t.Title(), name)
	case TierGold:
		return fmt.Sprintf("%s **%s** – %s scores 15 in a row! Champion! 🏆", t.Icon(), t.Title(), name)
	case TierPlatinum:
		return fmt.Sprintf("%s **%s** – %s reaches 20! You're royalty! 👑", t.Icon(), t.Title(), name)
	case TierDiamond:
		return fmt.Sprintf("%s **%s** – %s got 25 in a row! SEA HISTORY! 🌟", t.Icon(), t.Title(), name)
	default:
		return fmt.Sprintf("%s **%s** – %s", t.Icon(), t.Title(), name)
	}
}

// StreakEndedMessage is shown when a streak of at least BaseThreshold ends.
func StreakEndedMessage(length int) string {
	return fmt.Sprintf("🔥 Streak ended at %d — amazing effort! 💪", length)
}
