package farming

import (
	"math"
	"strconv"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// WEIGHT RESULT
// ══════════════════════════════════════════════════════════════════════════════

// Weight is the composite score of one profile member.
type Weight struct {
	// Crops holds the per-crop weight contributions.
	Crops map[Crop]float64

	// Bonus is the sum of all non-collection bonuses.
	Bonus float64

	// Total is the sum of all crop weights plus Bonus, or HiddenWeight
	// when the member's collections are not visible.
	Total float64
}

// Hidden reports whether the member's collections were not visible.
func (w Weight) Hidden() bool {
	return w.Total == HiddenWeight
}

// ══════════════════════════════════════════════════════════════════════════════
// CALCULATOR INPUT
// ══════════════════════════════════════════════════════════════════════════════

// Input carries the raw member values the calculator consumes.
type Input struct {
	// Collections holds raw collection counters keyed by crop. A nil map
	// means the collections API is disabled for this member; counters may
	// be negative due to the provider's 32-bit wrap.
	Collections map[Crop]int64

	// FarmingXP is the member's cumulative farming skill experience.
	FarmingXP float64

	// LevelCapUnlocked is true when the farming level cap has been raised
	// to 60. The level 60 bonus tier requires it.
	LevelCapUnlocked bool

	// AnitaBuff is the double drop buff level purchased from Anita.
	AnitaBuff int

	// GoldMedals is the member's lifetime gold medal count.
	GoldMedals int

	// Minions lists owned crafted minion IDs, e.g. "WHEAT_12".
	Minions []string
}

// ══════════════════════════════════════════════════════════════════════════════
// CALCULATOR
// ══════════════════════════════════════════════════════════════════════════════

// CorrectCounter fixes the provider's 32-bit wrap. Counters observed as
// negative wrapped at 2^32-2; the corrected value is always non-negative.
func CorrectCounter(c int64) int64 {
	if c < 0 {
		return c + counterWrap
	}
	return c
}

// Calculate converts one member's raw counters into a Weight.
//
// Mushroom is scored last: its true yield depends on how much of the
// member's farming happened on the two double-break crops, so its weight is
// the activity-weighted blend of the doubled and the plain divisor. The
// other nine crops are a plain counter/divisor, rounded to two decimals.
func Calculate(in Input) Weight {
	if in.Collections == nil {
		return Weight{Total: HiddenWeight}
	}

	crops := make(map[Crop]float64, len(AllCrops))

	var cropTotal, doubleTotal float64
	for _, crop := range AllCrops {
		if crop == CropMushroom {
			continue
		}
		w := round2(float64(CorrectCounter(in.Collections[crop])) / divisors[crop])
		crops[crop] = w
		cropTotal += w
		if doubleBreakCrops[crop] {
			doubleTotal += w
		}
	}

	crops[CropMushroom] = mushroomWeight(
		CorrectCounter(in.Collections[CropMushroom]),
		doubleTotal,
		cropTotal,
	)
	cropTotal += crops[CropMushroom]

	bonus := bonusWeight(in)

	return Weight{
		Crops: crops,
		Bonus: bonus,
		Total: math.Floor(cropTotal*100)/100 + bonus,
	}
}

// mushroomWeight blends the doubled and plain mushroom divisor by the share
// of pre-mushroom weight earned on double-break crops.
func mushroomWeight(raw int64, doubleTotal, preTotal float64) float64 {
	divisor := divisors[CropMushroom]
	if preTotal <= 0 {
		return round2(float64(raw) / divisor)
	}

	doubleRatio := doubleTotal / preTotal
	otherRatio := (preTotal - doubleTotal) / preTotal

	weight := doubleRatio*(float64(raw)/(2*divisor)) + otherRatio*(float64(raw)/divisor)
	return round2(weight)
}

// bonusWeight sums the farming level, Anita buff, gold medal, and minion
// bonuses.
func bonusWeight(in Input) float64 {
	var bonus float64

	// Farming level tiers are mutually exclusive; the level 60 tier also
	// requires the raised cap.
	switch {
	case in.FarmingXP >= farmingLevel60XP && in.LevelCapUnlocked:
		bonus += level60Bonus
	case in.FarmingXP >= farmingLevel50XP:
		bonus += level50Bonus
	}

	if in.AnitaBuff > 0 {
		bonus += float64(in.AnitaBuff) * anitaBuffPerLevel
	}

	if in.GoldMedals > 0 {
		medals := in.GoldMedals
		if medals > goldMedalCap {
			medals = goldMedalCap
		}
		bonus += float64(medals/goldMedalStep) * goldMedalStepSize
	}

	if n := countMaxTierMinions(in.Minions); n > 0 {
		b := float64(n) * minionBonus
		if b > maxMinionBonus {
			b = maxMinionBonus
		}
		bonus += b
	}

	return bonus
}

// farmingMinionTypes are the crafted minion prefixes that count toward the
// minion bonus, one per crop.
var farmingMinionTypes = map[string]bool{
	"CACTUS":       true,
	"CARROT":       true,
	"COCOA":        true,
	"MELON":        true,
	"MUSHROOM":     true,
	"NETHER_WARTS": true,
	"POTATO":       true,
	"PUMPKIN":      true,
	"SUGAR_CANE":   true,
	"WHEAT":        true,
}

// countMaxTierMinions counts unique farming minion types owned at max tier.
func countMaxTierMinions(minions []string) int {
	suffix := "_" + strconv.Itoa(minionMaxTier)
	seen := make(map[string]bool, totalCropMinion)
	for _, id := range minions {
		name, ok := strings.CutSuffix(id, suffix)
		if !ok {
			continue
		}
		if farmingMinionTypes[name] && !seen[name] {
			seen[name] = true
		}
	}
	return len(seen)
}

// round2 rounds to two decimals, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
