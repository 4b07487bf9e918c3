// Package farming contains the farming weight domain model: the ten tracked
// crop collections, the per-crop weight divisors, and the weight calculator
// that turns a profile member's raw counters into a composite score.
package farming

import (
	"fmt"
)

// ══════════════════════════════════════════════════════════════════════════════
// CROPS
// ══════════════════════════════════════════════════════════════════════════════

// Crop is one of the ten fixed collection types tracked for scoring.
type Crop string

const (
	CropCactus     Crop = "Cactus"
	CropCarrot     Crop = "Carrot"
	CropCocoaBeans Crop = "Cocoa Beans"
	CropMelon      Crop = "Melon"
	CropMushroom   Crop = "Mushroom"
	CropNetherWart Crop = "Nether Wart"
	CropPotato     Crop = "Potato"
	CropPumpkin    Crop = "Pumpkin"
	CropSugarCane  Crop = "Sugar Cane"
	CropWheat      Crop = "Wheat"
)

// AllCrops lists every tracked crop in display order.
var AllCrops = []Crop{
	CropCactus,
	CropCarrot,
	CropCocoaBeans,
	CropMelon,
	CropMushroom,
	CropNetherWart,
	CropPotato,
	CropPumpkin,
	CropSugarCane,
	CropWheat,
}

// IsValid reports whether the crop is one of the ten tracked collections.
func (c Crop) IsValid() bool {
	_, ok := divisors[c]
	return ok
}

// String returns the display name of the crop.
func (c Crop) String() string {
	return string(c)
}

// ══════════════════════════════════════════════════════════════════════════════
// API KEY MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// cropByAPIKey maps the provider's collection/contest identifiers to crops.
// Cocoa Beans carries a colon in its legacy item ID, so contest keys must be
// split on the first two separators only.
var cropByAPIKey = map[string]Crop{
	"CACTUS":              CropCactus,
	"CARROT_ITEM":         CropCarrot,
	"INK_SACK:3":          CropCocoaBeans,
	"MELON":               CropMelon,
	"MUSHROOM_COLLECTION": CropMushroom,
	"NETHER_STALK":        CropNetherWart,
	"POTATO_ITEM":         CropPotato,
	"PUMPKIN":             CropPumpkin,
	"SUGAR_CANE":          CropSugarCane,
	"WHEAT":               CropWheat,
}

// CropFromAPIKey resolves a provider collection identifier to a Crop.
func CropFromAPIKey(key string) (Crop, error) {
	crop, ok := cropByAPIKey[key]
	if !ok {
		return "", fmt.Errorf("unknown crop key %q", key)
	}
	return crop, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// WEIGHT CONSTANTS
// ══════════════════════════════════════════════════════════════════════════════

// divisors holds the collection amount of each crop worth one point of
// weight. The values account for drop rates and break speed of each crop.
var divisors = map[Crop]float64{
	CropCactus:     177_254.45,
	CropCarrot:     302_061.86,
	CropCocoaBeans: 267_174.04,
	CropMelon:      485_308.47,
	CropMushroom:   90_178.06,
	CropNetherWart: 250_000,
	CropPotato:     300_000,
	CropPumpkin:    98_284.71,
	CropSugarCane:  200_000,
	CropWheat:      100_000,
}

// Divisor returns the per-point collection divisor for a crop.
func Divisor(c Crop) float64 {
	return divisors[c]
}

// Cactus and Sugar Cane harvest two blocks per break through the shared
// passive multiplier, which also doubles mushroom yield while farming them.
// The mushroom weight split in Calculate depends on this pair.
var doubleBreakCrops = map[Crop]bool{
	CropCactus:    true,
	CropSugarCane: true,
}

const (
	// counterWrap is added to raw counters observed as negative. The source
	// system encodes collections in 32 bits and wraps at 2^32-2.
	counterWrap = 1<<32 - 2

	// HiddenWeight is the sentinel total for members with the collections
	// API disabled. It means "unscorable", not zero, and must never be
	// summed into a leaderboard.
	HiddenWeight = -1
)

// Bonus weight constants.
const (
	farmingLevel50XP = 55_172_425  // cumulative XP at farming 50
	farmingLevel60XP = 111_672_425 // cumulative XP at farming 60

	level50Bonus = 100.0
	level60Bonus = 250.0

	// Anita's double drop buff adds a flat amount per buff level.
	anitaBuffPerLevel = 2.0

	// Gold medal milestone: a flat bonus per 50 lifetime gold medals,
	// capped at the 1000 medal milestone.
	goldMedalStep     = 50
	goldMedalStepSize = 25.0
	goldMedalCap      = 1000

	// Each unique max-tier farming minion owned adds a flat bonus.
	// There are ten farming minion types, one per crop.
	minionBonus     = 5.0
	maxMinionBonus  = 50.0
	minionMaxTier   = 12
	totalCropMinion = 10
)
