package farming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrectCounter(t *testing.T) {
	tests := []struct {
		name string
		raw  int64
		want int64
	}{
		{"zero unchanged", 0, 0},
		{"positive unchanged", 1_500_000, 1_500_000},
		{"wrapped counter corrected", -100, 1<<32 - 2 - 100},
		{"full wrap", -(1<<32 - 2), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CorrectCounter(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, int64(0))
		})
	}
}

func TestCalculate_HiddenCollections(t *testing.T) {
	w := Calculate(Input{Collections: nil, FarmingXP: 100_000_000})

	assert.True(t, w.Hidden())
	assert.Equal(t, float64(HiddenWeight), w.Total)
	assert.Empty(t, w.Crops)
}

func TestCalculate_PlainCrops(t *testing.T) {
	w := Calculate(Input{
		Collections: map[Crop]int64{
			CropWheat:      300_000,
			CropNetherWart: 500_000,
		},
	})

	assert.InDelta(t, 3.0, w.Crops[CropWheat], 0.001)
	assert.InDelta(t, 2.0, w.Crops[CropNetherWart], 0.001)
	assert.Zero(t, w.Crops[CropMelon])
	assert.False(t, w.Hidden())
}

func TestCalculate_WrappedCounter(t *testing.T) {
	// A wrapped counter must be corrected before scoring, never scored
	// as a negative weight.
	w := Calculate(Input{
		Collections: map[Crop]int64{
			CropWheat: -(1<<32 - 2) + 200_000,
		},
	})

	assert.InDelta(t, 2.0, w.Crops[CropWheat], 0.001)
}

func TestCalculate_MushroomBlend(t *testing.T) {
	// Cactus contributes 3.0 and Wheat 7.0 of pre-mushroom weight, so 30%
	// of mushroom farming is assumed doubled. With a raw counter worth 2.0
	// plain points the blend is 0.3*1.0 + 0.7*2.0 = 1.7.
	w := Calculate(Input{
		Collections: map[Crop]int64{
			CropCactus:   531_764,
			CropWheat:    700_000,
			CropMushroom: 180_356,
		},
	})

	assert.InDelta(t, 3.0, w.Crops[CropCactus], 0.001)
	assert.InDelta(t, 7.0, w.Crops[CropWheat], 0.001)
	assert.InDelta(t, 1.7, w.Crops[CropMushroom], 0.001)
	assert.InDelta(t, 11.7, w.Total, 0.001)
}

func TestCalculate_MushroomWithoutOtherCrops(t *testing.T) {
	// No pre-mushroom weight means no activity split; the plain divisor
	// applies.
	w := Calculate(Input{
		Collections: map[Crop]int64{
			CropMushroom: 180_356,
		},
	})

	assert.InDelta(t, 2.0, w.Crops[CropMushroom], 0.001)
}

func TestCalculate_WeightSumInvariant(t *testing.T) {
	w := Calculate(Input{
		Collections: map[Crop]int64{
			CropWheat:     12_345_678,
			CropCarrot:    98_765_432,
			CropCactus:    5_000_000,
			CropSugarCane: 7_777_777,
			CropMushroom:  3_333_333,
			CropPumpkin:   1_234_567,
		},
		FarmingXP:        120_000_000,
		LevelCapUnlocked: true,
		AnitaBuff:        15,
		GoldMedals:       523,
		Minions:          []string{"WHEAT_12", "CACTUS_12"},
	})

	var sum float64
	for _, cw := range w.Crops {
		assert.GreaterOrEqual(t, cw, 0.0)
		sum += cw
	}
	assert.InDelta(t, sum+w.Bonus, w.Total, 0.011)
	assert.GreaterOrEqual(t, w.Total, 0.0)
}

func TestBonusWeight(t *testing.T) {
	base := map[Crop]int64{CropWheat: 0}

	tests := []struct {
		name string
		in   Input
		want float64
	}{
		{
			name: "farming 50 tier",
			in:   Input{Collections: base, FarmingXP: farmingLevel50XP},
			want: 100,
		},
		{
			name: "farming 60 xp without raised cap stays on 50 tier",
			in:   Input{Collections: base, FarmingXP: farmingLevel60XP},
			want: 100,
		},
		{
			name: "farming 60 tier with raised cap",
			in:   Input{Collections: base, FarmingXP: farmingLevel60XP, LevelCapUnlocked: true},
			want: 250,
		},
		{
			name: "anita buff is linear",
			in:   Input{Collections: base, AnitaBuff: 10},
			want: 20,
		},
		{
			name: "gold medals per 50",
			in:   Input{Collections: base, GoldMedals: 104},
			want: 50,
		},
		{
			name: "gold medals capped at 1000",
			in:   Input{Collections: base, GoldMedals: 4_000},
			want: 500,
		},
		{
			name: "max tier minions",
			in:   Input{Collections: base, Minions: []string{"WHEAT_12", "MELON_12", "WHEAT_12", "MELON_11", "CLAY_12"}},
			want: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Calculate(tt.in)
			assert.InDelta(t, tt.want, w.Bonus, 0.001)
		})
	}
}

func TestCropFromAPIKey(t *testing.T) {
	crop, err := CropFromAPIKey("INK_SACK:3")
	assert.NoError(t, err)
	assert.Equal(t, CropCocoaBeans, crop)

	_, err = CropFromAPIKey("DIAMOND")
	assert.Error(t, err)
}
