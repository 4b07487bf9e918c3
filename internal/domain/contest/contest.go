// Package contest contains the Jacob's contest domain model: parsing raw
// provider event keys into typed contests, medal tier classification, and
// the aggregator that folds a player's contest history across profiles into
// lifetime counters and per-crop personal bests.
package contest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/elitefarmers/farmhand/internal/domain/farming"
	"github.com/elitefarmers/farmhand/internal/domain/profile"
	"github.com/elitefarmers/farmhand/pkg/timeutil"
)

// NoiseFloor is the minimum collected amount for an event to count at all.
// The provider records stray single-digit participations for players who
// broke one crop during a contest; those are noise, not results.
const NoiseFloor = 100

// Medal percentile thresholds by claimed position among participants.
const (
	goldPercentile   = 0.05
	silverPercentile = 0.25
	bronzePercentile = 0.60
)

// ══════════════════════════════════════════════════════════════════════════════
// MEDAL
// ══════════════════════════════════════════════════════════════════════════════

// Medal is the gold/silver/bronze classification of a contest result.
type Medal int

const (
	MedalNone Medal = iota
	MedalBronze
	MedalSilver
	MedalGold
)

// String returns the lowercase medal name.
func (m Medal) String() string {
	switch m {
	case MedalGold:
		return "gold"
	case MedalSilver:
		return "silver"
	case MedalBronze:
		return "bronze"
	default:
		return "none"
	}
}

// Medals holds per-tier medal counts.
type Medals struct {
	Gold   int
	Silver int
	Bronze int
}

// Add increments the counter for the given medal tier.
func (m *Medals) Add(medal Medal) {
	switch medal {
	case MedalGold:
		m.Gold++
	case MedalSilver:
		m.Silver++
	case MedalBronze:
		m.Bronze++
	}
}

// Total returns the sum of all tiers.
func (m Medals) Total() int {
	return m.Gold + m.Silver + m.Bronze
}

// ══════════════════════════════════════════════════════════════════════════════
// NORMALIZED CONTEST
// ══════════════════════════════════════════════════════════════════════════════

// Contest is one normalized contest participation.
type Contest struct {
	Crop      farming.Crop
	Date      timeutil.ContestDate
	Collected int64

	// Position (1-based) and Participants are both set once the result is
	// claimed, and both nil before that.
	Position     *int
	Participants *int
}

// Claimed reports whether the result carries claim data.
func (c Contest) Claimed() bool {
	return c.Position != nil && c.Participants != nil
}

// Medal classifies the result by percentile rank among participants.
// Unclaimed contests yield no medal.
func (c Contest) Medal() Medal {
	if !c.Claimed() || *c.Participants <= 0 {
		return MedalNone
	}

	pct := float64(*c.Position) / float64(*c.Participants)
	switch {
	case pct <= goldPercentile:
		return MedalGold
	case pct <= silverPercentile:
		return MedalSilver
	case pct <= bronzePercentile:
		return MedalBronze
	default:
		return MedalNone
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// NORMALIZER
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrMalformedKey - the event key does not decode to a date and crop.
	ErrMalformedKey = errors.New("malformed contest key")

	// ErrBelowNoiseFloor - the event's collected amount is below the floor
	// and must be ignored entirely.
	ErrBelowNoiseFloor = errors.New("contest below noise floor")
)

// ParseKey decodes a provider event key "<year>:<month>_<day>:<crop>" into
// its date and crop. The crop segment may itself contain a colon (the cocoa
// bean legacy item ID), so only the first two separators split.
func ParseKey(key string) (timeutil.ContestDate, farming.Crop, error) {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) != 3 {
		return 0, "", fmt.Errorf("%w: %q", ErrMalformedKey, key)
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, "", fmt.Errorf("%w: bad year in %q", ErrMalformedKey, key)
	}

	monthDay := strings.SplitN(parts[1], "_", 2)
	if len(monthDay) != 2 {
		return 0, "", fmt.Errorf("%w: bad month_day in %q", ErrMalformedKey, key)
	}
	month, err := strconv.Atoi(monthDay[0])
	if err != nil {
		return 0, "", fmt.Errorf("%w: bad month in %q", ErrMalformedKey, key)
	}
	day, err := strconv.Atoi(monthDay[1])
	if err != nil {
		return 0, "", fmt.Errorf("%w: bad day in %q", ErrMalformedKey, key)
	}

	date := timeutil.NewContestDate(year, month, day)
	if !date.IsValid() {
		return 0, "", fmt.Errorf("%w: impossible date in %q", ErrMalformedKey, key)
	}

	crop, err := farming.CropFromAPIKey(parts[2])
	if err != nil {
		return 0, "", fmt.Errorf("%w: %v", ErrMalformedKey, err)
	}

	return date, crop, nil
}

// Normalize converts one raw event into a typed Contest. Defaulting logic
// for the optional claim fields lives here and nowhere else: a result is
// claimed only when position and participants are both present, a lone
// value is dropped. Events below the noise floor return ErrBelowNoiseFloor.
func Normalize(key string, raw profile.RawContest) (Contest, error) {
	date, crop, err := ParseKey(key)
	if err != nil {
		return Contest{}, err
	}

	if raw.Collected < NoiseFloor {
		return Contest{}, fmt.Errorf("%w: %q collected %d", ErrBelowNoiseFloor, key, raw.Collected)
	}

	c := Contest{
		Crop:      crop,
		Date:      date,
		Collected: raw.Collected,
	}
	if raw.Position != nil && raw.Participants != nil {
		pos := *raw.Position
		par := *raw.Participants
		c.Position = &pos
		c.Participants = &par
	}
	return c, nil
}
