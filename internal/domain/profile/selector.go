package profile

import (
	"strings"

	"github.com/elitefarmers/farmhand/internal/domain/farming"
)

// ══════════════════════════════════════════════════════════════════════════════
// BEST-PROFILE SELECTOR
// ══════════════════════════════════════════════════════════════════════════════

// Selection is the outcome of picking a profile for display.
type Selection struct {
	Profile *Profile
	Weight  farming.Weight
}

// SelectBest runs the weight calculator over every profile and picks the
// one with the highest total, ties broken by first-encountered order. When
// overrideName is non-empty the named profile is returned regardless of
// score (the caller asked for it explicitly); ErrProfileNotFound if no
// profile carries that name.
func SelectBest(profiles []*Profile, overrideName string) (Selection, error) {
	if len(profiles) == 0 {
		return Selection{}, ErrNoProfiles
	}

	if overrideName != "" {
		for _, p := range profiles {
			if strings.EqualFold(p.Name, overrideName) {
				return Selection{Profile: p, Weight: farming.Calculate(p.Member.WeightInput())}, nil
			}
		}
		return Selection{}, ErrProfileNotFound
	}

	best := Selection{Profile: profiles[0], Weight: farming.Calculate(profiles[0].Member.WeightInput())}
	for _, p := range profiles[1:] {
		w := farming.Calculate(p.Member.WeightInput())
		if w.Total > best.Weight.Total {
			best = Selection{Profile: p, Weight: w}
		}
	}
	return best, nil
}
