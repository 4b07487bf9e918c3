package profile

// ══════════════════════════════════════════════════════════════════════════════
// SNAPSHOT RECONCILER
// ══════════════════════════════════════════════════════════════════════════════

// Merge reconciles the persisted snapshot with a freshly fetched one,
// keeping as much information as possible across API flakiness. Collections
// visibility can be toggled off by the player at any time, so a fresh fetch
// with hidden collections must not wipe previously observed counters.
//
// Rules, per profile ID:
//   - present only in saved: kept unchanged (not returned by this pull)
//   - present in both, fresh collections hidden: saved collections and
//     farming XP are kept, fresh contest history and minion ownership are
//     adopted, API is marked false
//   - present in both, fresh collections visible: fresh wins, API true
//   - present only in fresh: added as authoritative, API true
//
// Merge(nil, fresh) == fresh and Merge(saved, nil) == saved. Re-merging the
// same fresh snapshot is a no-op. Duplicate profile IDs are collapsed
// defensively, first occurrence wins.
func Merge(saved, fresh *Snapshot) *Snapshot {
	if saved == nil || len(saved.Profiles) == 0 {
		return dedupe(fresh)
	}
	if fresh == nil {
		return dedupe(saved)
	}

	merged := &Snapshot{
		PlayerUUID: fresh.PlayerUUID,
		PlayerName: fresh.PlayerName,
		FetchedAt:  fresh.FetchedAt,
	}

	seen := make(map[string]bool, len(saved.Profiles)+len(fresh.Profiles))

	for _, old := range saved.Profiles {
		if seen[old.ID] {
			continue
		}
		seen[old.ID] = true

		cur := fresh.FindProfile(old.ID)
		switch {
		case cur == nil:
			merged.Profiles = append(merged.Profiles, old)
		case !cur.Member.HasCollections():
			merged.Profiles = append(merged.Profiles, mergeHidden(old, cur))
		default:
			merged.Profiles = append(merged.Profiles, cur)
		}
	}

	for _, cur := range fresh.Profiles {
		if seen[cur.ID] {
			continue
		}
		seen[cur.ID] = true
		merged.Profiles = append(merged.Profiles, cur)
	}

	return merged
}

// mergeHidden combines a saved profile with a fresh pull whose collections
// are hidden: the stale counters beat no counters, while contest history
// and minion ownership are always visible and fresh wins for them.
func mergeHidden(old, cur *Profile) *Profile {
	member := old.Member
	member.Contests = cur.Member.Contests
	member.Minions = cur.Member.Minions
	member.AnitaBuff = cur.Member.AnitaBuff
	member.GoldMedals = cur.Member.GoldMedals
	member.LevelCapUnlocked = cur.Member.LevelCapUnlocked

	return &Profile{
		ID:     old.ID,
		Name:   cur.Name,
		Member: member,
		API:    false,
	}
}

// dedupe collapses duplicate profile IDs, first occurrence wins.
func dedupe(s *Snapshot) *Snapshot {
	if s == nil {
		return nil
	}

	seen := make(map[string]bool, len(s.Profiles))
	out := &Snapshot{
		PlayerUUID: s.PlayerUUID,
		PlayerName: s.PlayerName,
		FetchedAt:  s.FetchedAt,
	}
	for _, p := range s.Profiles {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out.Profiles = append(out.Profiles, p)
	}
	return out
}
