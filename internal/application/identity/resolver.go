// Package identity resolves player identifiers. Callers pass either a
// Minecraft UUID or a player name; names go through the cache and then the
// Mojang API.
package identity

import (
	"context"
	"log/slog"
	"strings"

	"github.com/elitefarmers/farmhand/internal/domain/shared"
)

// NameLookup resolves a player name upstream.
type NameLookup interface {
	ResolveName(ctx context.Context, name string) (uuid, properName string, err error)
}

// Store caches name to UUID mappings.
type Store interface {
	GetUUID(ctx context.Context, name string) (string, error)
	PutUUID(ctx context.Context, name, uuid string) error
}

// NameFinder searches persisted snapshots for the last identity observed
// under a name.
type NameFinder interface {
	FindUUIDByName(ctx context.Context, name string) (string, error)
}

// Resolver turns a player identifier into a canonical undashed UUID.
type Resolver struct {
	lookup   NameLookup
	store    Store
	fallback NameFinder
	logger   *slog.Logger
}

// NewResolver creates a Resolver. The store may be nil, in which case every
// name goes upstream. The fallback may be nil; when set it answers names
// the upstream lookup cannot, from previously persisted snapshots.
func NewResolver(lookup NameLookup, store Store, fallback NameFinder, logger *slog.Logger) *Resolver {
	return &Resolver{
		lookup:   lookup,
		store:    store,
		fallback: fallback,
		logger:   logger,
	}
}

// Resolve returns the undashed UUID for a player identifier. Inputs that
// already look like UUIDs pass through without a lookup.
func (r *Resolver) Resolve(ctx context.Context, player string) (string, error) {
	player = strings.TrimSpace(player)
	if player == "" {
		return "", shared.NewDomainError("identity", "Resolve", shared.ErrEmptyValue, "player identifier is empty")
	}

	if uuid, ok := asUUID(player); ok {
		return uuid, nil
	}

	if r.store != nil {
		if uuid, err := r.store.GetUUID(ctx, player); err == nil {
			return uuid, nil
		}
	}

	uuid, properName, err := r.lookup.ResolveName(ctx, player)
	if err != nil {
		if r.fallback != nil {
			if known, ferr := r.fallback.FindUUIDByName(ctx, player); ferr == nil {
				r.logger.Warn("name lookup failed, using last known identity",
					slog.String("name", player),
					slog.String("error", err.Error()),
				)
				if canonical, ok := asUUID(known); ok {
					known = canonical
				}
				return known, nil
			}
		}
		return "", err
	}
	// Upstream reports the dashed form; canonical is undashed lowercase.
	if canonical, ok := asUUID(uuid); ok {
		uuid = canonical
	}

	if r.store != nil {
		if err := r.store.PutUUID(ctx, properName, uuid); err != nil {
			r.logger.Warn("failed to cache name resolution",
				slog.String("name", properName),
				slog.String("error", err.Error()),
			)
		}
	}

	return uuid, nil
}

// asUUID reports whether the identifier is already a UUID, returning its
// undashed form.
func asUUID(s string) (string, bool) {
	undashed := strings.ReplaceAll(s, "-", "")
	if len(undashed) != 32 {
		return "", false
	}
	for _, c := range undashed {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return "", false
		}
	}
	return strings.ToLower(undashed), true
}
