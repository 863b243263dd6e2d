package hierarchy

import (
	"context"
	"errors"

	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/google/uuid"
)

// ErrCycleDetected is logged when the parent chain loops back on itself.
var ErrCycleDetected = errors.New("go-worklog: profile hierarchy contains a cycle")

// ProfileSource is the subset of the profile store the resolver reads.
type ProfileSource interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*types.Profile, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]types.Profile, error)
}

// ResolverConfig wires the resolver dependencies.
type ResolverConfig struct {
	Profiles ProfileSource
	Logger   types.Logger
}

// Resolver answers subordinate and visibility questions. Each call fetches
// the organization once and walks an in-memory forest.
type Resolver struct {
	profiles ProfileSource
	logger   types.Logger
}

// NewResolver constructs a Resolver.
func NewResolver(cfg ResolverConfig) (*Resolver, error) {
	if cfg.Profiles == nil {
		return nil, errors.New("hierarchy: profile source required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &Resolver{
		profiles: cfg.Profiles,
		logger:   logger,
	}, nil
}

// Forest loads the organization into memory.
func (r *Resolver) Forest(ctx context.Context, orgID uuid.UUID) (*Forest, error) {
	profiles, err := r.profiles.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return NewForest(profiles), nil
}

// ResolveSubordinates returns every profile below the manager. The result is
// empty, not an error, when the manager has no reports.
func (r *Resolver) ResolveSubordinates(ctx context.Context, managerID uuid.UUID) ([]types.Profile, error) {
	manager, err := r.profiles.GetProfile(ctx, managerID)
	if err != nil {
		return nil, err
	}
	forest, err := r.Forest(ctx, manager.OrganizationID)
	if err != nil {
		return nil, err
	}
	return r.descendants(forest, managerID), nil
}

// ResolveVisibleUsers returns the profiles the viewer may browse. The
// organization root sees everyone else in its organization; any other viewer
// sees its subordinates. The viewer itself is never included.
func (r *Resolver) ResolveVisibleUsers(ctx context.Context, viewer types.Viewer) ([]types.Profile, error) {
	if viewer.IsZero() {
		return nil, types.ErrViewerRequired
	}
	forest, err := r.Forest(ctx, viewer.OrganizationID)
	if err != nil {
		return nil, err
	}
	return r.visible(forest, viewer), nil
}

// CanView reports whether target is the viewer or within its visible set.
// An unknown target yields types.ErrProfileNotFound.
func (r *Resolver) CanView(ctx context.Context, viewer types.Viewer, targetID uuid.UUID) (bool, error) {
	if viewer.IsZero() {
		return false, types.ErrViewerRequired
	}
	if targetID == viewer.ID {
		return true, nil
	}
	target, err := r.profiles.GetProfile(ctx, targetID)
	if err != nil {
		return false, err
	}
	if target.OrganizationID != viewer.OrganizationID {
		return false, nil
	}
	forest, err := r.Forest(ctx, viewer.OrganizationID)
	if err != nil {
		return false, err
	}
	for _, p := range r.visible(forest, viewer) {
		if p.ID == targetID {
			return true, nil
		}
	}
	return false, nil
}

func (r *Resolver) visible(forest *Forest, viewer types.Viewer) []types.Profile {
	if viewer.IsRoot() {
		return forest.AllExcept(viewer.ID)
	}
	return r.descendants(forest, viewer.ID)
}

func (r *Resolver) descendants(forest *Forest, root uuid.UUID) []types.Profile {
	out := forest.Descendants(root, func(id uuid.UUID) {
		r.logger.Error("hierarchy walk revisited profile", ErrCycleDetected,
			"profile_id", id,
			"root_id", root)
	})
	if out == nil {
		return []types.Profile{}
	}
	return out
}
