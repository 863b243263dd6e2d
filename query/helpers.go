package query

import (
	"context"

	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/goliatone/go-worklog/scope"
	"github.com/google/uuid"
)

// VisibilityResolver answers which profiles a viewer may browse.
// *hierarchy.Resolver satisfies it.
type VisibilityResolver interface {
	ResolveVisibleUsers(ctx context.Context, viewer types.Viewer) ([]types.Profile, error)
	CanView(ctx context.Context, viewer types.Viewer, targetID uuid.UUID) (bool, error)
}

func safeScopeGuard(g scope.Guard) scope.Guard {
	return scope.Ensure(g)
}

// subjectGuard decides whose records a read may return. Reading your own
// records needs reports:read; reading somebody else's needs profiles:read and
// the target inside the viewer's visible set.
type subjectGuard struct {
	guard      scope.Guard
	visibility VisibilityResolver
}

func (s subjectGuard) subject(ctx context.Context, viewer types.Viewer, userID uuid.UUID) (uuid.UUID, error) {
	if viewer.IsZero() {
		return uuid.Nil, types.ErrViewerRequired
	}
	if userID == uuid.Nil || userID == viewer.ID {
		if _, err := s.guard.Enforce(ctx, viewer, types.ScopeFilter{UserID: viewer.ID}, types.PolicyActionReportsRead, viewer.ID); err != nil {
			return uuid.Nil, err
		}
		return viewer.ID, nil
	}
	if _, err := s.guard.Enforce(ctx, viewer, types.ScopeFilter{UserID: userID}, types.PolicyActionProfilesRead, userID); err != nil {
		return uuid.Nil, err
	}
	if s.visibility == nil {
		return uuid.Nil, types.ErrServiceNotReady
	}
	ok, err := s.visibility.CanView(ctx, viewer, userID)
	if err != nil {
		return uuid.Nil, err
	}
	if !ok {
		return uuid.Nil, types.ErrForbidden
	}
	return userID, nil
}
