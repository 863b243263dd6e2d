package query

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/goliatone/go-worklog/scope"
	"github.com/google/uuid"
)

// VisibleUsersInput asks for the admin roster.
type VisibleUsersInput struct {
	Viewer types.Viewer
}

// Type implements gocommand.Message.
func (VisibleUsersInput) Type() string {
	return "query.profile.visible"
}

// Validate implements gocommand.Message.
func (input VisibleUsersInput) Validate() error {
	if input.Viewer.IsZero() {
		return types.ErrViewerRequired
	}
	return nil
}

// VisibleUsersQuery lists the profiles shown on the admin roster.
type VisibleUsersQuery struct {
	resolver VisibilityResolver
	guard    scope.Guard
}

// NewVisibleUsersQuery constructs the roster query.
func NewVisibleUsersQuery(resolver VisibilityResolver, guard scope.Guard) *VisibleUsersQuery {
	return &VisibleUsersQuery{
		resolver: resolver,
		guard:    safeScopeGuard(guard),
	}
}

var _ gocommand.Querier[VisibleUsersInput, []types.Profile] = (*VisibleUsersQuery)(nil)

// Query returns every profile below the viewer, or the whole organization
// minus the viewer when the viewer is the root.
func (q *VisibleUsersQuery) Query(ctx context.Context, input VisibleUsersInput) ([]types.Profile, error) {
	if q.resolver == nil {
		return nil, types.ErrServiceNotReady
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if _, err := q.guard.Enforce(ctx, input.Viewer, types.ScopeFilter{}, types.PolicyActionProfilesRead, uuid.Nil); err != nil {
		return nil, err
	}
	return q.resolver.ResolveVisibleUsers(ctx, input.Viewer)
}

// ProfileInput loads a profile. A nil UserID means the viewer's own.
type ProfileInput struct {
	Viewer types.Viewer
	UserID uuid.UUID
}

// Type implements gocommand.Message.
func (ProfileInput) Type() string {
	return "query.profile.detail"
}

// Validate implements gocommand.Message.
func (input ProfileInput) Validate() error {
	if input.Viewer.IsZero() {
		return types.ErrViewerRequired
	}
	return nil
}

// ProfileQuery fetches a profile with its role.
type ProfileQuery struct {
	profiles types.ProfileRepository
	subjects subjectGuard
}

// NewProfileQuery constructs the profile query helper.
func NewProfileQuery(profiles types.ProfileRepository, resolver VisibilityResolver, guard scope.Guard) *ProfileQuery {
	return &ProfileQuery{
		profiles: profiles,
		subjects: subjectGuard{guard: safeScopeGuard(guard), visibility: resolver},
	}
}

var _ gocommand.Querier[ProfileInput, *types.Profile] = (*ProfileQuery)(nil)

// Query returns the requested profile.
func (q *ProfileQuery) Query(ctx context.Context, input ProfileInput) (*types.Profile, error) {
	if q.profiles == nil {
		return nil, types.ErrServiceNotReady
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	userID, err := q.subjects.subject(ctx, input.Viewer, input.UserID)
	if err != nil {
		return nil, err
	}
	return q.profiles.GetProfile(ctx, userID)
}
