package query

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/goliatone/go-worklog/scope"
	"github.com/google/uuid"
)

// ActivityFeedInput narrows the audit trail.
type ActivityFeedInput struct {
	Viewer types.Viewer
	UserID uuid.UUID
	Verbs  []string
	Limit  int
}

// Type implements gocommand.Message.
func (ActivityFeedInput) Type() string {
	return "query.activity.feed"
}

// Validate implements gocommand.Message.
func (input ActivityFeedInput) Validate() error {
	if input.Viewer.IsZero() {
		return types.ErrViewerRequired
	}
	return nil
}

// ActivityFeedQuery renders the organization's audit trail.
type ActivityFeedQuery struct {
	repo  types.ActivityRepository
	guard scope.Guard
}

// NewActivityFeedQuery constructs the feed query helper.
func NewActivityFeedQuery(repo types.ActivityRepository, guard scope.Guard) *ActivityFeedQuery {
	return &ActivityFeedQuery{
		repo:  repo,
		guard: safeScopeGuard(guard),
	}
}

var _ gocommand.Querier[ActivityFeedInput, []types.ActivityRecord] = (*ActivityFeedQuery)(nil)

// Query fetches the newest entries of the viewer's organization.
func (q *ActivityFeedQuery) Query(ctx context.Context, input ActivityFeedInput) ([]types.ActivityRecord, error) {
	if q.repo == nil {
		return nil, types.ErrServiceNotReady
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	scope, err := q.guard.Enforce(ctx, input.Viewer, types.ScopeFilter{}, types.PolicyActionActivityRead, uuid.Nil)
	if err != nil {
		return nil, err
	}
	return q.repo.ListActivity(ctx, types.ActivityFilter{
		OrgID:  scope.OrgID,
		UserID: input.UserID,
		Verbs:  input.Verbs,
		Limit:  input.Limit,
	})
}
