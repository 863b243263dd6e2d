package command

import (
	"context"
	"time"

	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/goliatone/go-worklog/scope"
	"github.com/google/uuid"
)

func safeClock(clock types.Clock) types.Clock {
	if clock != nil {
		return clock
	}
	return types.SystemClock{}
}

func safeLogger(logger types.Logger) types.Logger {
	if logger != nil {
		return logger
	}
	return types.NopLogger{}
}

func safeScopeGuard(g scope.Guard) scope.Guard {
	return scope.Ensure(g)
}

func now(clock types.Clock) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock.Now()
}

// fail records the outcome for err on result and returns err.
func fail(result *types.MutationResult, err error) error {
	if result != nil {
		result.Outcome = types.OutcomeFromError(err)
	}
	return err
}

func settle(result *types.MutationResult, outcome types.Outcome, role *types.Role, profile *types.Profile) {
	if result == nil {
		return
	}
	result.Outcome = outcome
	result.Role = role
	result.Profile = profile
}

// recorder writes the audit trail and fires hooks after a mutation.
type recorder struct {
	sink   types.ActivitySink
	hooks  types.Hooks
	clock  types.Clock
	logger types.Logger
}

func (r recorder) activity(ctx context.Context, viewer types.Viewer, target uuid.UUID, verb, objectType, objectID string, data map[string]any) {
	record := types.ActivityRecord{
		UserID:     target,
		ActorID:    viewer.ID,
		OrgID:      viewer.OrganizationID,
		Verb:       verb,
		ObjectType: objectType,
		ObjectID:   objectID,
		Data:       data,
		OccurredAt: now(r.clock),
	}
	if r.sink != nil {
		if err := r.sink.Log(ctx, record); err != nil {
			safeLogger(r.logger).Error("activity log failed", err, "verb", verb)
		}
	}
	if r.hooks.AfterActivity != nil {
		r.hooks.AfterActivity(ctx, record)
	}
}

func (r recorder) profile(ctx context.Context, viewer types.Viewer, action string, profile *types.Profile) {
	if r.hooks.AfterProfileChange == nil || profile == nil {
		return
	}
	r.hooks.AfterProfileChange(ctx, types.ProfileEvent{
		UserID:     profile.ID,
		ActorID:    viewer.ID,
		Action:     action,
		OccurredAt: now(r.clock),
		Profile:    *profile,
	})
}
