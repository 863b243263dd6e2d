package command

import (
	"context"

	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/google/uuid"
)

const (
	// FeatureAIDraft gates report drafting.
	FeatureAIDraft = "worklog.ai.draft"
	// FeatureAIInsights gates insight extraction.
	FeatureAIInsights = "worklog.ai.insights"
	// FeatureAIStyle gates writing style analysis.
	FeatureAIStyle = "worklog.ai.style"
)

func featureEnabled(ctx context.Context, gate featuregate.FeatureGate, key string, viewer types.Viewer) (bool, error) {
	if gate == nil {
		return true, nil
	}
	scopeSet := featureScopeSet(viewer)
	if scopeSet == nil {
		return gate.Enabled(ctx, key)
	}
	return gate.Enabled(ctx, key, featuregate.WithScopeSet(*scopeSet))
}

func requireFeature(ctx context.Context, gate featuregate.FeatureGate, key string, viewer types.Viewer) error {
	enabled, err := featureEnabled(ctx, gate, key, viewer)
	if err != nil {
		return err
	}
	if !enabled {
		return types.ErrFeatureDisabled
	}
	return nil
}

func featureScopeSet(viewer types.Viewer) *featuregate.ScopeSet {
	orgID := ""
	if viewer.OrganizationID != uuid.Nil {
		orgID = viewer.OrganizationID.String()
	}
	user := ""
	if viewer.ID != uuid.Nil {
		user = viewer.ID.String()
	}
	if orgID == "" && user == "" {
		return nil
	}
	return &featuregate.ScopeSet{
		System: true,
		OrgID:  orgID,
		UserID: user,
	}
}
