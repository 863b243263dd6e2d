package types

import (
	"context"
	"fmt"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestOutcomeFromError(t *testing.T) {
	require.Equal(t, OutcomeApplied, OutcomeFromError(nil))
	require.Equal(t, OutcomeForbidden, OutcomeFromError(ErrForbidden))
	require.Equal(t, OutcomeForbidden, OutcomeFromError(ErrViewerRequired))
	require.Equal(t, OutcomeNotFound, OutcomeFromError(fmt.Errorf("load: %w", ErrRoleNotFound)))
	require.Equal(t, OutcomeFailed, OutcomeFromError(ErrRoleInUse))
}

func TestCategorizeAssignsCodes(t *testing.T) {
	cases := []struct {
		err      error
		category any
		textCode string
	}{
		{ErrViewerRequired, goerrors.CategoryAuth, textCodeViewerMissing},
		{ErrForbidden, goerrors.CategoryAuthz, textCodeForbidden},
		{ErrPurposeNotFound, goerrors.CategoryNotFound, textCodeNotFound},
		{ErrRoleInUse, goerrors.CategoryValidation, textCodeRoleInUse},
		{Invalid("name", "required"), goerrors.CategoryValidation, textCodeInvalid},
		{ErrGeneratorUnavailable, goerrors.CategoryInternal, textCodeUnavailable},
		{fmt.Errorf("boom"), goerrors.CategoryInternal, textCodeInternal},
	}
	for _, tc := range cases {
		var rich *goerrors.Error
		require.True(t, goerrors.As(Categorize(tc.err), &rich), tc.err.Error())
		require.Equal(t, tc.category, rich.Category, tc.err.Error())
		require.Equal(t, tc.textCode, rich.TextCode, tc.err.Error())
	}
	require.NoError(t, Categorize(nil))
}

func TestViewerFromProfile(t *testing.T) {
	parent := uuid.New()
	profile := &Profile{
		ID:             uuid.New(),
		OrganizationID: uuid.New(),
		ParentID:       &parent,
		IsAdmin:        true,
	}

	viewer := ViewerFromProfile(profile)
	require.Equal(t, profile.ID, viewer.ID)
	require.False(t, viewer.IsRoot())
	require.True(t, viewer.IsAdmin)
	require.False(t, viewer.IsSuperuser)

	parent = uuid.New()
	require.NotEqual(t, parent, *viewer.ParentID)
	require.True(t, ViewerFromProfile(nil).IsZero())
}

func TestOrganizationScopeResolver(t *testing.T) {
	viewer := Viewer{ID: uuid.New(), OrganizationID: uuid.New()}
	resolver := OrganizationScopeResolver{}

	scope, err := resolver.ResolveScope(context.Background(), viewer, ScopeFilter{})
	require.NoError(t, err)
	require.Equal(t, viewer.OrganizationID, scope.OrgID)

	_, err = resolver.ResolveScope(context.Background(), viewer, ScopeFilter{OrgID: uuid.New()})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestPrivilegePolicy(t *testing.T) {
	policy := PrivilegePolicy{}
	ctx := context.Background()

	admin := Viewer{ID: uuid.New(), IsAdmin: true}
	super := Viewer{ID: uuid.New(), IsSuperuser: true}
	member := Viewer{ID: uuid.New()}

	require.ErrorIs(t, policy.Authorize(ctx, PolicyCheck{Viewer: admin, Action: PolicyActionRolesWrite}), ErrForbidden)
	require.NoError(t, policy.Authorize(ctx, PolicyCheck{Viewer: super, Action: PolicyActionRolesWrite}))
	require.NoError(t, policy.Authorize(ctx, PolicyCheck{Viewer: admin, Action: PolicyActionProfilesRead}))
	require.ErrorIs(t, policy.Authorize(ctx, PolicyCheck{Viewer: member, Action: PolicyActionProfilesRead}), ErrForbidden)
	require.NoError(t, policy.Authorize(ctx, PolicyCheck{Viewer: member, Action: PolicyActionReportsWrite}))
}
