package command

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type roleFixture struct {
	orgID    uuid.UUID
	registry *fakeRegistry
	profiles *fakeProfiles
	sink     *recordingActivitySink
	super    types.Viewer
	admin    types.Viewer
	member   *types.Profile
}

func newRoleFixture() *roleFixture {
	orgID := uuid.New()
	profiles := newFakeProfiles()
	root := profiles.add(types.Profile{OrganizationID: orgID, IsSuperuser: true, Email: "root@example.com"})
	rootID := root.ID
	admin := profiles.add(types.Profile{OrganizationID: orgID, IsAdmin: true, ParentID: &rootID})
	member := profiles.add(types.Profile{OrganizationID: orgID, ParentID: &rootID})
	return &roleFixture{
		orgID:    orgID,
		registry: newFakeRegistry(),
		profiles: profiles,
		sink:     &recordingActivitySink{},
		super:    types.ViewerFromProfile(root),
		admin:    types.ViewerFromProfile(admin),
		member:   member,
	}
}

func (f *roleFixture) config() RoleCommandConfig {
	return RoleCommandConfig{
		Registry: f.registry,
		Profiles: f.profiles,
		Activity: f.sink,
	}
}

func TestChangeRoleCommand_RequiresSuperuser(t *testing.T) {
	f := newRoleFixture()
	role := f.registry.add(f.orgID, "Lead", 1)
	result := &types.MutationResult{}

	err := NewChangeRoleCommand(f.config()).Execute(context.Background(), ChangeRoleInput{
		Viewer: f.admin,
		UserID: f.member.ID,
		RoleID: role.ID,
		Result: result,
	})

	require.ErrorIs(t, err, types.ErrForbidden)
	require.Equal(t, types.OutcomeForbidden, result.Outcome)
	require.Zero(t, f.profiles.writes)
	require.Empty(t, f.sink.records)
}

func TestChangeRoleCommand_AssignsRole(t *testing.T) {
	f := newRoleFixture()
	role := f.registry.add(f.orgID, "Lead", 1)
	var events []types.ProfileEvent
	cfg := f.config()
	cfg.Hooks.AfterProfileChange = func(_ context.Context, event types.ProfileEvent) {
		events = append(events, event)
	}
	result := &types.MutationResult{}

	err := NewChangeRoleCommand(cfg).Execute(context.Background(), ChangeRoleInput{
		Viewer: f.super,
		UserID: f.member.ID,
		RoleID: role.ID,
		Result: result,
	})

	require.NoError(t, err)
	require.Equal(t, types.OutcomeApplied, result.Outcome)
	require.NotNil(t, result.Profile.RoleID)
	require.Equal(t, role.ID, *result.Profile.RoleID)
	require.Equal(t, []string{"profile.role.changed"}, f.sink.verbs())
	require.Equal(t, f.member.ID, f.sink.records[0].UserID)
	require.Equal(t, f.super.ID, f.sink.records[0].ActorID)
	require.Len(t, events, 1)

	err = NewChangeRoleCommand(f.config()).Execute(context.Background(), ChangeRoleInput{
		Viewer: f.super,
		UserID: f.member.ID,
		RoleID: role.ID,
		Result: result,
	})
	require.NoError(t, err)
	require.Equal(t, types.OutcomeUnchanged, result.Outcome)
	require.Equal(t, 1, f.profiles.writes)
}

func TestChangeRoleCommand_OtherOrganizationReadsAsNotFound(t *testing.T) {
	f := newRoleFixture()
	foreignRole := f.registry.add(uuid.New(), "Lead", 0)
	foreigner := f.profiles.add(types.Profile{OrganizationID: uuid.New()})
	localRole := f.registry.add(f.orgID, "Staff", 0)
	result := &types.MutationResult{}

	err := NewChangeRoleCommand(f.config()).Execute(context.Background(), ChangeRoleInput{
		Viewer: f.super,
		UserID: f.member.ID,
		RoleID: foreignRole.ID,
		Result: result,
	})
	require.ErrorIs(t, err, types.ErrRoleNotFound)
	require.Equal(t, types.OutcomeNotFound, result.Outcome)

	err = NewChangeRoleCommand(f.config()).Execute(context.Background(), ChangeRoleInput{
		Viewer: f.super,
		UserID: foreigner.ID,
		RoleID: localRole.ID,
		Result: result,
	})
	require.ErrorIs(t, err, types.ErrProfileNotFound)
	require.Equal(t, types.OutcomeNotFound, result.Outcome)
	require.Zero(t, f.profiles.writes)
}

func TestChangeRoleCommand_ViewerRequired(t *testing.T) {
	f := newRoleFixture()
	result := &types.MutationResult{}
	err := NewChangeRoleCommand(f.config()).Execute(context.Background(), ChangeRoleInput{
		UserID: f.member.ID,
		RoleID: uuid.New(),
		Result: result,
	})
	require.ErrorIs(t, err, ErrViewerRequired)
	require.Equal(t, types.OutcomeForbidden, result.Outcome)
}

func TestSetAdminFlagCommand(t *testing.T) {
	f := newRoleFixture()
	cmd := NewSetAdminFlagCommand(f.config())
	result := &types.MutationResult{}

	err := cmd.Execute(context.Background(), SetAdminFlagInput{Viewer: f.admin, UserID: f.member.ID, IsAdmin: true, Result: result})
	require.ErrorIs(t, err, types.ErrForbidden)
	require.Equal(t, types.OutcomeForbidden, result.Outcome)

	err = cmd.Execute(context.Background(), SetAdminFlagInput{Viewer: f.super, UserID: f.member.ID, IsAdmin: true, Result: result})
	require.NoError(t, err)
	require.Equal(t, types.OutcomeApplied, result.Outcome)
	require.True(t, result.Profile.IsAdmin)

	err = cmd.Execute(context.Background(), SetAdminFlagInput{Viewer: f.super, UserID: f.member.ID, IsAdmin: true, Result: result})
	require.NoError(t, err)
	require.Equal(t, types.OutcomeUnchanged, result.Outcome)
	require.Equal(t, []string{"profile.admin.set"}, f.sink.verbs())
}

func TestCreateRoleCommand_LevelsStack(t *testing.T) {
	f := newRoleFixture()
	cmd := NewCreateRoleCommand(f.config())
	result := &types.MutationResult{}

	require.NoError(t, cmd.Execute(context.Background(), CreateRoleInput{Viewer: f.super, Name: " Staff ", Result: result}))
	require.Equal(t, 0, result.Role.Level)
	require.Equal(t, "Staff", result.Role.Name)

	require.NoError(t, cmd.Execute(context.Background(), CreateRoleInput{Viewer: f.super, Name: "Lead", Result: result}))
	require.Equal(t, 1, result.Role.Level)
	require.Equal(t, f.orgID, result.Role.OrganizationID)

	err := cmd.Execute(context.Background(), CreateRoleInput{Viewer: f.super, Name: "  "})
	require.ErrorIs(t, err, ErrRoleNameRequired)

	err = cmd.Execute(context.Background(), CreateRoleInput{Viewer: f.admin, Name: "Manager", Result: result})
	require.ErrorIs(t, err, types.ErrForbidden)
	require.Equal(t, 2, f.registry.created)
}

func TestRenameRoleCommand(t *testing.T) {
	f := newRoleFixture()
	role := f.registry.add(f.orgID, "Staff", 0)
	result := &types.MutationResult{}

	err := NewRenameRoleCommand(f.config()).Execute(context.Background(), RenameRoleInput{
		Viewer: f.super,
		RoleID: role.ID,
		Name:   "Associate",
		Result: result,
	})
	require.NoError(t, err)
	require.Equal(t, "Associate", result.Role.Name)
	require.Equal(t, []string{"role.renamed"}, f.sink.verbs())
}

func TestDeleteRoleCommand_InUse(t *testing.T) {
	f := newRoleFixture()
	role := f.registry.add(f.orgID, "Staff", 0)
	f.registry.inUse[role.ID] = true
	result := &types.MutationResult{}

	err := NewDeleteRoleCommand(f.config()).Execute(context.Background(), DeleteRoleInput{
		Viewer: f.super,
		RoleID: role.ID,
		Result: result,
	})

	require.ErrorIs(t, err, types.ErrRoleInUse)
	require.Equal(t, types.OutcomeFailed, result.Outcome)
	require.Empty(t, f.registry.deleted)
	require.Empty(t, f.sink.records)

	f.registry.inUse[role.ID] = false
	require.NoError(t, NewDeleteRoleCommand(f.config()).Execute(context.Background(), DeleteRoleInput{
		Viewer: f.super,
		RoleID: role.ID,
		Result: result,
	}))
	require.Equal(t, types.OutcomeApplied, result.Outcome)
	require.Equal(t, []uuid.UUID{role.ID}, f.registry.deleted)
}

func TestMoveRoleCommand(t *testing.T) {
	f := newRoleFixture()
	role := f.registry.add(f.orgID, "Staff", 0)
	cmd := NewMoveRoleCommand(f.config())
	result := &types.MutationResult{}

	err := cmd.Execute(context.Background(), MoveRoleInput{Viewer: f.super, RoleID: role.ID, Direction: "sideways", Result: result})
	require.ErrorIs(t, err, ErrDirectionInvalid)

	f.registry.moveResult = false
	require.NoError(t, cmd.Execute(context.Background(), MoveRoleInput{Viewer: f.super, RoleID: role.ID, Direction: types.DirectionUp, Result: result}))
	require.Equal(t, types.OutcomeUnchanged, result.Outcome)
	require.Empty(t, f.sink.records)

	f.registry.moveResult = true
	require.NoError(t, cmd.Execute(context.Background(), MoveRoleInput{Viewer: f.super, RoleID: role.ID, Direction: types.DirectionDown, Result: result}))
	require.Equal(t, types.OutcomeApplied, result.Outcome)
	require.Equal(t, []types.Direction{types.DirectionUp, types.DirectionDown}, f.registry.moves)
	require.Equal(t, "down", f.sink.records[0].Data["direction"])

	err = cmd.Execute(context.Background(), MoveRoleInput{Viewer: f.admin, RoleID: role.ID, Direction: types.DirectionUp, Result: result})
	require.ErrorIs(t, err, types.ErrForbidden)
	require.Len(t, f.registry.moves, 2)
}

func TestActivitySinkFailureDoesNotFailCommand(t *testing.T) {
	f := newRoleFixture()
	f.sink.err = errors.New("sink down")
	result := &types.MutationResult{}

	err := NewCreateRoleCommand(f.config()).Execute(context.Background(), CreateRoleInput{Viewer: f.super, Name: "Lead", Result: result})
	require.NoError(t, err)
	require.Equal(t, types.OutcomeApplied, result.Outcome)
	require.Len(t, f.sink.records, 1)
}

func TestUpdateProfileCommand(t *testing.T) {
	f := newRoleFixture()
	name := "  Hana  "
	notes := "short sentences"
	var out types.Profile

	err := NewUpdateProfileCommand(ProfileCommandConfig{Profiles: f.profiles}).Execute(context.Background(), UpdateProfileInput{
		Viewer:   types.ViewerFromProfile(f.member),
		Name:     &name,
		Personal: &notes,
		Result:   &out,
	})
	require.NoError(t, err)
	require.Equal(t, "Hana", out.Name)
	require.Equal(t, notes, out.Personal)

	err = NewUpdateProfileCommand(ProfileCommandConfig{Profiles: f.profiles}).Execute(context.Background(), UpdateProfileInput{})
	require.ErrorIs(t, err, ErrViewerRequired)
}
