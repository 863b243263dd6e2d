package registry

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-worklog/internal/testdb"
	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRoleRegistry_CreateAssignsLevels(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	orgID := testdb.Organization(t, db, "acme")

	var events []types.RoleEvent
	reg, err := NewRoleRegistry(RoleRegistryConfig{
		DB: db,
		Hooks: types.Hooks{
			AfterRoleChange: func(_ context.Context, evt types.RoleEvent) {
				events = append(events, evt)
			},
		},
		Clock: fixedClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	})
	require.NoError(t, err)

	scope := types.ScopeFilter{OrgID: orgID}
	actor := uuid.New()

	first, err := reg.CreateRole(ctx, types.RoleMutation{Name: "  Staff  ", Scope: scope, ActorID: actor})
	require.NoError(t, err)
	require.Equal(t, "Staff", first.Name)
	require.Equal(t, 0, first.Level)

	second, err := reg.CreateRole(ctx, types.RoleMutation{Name: "Lead", Scope: scope, ActorID: actor})
	require.NoError(t, err)
	require.Equal(t, 1, second.Level)

	_, err = reg.CreateRole(ctx, types.RoleMutation{Name: "   ", Scope: scope, ActorID: actor})
	var invalid *types.ValidationError
	require.ErrorAs(t, err, &invalid)

	roles, err := reg.ListRoles(ctx, scope)
	require.NoError(t, err)
	require.Equal(t, []string{"Lead", "Staff"}, roleNames(roles))

	require.Len(t, events, 2)
	require.Equal(t, "role.created", events[0].Action)
	require.Equal(t, actor, events[0].ActorID)
}

func TestRoleRegistry_CreateIgnoresOtherOrganizations(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	orgA := testdb.Organization(t, db, "a")
	orgB := testdb.Organization(t, db, "b")
	testdb.Role(t, db, orgA, "Director", 7)

	reg, err := NewRoleRegistry(RoleRegistryConfig{DB: db})
	require.NoError(t, err)

	role, err := reg.CreateRole(ctx, types.RoleMutation{Name: "Staff", Scope: types.ScopeFilter{OrgID: orgB}})
	require.NoError(t, err)
	require.Equal(t, 0, role.Level)

	_, err = reg.GetRole(ctx, role.ID, types.ScopeFilter{OrgID: orgA})
	require.ErrorIs(t, err, types.ErrRoleNotFound)
}

func TestRoleRegistry_MoveSwapsAdjacentLevels(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	orgID := testdb.Organization(t, db, "acme")
	r1 := testdb.Role(t, db, orgID, "r1", 2)
	r2 := testdb.Role(t, db, orgID, "r2", 1)
	r3 := testdb.Role(t, db, orgID, "r3", 0)

	reg, err := NewRoleRegistry(RoleRegistryConfig{DB: db})
	require.NoError(t, err)
	scope := types.ScopeFilter{OrgID: orgID}

	moved, err := reg.MoveRole(ctx, r2, types.DirectionUp, scope, uuid.Nil)
	require.NoError(t, err)
	require.True(t, moved)

	roles, err := reg.ListRoles(ctx, scope)
	require.NoError(t, err)
	require.Equal(t, []string{"r2", "r1", "r3"}, roleNames(roles))
	require.Equal(t, map[uuid.UUID]int{r2: 2, r1: 1, r3: 0}, roleLevels(roles))

	moved, err = reg.MoveRole(ctx, r2, types.DirectionDown, scope, uuid.Nil)
	require.NoError(t, err)
	require.True(t, moved)

	roles, err = reg.ListRoles(ctx, scope)
	require.NoError(t, err)
	require.Equal(t, map[uuid.UUID]int{r1: 2, r2: 1, r3: 0}, roleLevels(roles))
}

func TestRoleRegistry_MoveAtEdgesIsNoop(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	orgID := testdb.Organization(t, db, "acme")
	top := testdb.Role(t, db, orgID, "top", 1)
	bottom := testdb.Role(t, db, orgID, "bottom", 0)

	var events int
	reg, err := NewRoleRegistry(RoleRegistryConfig{
		DB: db,
		Hooks: types.Hooks{
			AfterRoleChange: func(context.Context, types.RoleEvent) { events++ },
		},
	})
	require.NoError(t, err)
	scope := types.ScopeFilter{OrgID: orgID}

	moved, err := reg.MoveRole(ctx, top, types.DirectionUp, scope, uuid.Nil)
	require.NoError(t, err)
	require.False(t, moved)

	moved, err = reg.MoveRole(ctx, bottom, types.DirectionDown, scope, uuid.Nil)
	require.NoError(t, err)
	require.False(t, moved)

	roles, err := reg.ListRoles(ctx, scope)
	require.NoError(t, err)
	require.Equal(t, map[uuid.UUID]int{top: 1, bottom: 0}, roleLevels(roles))
	require.Zero(t, events)

	_, err = reg.MoveRole(ctx, uuid.New(), types.DirectionUp, scope, uuid.Nil)
	require.ErrorIs(t, err, types.ErrRoleNotFound)
}

func TestRoleRegistry_DeleteRefusedWhileInUse(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	orgID := testdb.Organization(t, db, "acme")
	used := testdb.Role(t, db, orgID, "used", 1)
	unused := testdb.Role(t, db, orgID, "unused", 0)
	testdb.Profile(t, db, testdb.ProfileSeed{OrgID: orgID, RoleID: &used})

	reg, err := NewRoleRegistry(RoleRegistryConfig{DB: db})
	require.NoError(t, err)
	scope := types.ScopeFilter{OrgID: orgID}

	err = reg.DeleteRole(ctx, used, scope, uuid.Nil)
	require.ErrorIs(t, err, types.ErrRoleInUse)

	_, err = reg.GetRole(ctx, used, scope)
	require.NoError(t, err)

	require.NoError(t, reg.DeleteRole(ctx, unused, scope, uuid.Nil))
	_, err = reg.GetRole(ctx, unused, scope)
	require.ErrorIs(t, err, types.ErrRoleNotFound)

	err = reg.DeleteRole(ctx, unused, scope, uuid.Nil)
	require.ErrorIs(t, err, types.ErrRoleNotFound)
}

func TestRoleRegistry_Rename(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	orgID := testdb.Organization(t, db, "acme")
	id := testdb.Role(t, db, orgID, "Old", 0)

	reg, err := NewRoleRegistry(RoleRegistryConfig{DB: db})
	require.NoError(t, err)
	scope := types.ScopeFilter{OrgID: orgID}

	role, err := reg.RenameRole(ctx, id, types.RoleMutation{Name: " New ", Scope: scope})
	require.NoError(t, err)
	require.Equal(t, "New", role.Name)

	_, err = reg.RenameRole(ctx, uuid.New(), types.RoleMutation{Name: "x", Scope: scope})
	require.ErrorIs(t, err, types.ErrRoleNotFound)
}

func TestAdjacent(t *testing.T) {
	a := &RoleRecord{ID: uuid.New(), Level: 2}
	b := &RoleRecord{ID: uuid.New(), Level: 1}
	records := []*RoleRecord{a, b}

	cur, next, found := adjacent(records, b.ID, types.DirectionUp)
	require.True(t, found)
	require.Same(t, b, cur)
	require.Same(t, a, next)

	_, next, found = adjacent(records, a.ID, types.DirectionUp)
	require.True(t, found)
	require.Nil(t, next)

	_, _, found = adjacent(records, uuid.New(), types.DirectionDown)
	require.False(t, found)
}

type fixedClock struct {
	t time.Time
}

func (f fixedClock) Now() time.Time {
	return f.t
}

func roleNames(roles []types.Role) []string {
	out := make([]string, 0, len(roles))
	for _, role := range roles {
		out = append(out, role.Name)
	}
	return out
}

func roleLevels(roles []types.Role) map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(roles))
	for _, role := range roles {
		out[role.ID] = role.Level
	}
	return out
}
