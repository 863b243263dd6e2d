package query

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-worklog/hierarchy"
	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type orgFixture struct {
	orgID    uuid.UUID
	profiles *memoryProfiles
	resolver *hierarchy.Resolver
	root     *types.Profile
	admin    *types.Profile
	report   *types.Profile
	peer     *types.Profile
}

// newOrgFixture builds root -> {admin -> report, peer}.
func newOrgFixture(t *testing.T) *orgFixture {
	t.Helper()
	orgID := uuid.New()
	profiles := &memoryProfiles{byID: map[uuid.UUID]types.Profile{}}
	root := profiles.add(types.Profile{OrganizationID: orgID, Email: "root@example.com", IsSuperuser: true, IsAdmin: true})
	admin := profiles.add(types.Profile{OrganizationID: orgID, Email: "admin@example.com", IsAdmin: true, ParentID: &root.ID})
	report := profiles.add(types.Profile{OrganizationID: orgID, Email: "report@example.com", ParentID: &admin.ID})
	peer := profiles.add(types.Profile{OrganizationID: orgID, Email: "peer@example.com", ParentID: &root.ID})

	resolver, err := hierarchy.NewResolver(hierarchy.ResolverConfig{Profiles: profiles})
	require.NoError(t, err)
	return &orgFixture{
		orgID:    orgID,
		profiles: profiles,
		resolver: resolver,
		root:     root,
		admin:    admin,
		report:   report,
		peer:     peer,
	}
}

func viewerOf(p *types.Profile) types.Viewer {
	return types.ViewerFromProfile(p)
}

func TestVisibleUsersQuery(t *testing.T) {
	f := newOrgFixture(t)
	q := NewVisibleUsersQuery(f.resolver, nil)

	all, err := q.Query(context.Background(), VisibleUsersInput{Viewer: viewerOf(f.root)})
	require.NoError(t, err)
	require.ElementsMatch(t, []uuid.UUID{f.admin.ID, f.report.ID, f.peer.ID}, ids(all))

	below, err := q.Query(context.Background(), VisibleUsersInput{Viewer: viewerOf(f.admin)})
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{f.report.ID}, ids(below))

	_, err = q.Query(context.Background(), VisibleUsersInput{Viewer: viewerOf(f.report)})
	require.ErrorIs(t, err, types.ErrForbidden)

	_, err = q.Query(context.Background(), VisibleUsersInput{})
	require.ErrorIs(t, err, types.ErrViewerRequired)
}

func TestProfileQuery_Visibility(t *testing.T) {
	f := newOrgFixture(t)
	q := NewProfileQuery(f.profiles, f.resolver, nil)

	own, err := q.Query(context.Background(), ProfileInput{Viewer: viewerOf(f.report)})
	require.NoError(t, err)
	require.Equal(t, f.report.ID, own.ID)

	got, err := q.Query(context.Background(), ProfileInput{Viewer: viewerOf(f.admin), UserID: f.report.ID})
	require.NoError(t, err)
	require.Equal(t, "report@example.com", got.Email)

	_, err = q.Query(context.Background(), ProfileInput{Viewer: viewerOf(f.admin), UserID: f.peer.ID})
	require.ErrorIs(t, err, types.ErrForbidden)

	_, err = q.Query(context.Background(), ProfileInput{Viewer: viewerOf(f.admin), UserID: uuid.New()})
	require.ErrorIs(t, err, types.ErrProfileNotFound)
}

func TestPurposeQueries_AdminBrowsing(t *testing.T) {
	f := newOrgFixture(t)
	purposes := &memoryPurposes{byID: map[uuid.UUID]types.Purpose{}}
	reportPurpose := purposes.add(types.Purpose{UserID: f.report.ID, Name: "Report folder"})
	peerPurpose := purposes.add(types.Purpose{UserID: f.peer.ID, Name: "Peer folder"})
	cfg := WorklogQueryConfig{Purposes: purposes, Visibility: f.resolver}

	list := NewPurposeListQuery(cfg)
	own, err := list.Query(context.Background(), OwnerInput{Viewer: viewerOf(f.report)})
	require.NoError(t, err)
	require.Len(t, own, 1)

	browsed, err := list.Query(context.Background(), OwnerInput{Viewer: viewerOf(f.admin), UserID: f.report.ID})
	require.NoError(t, err)
	require.Equal(t, reportPurpose.ID, browsed[0].ID)

	_, err = list.Query(context.Background(), OwnerInput{Viewer: viewerOf(f.admin), UserID: f.peer.ID})
	require.ErrorIs(t, err, types.ErrForbidden)

	_, err = list.Query(context.Background(), OwnerInput{Viewer: viewerOf(f.report), UserID: f.admin.ID})
	require.ErrorIs(t, err, types.ErrForbidden)

	root, err := list.Query(context.Background(), OwnerInput{Viewer: viewerOf(f.root), UserID: f.peer.ID})
	require.NoError(t, err)
	require.Equal(t, peerPurpose.ID, root[0].ID)

	detail := NewPurposeDetailQuery(cfg)
	_, err = detail.Query(context.Background(), RecordInput{Viewer: viewerOf(f.admin), UserID: f.report.ID, ID: peerPurpose.ID})
	require.ErrorIs(t, err, types.ErrPurposeNotFound)

	got, err := detail.Query(context.Background(), RecordInput{Viewer: viewerOf(f.admin), UserID: f.report.ID, ID: reportPurpose.ID})
	require.NoError(t, err)
	require.Equal(t, "Report folder", got.Name)

	_, err = detail.Query(context.Background(), RecordInput{Viewer: viewerOf(f.report), ID: peerPurpose.ID})
	require.ErrorIs(t, err, types.ErrPurposeNotFound)
}

func TestRoleListQuery(t *testing.T) {
	f := newOrgFixture(t)
	registry := &listingRegistry{roles: []types.Role{{ID: uuid.New(), OrganizationID: f.orgID, Name: "Lead", Level: 1}}}
	q := NewRoleListQuery(registry, nil)

	roles, err := q.Query(context.Background(), RoleListInput{Viewer: viewerOf(f.admin)})
	require.NoError(t, err)
	require.Len(t, roles, 1)
	require.Equal(t, f.orgID, registry.lastScope.OrgID)

	_, err = q.Query(context.Background(), RoleListInput{Viewer: viewerOf(f.report)})
	require.ErrorIs(t, err, types.ErrForbidden)
}

func TestActivityFeedQuery(t *testing.T) {
	f := newOrgFixture(t)
	repo := &recordingActivityRepo{}
	q := NewActivityFeedQuery(repo, nil)

	_, err := q.Query(context.Background(), ActivityFeedInput{Viewer: viewerOf(f.root), Verbs: []string{"role.created"}, Limit: 5})
	require.NoError(t, err)
	require.Equal(t, f.orgID, repo.last.OrgID)
	require.Equal(t, []string{"role.created"}, repo.last.Verbs)
	require.Equal(t, 5, repo.last.Limit)

	repo.last = types.ActivityFilter{}
	_, err = q.Query(context.Background(), ActivityFeedInput{Viewer: viewerOf(f.admin)})
	require.ErrorIs(t, err, types.ErrForbidden)
	require.Equal(t, uuid.Nil, repo.last.OrgID)
}

func TestImageQuery_HidesForeignImages(t *testing.T) {
	f := newOrgFixture(t)
	img := types.Image{ID: uuid.New(), UserID: f.report.ID, MimeType: "image/png", Data: []byte("png")}
	images := &memoryImages{byID: map[uuid.UUID]types.Image{img.ID: img}}
	q := NewImageQuery(WorklogQueryConfig{Images: images, Visibility: f.resolver})

	got, err := q.Query(context.Background(), RecordInput{Viewer: viewerOf(f.report), ID: img.ID})
	require.NoError(t, err)
	require.Equal(t, []byte("png"), got.Data)

	_, err = q.Query(context.Background(), RecordInput{Viewer: viewerOf(f.admin), ID: img.ID})
	require.NoError(t, err)

	_, err = q.Query(context.Background(), RecordInput{Viewer: viewerOf(f.peer), ID: img.ID})
	require.ErrorIs(t, err, types.ErrImageNotFound)

	_, err = q.Query(context.Background(), RecordInput{Viewer: viewerOf(f.peer), ID: uuid.New()})
	require.ErrorIs(t, err, types.ErrImageNotFound)
}

func ids(profiles []types.Profile) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p.ID)
	}
	return out
}

var errUnsupported = errors.New("unsupported in test")

type memoryProfiles struct {
	order []uuid.UUID
	byID  map[uuid.UUID]types.Profile
}

func (m *memoryProfiles) add(p types.Profile) *types.Profile {
	p.ID = uuid.New()
	m.byID[p.ID] = p
	m.order = append(m.order, p.ID)
	return &p
}

func (m *memoryProfiles) GetProfile(_ context.Context, id uuid.UUID) (*types.Profile, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, types.ErrProfileNotFound
	}
	return &p, nil
}

func (m *memoryProfiles) ListByOrganization(_ context.Context, orgID uuid.UUID) ([]types.Profile, error) {
	out := []types.Profile{}
	for _, id := range m.order {
		if p := m.byID[id]; p.OrganizationID == orgID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memoryProfiles) AssignRole(context.Context, uuid.UUID, uuid.UUID) (*types.Profile, error) {
	return nil, errUnsupported
}

func (m *memoryProfiles) SetAdmin(context.Context, uuid.UUID, bool) (*types.Profile, error) {
	return nil, errUnsupported
}

func (m *memoryProfiles) UpdateProfile(context.Context, types.ProfileMutation) (*types.Profile, error) {
	return nil, errUnsupported
}

func (m *memoryProfiles) UpsertProfile(context.Context, types.Profile) (*types.Profile, error) {
	return nil, errUnsupported
}

type memoryPurposes struct {
	byID map[uuid.UUID]types.Purpose
}

func (m *memoryPurposes) add(p types.Purpose) types.Purpose {
	p.ID = uuid.New()
	m.byID[p.ID] = p
	return p
}

func (m *memoryPurposes) CreatePurpose(context.Context, types.Purpose) (*types.Purpose, error) {
	return nil, errUnsupported
}

func (m *memoryPurposes) UpdatePurpose(context.Context, types.Purpose) (*types.Purpose, error) {
	return nil, errUnsupported
}

func (m *memoryPurposes) GetPurpose(_ context.Context, id uuid.UUID) (*types.Purpose, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, types.ErrPurposeNotFound
	}
	return &p, nil
}

func (m *memoryPurposes) ListPurposes(_ context.Context, userID uuid.UUID) ([]types.Purpose, error) {
	out := []types.Purpose{}
	for _, p := range m.byID {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memoryPurposes) DeletePurpose(context.Context, uuid.UUID) error {
	return errUnsupported
}

func (m *memoryPurposes) SetInsights(context.Context, uuid.UUID, string) error {
	return errUnsupported
}

type memoryImages struct {
	byID map[uuid.UUID]types.Image
}

func (m *memoryImages) SaveImage(context.Context, types.Image) (*types.Image, error) {
	return nil, errUnsupported
}

func (m *memoryImages) GetImages(_ context.Context, ids []uuid.UUID) ([]types.Image, error) {
	out := []types.Image{}
	for _, id := range ids {
		if img, ok := m.byID[id]; ok {
			out = append(out, img)
		}
	}
	return out, nil
}

func (m *memoryImages) ListByReport(context.Context, uuid.UUID) ([]types.Image, error) {
	return nil, errUnsupported
}

func (m *memoryImages) AttachToReport(context.Context, uuid.UUID, []uuid.UUID) error {
	return errUnsupported
}

func (m *memoryImages) DeleteImage(context.Context, uuid.UUID) error {
	return errUnsupported
}

type listingRegistry struct {
	roles     []types.Role
	lastScope types.ScopeFilter
}

func (r *listingRegistry) CreateRole(context.Context, types.RoleMutation) (*types.Role, error) {
	return nil, errUnsupported
}

func (r *listingRegistry) RenameRole(context.Context, uuid.UUID, types.RoleMutation) (*types.Role, error) {
	return nil, errUnsupported
}

func (r *listingRegistry) DeleteRole(context.Context, uuid.UUID, types.ScopeFilter, uuid.UUID) error {
	return errUnsupported
}

func (r *listingRegistry) GetRole(context.Context, uuid.UUID, types.ScopeFilter) (*types.Role, error) {
	return nil, errUnsupported
}

func (r *listingRegistry) ListRoles(_ context.Context, scope types.ScopeFilter) ([]types.Role, error) {
	r.lastScope = scope
	return r.roles, nil
}

func (r *listingRegistry) MoveRole(context.Context, uuid.UUID, types.Direction, types.ScopeFilter, uuid.UUID) (bool, error) {
	return false, errUnsupported
}

type recordingActivityRepo struct {
	last types.ActivityFilter
}

func (r *recordingActivityRepo) ListActivity(_ context.Context, filter types.ActivityFilter) ([]types.ActivityRecord, error) {
	r.last = filter
	return nil, nil
}
