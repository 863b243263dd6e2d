package command

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/google/uuid"
)

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }

type fakeRegistry struct {
	roles      map[uuid.UUID]*types.Role
	inUse      map[uuid.UUID]bool
	created    int
	deleted    []uuid.UUID
	moveResult bool
	moves      []types.Direction
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		roles: map[uuid.UUID]*types.Role{},
		inUse: map[uuid.UUID]bool{},
	}
}

func (f *fakeRegistry) add(orgID uuid.UUID, name string, level int) *types.Role {
	role := &types.Role{ID: uuid.New(), OrganizationID: orgID, Name: name, Level: level}
	f.roles[role.ID] = role
	return role
}

func (f *fakeRegistry) CreateRole(_ context.Context, input types.RoleMutation) (*types.Role, error) {
	f.created++
	level := 0
	found := false
	for _, role := range f.roles {
		if role.OrganizationID != input.Scope.OrgID {
			continue
		}
		if !found || role.Level >= level {
			level = role.Level + 1
			found = true
		}
	}
	role := &types.Role{ID: uuid.New(), OrganizationID: input.Scope.OrgID, Name: input.Name, Level: level}
	f.roles[role.ID] = role
	copy := *role
	return &copy, nil
}

func (f *fakeRegistry) RenameRole(ctx context.Context, id uuid.UUID, input types.RoleMutation) (*types.Role, error) {
	role, err := f.GetRole(ctx, id, input.Scope)
	if err != nil {
		return nil, err
	}
	f.roles[id].Name = input.Name
	role.Name = input.Name
	return role, nil
}

func (f *fakeRegistry) DeleteRole(ctx context.Context, id uuid.UUID, scope types.ScopeFilter, _ uuid.UUID) error {
	if _, err := f.GetRole(ctx, id, scope); err != nil {
		return err
	}
	if f.inUse[id] {
		return types.ErrRoleInUse
	}
	delete(f.roles, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRegistry) GetRole(_ context.Context, id uuid.UUID, scope types.ScopeFilter) (*types.Role, error) {
	role, ok := f.roles[id]
	if !ok || role.OrganizationID != scope.OrgID {
		return nil, types.ErrRoleNotFound
	}
	copy := *role
	return &copy, nil
}

func (f *fakeRegistry) ListRoles(_ context.Context, scope types.ScopeFilter) ([]types.Role, error) {
	out := make([]types.Role, 0, len(f.roles))
	for _, role := range f.roles {
		if role.OrganizationID == scope.OrgID {
			out = append(out, *role)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level > out[j].Level })
	return out, nil
}

func (f *fakeRegistry) MoveRole(ctx context.Context, id uuid.UUID, dir types.Direction, scope types.ScopeFilter, _ uuid.UUID) (bool, error) {
	if _, err := f.GetRole(ctx, id, scope); err != nil {
		return false, err
	}
	f.moves = append(f.moves, dir)
	return f.moveResult, nil
}

type fakeProfiles struct {
	profiles map[uuid.UUID]*types.Profile
	writes   int
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{profiles: map[uuid.UUID]*types.Profile{}}
}

func (f *fakeProfiles) add(p types.Profile) *types.Profile {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	copy := p
	f.profiles[p.ID] = &copy
	return &copy
}

func (f *fakeProfiles) GetProfile(_ context.Context, id uuid.UUID) (*types.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, types.ErrProfileNotFound
	}
	copy := *p
	return &copy, nil
}

func (f *fakeProfiles) ListByOrganization(_ context.Context, orgID uuid.UUID) ([]types.Profile, error) {
	out := []types.Profile{}
	for _, p := range f.profiles {
		if p.OrganizationID == orgID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProfiles) mutate(id uuid.UUID, apply func(*types.Profile)) (*types.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, types.ErrProfileNotFound
	}
	f.writes++
	apply(p)
	copy := *p
	return &copy, nil
}

func (f *fakeProfiles) AssignRole(_ context.Context, userID, roleID uuid.UUID) (*types.Profile, error) {
	return f.mutate(userID, func(p *types.Profile) {
		id := roleID
		p.RoleID = &id
	})
}

func (f *fakeProfiles) SetAdmin(_ context.Context, userID uuid.UUID, isAdmin bool) (*types.Profile, error) {
	return f.mutate(userID, func(p *types.Profile) { p.IsAdmin = isAdmin })
}

func (f *fakeProfiles) UpdateProfile(_ context.Context, input types.ProfileMutation) (*types.Profile, error) {
	return f.mutate(input.UserID, func(p *types.Profile) {
		if input.Name != nil {
			p.Name = strings.TrimSpace(*input.Name)
		}
		if input.Personal != nil {
			p.Personal = *input.Personal
		}
	})
}

func (f *fakeProfiles) UpsertProfile(_ context.Context, p types.Profile) (*types.Profile, error) {
	f.writes++
	return f.add(p), nil
}

type recordingActivitySink struct {
	mu      sync.Mutex
	records []types.ActivityRecord
	err     error
}

func (s *recordingActivitySink) Log(_ context.Context, record types.ActivityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return s.err
}

func (s *recordingActivitySink) verbs() []string {
	out := make([]string, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec.Verb)
	}
	return out
}

type stubFeatureGate struct {
	enabled bool
	err     error
	keys    []string
}

func (s *stubFeatureGate) Enabled(_ context.Context, key string, _ ...featuregate.ResolveOption) (bool, error) {
	s.keys = append(s.keys, key)
	if s.err != nil {
		return false, s.err
	}
	return s.enabled, nil
}

type stubGenerator struct {
	text     string
	err      error
	requests []types.GenerationRequest
}

func (s *stubGenerator) Generate(_ context.Context, req types.GenerationRequest) (string, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

// memoryWorklog keeps purposes, formats, reports and images in maps.
type memoryWorklog struct {
	purposes map[uuid.UUID]*types.Purpose
	formats  map[uuid.UUID]*types.ReportFormat
	reports  map[uuid.UUID]*types.Report
	images   map[uuid.UUID]*types.Image
	attached map[uuid.UUID][]uuid.UUID
	deleted  []uuid.UUID
}

func newMemoryWorklog() *memoryWorklog {
	return &memoryWorklog{
		purposes: map[uuid.UUID]*types.Purpose{},
		formats:  map[uuid.UUID]*types.ReportFormat{},
		reports:  map[uuid.UUID]*types.Report{},
		images:   map[uuid.UUID]*types.Image{},
		attached: map[uuid.UUID][]uuid.UUID{},
	}
}

func (m *memoryWorklog) purposeRepo() *memoryPurposes { return &memoryPurposes{m} }
func (m *memoryWorklog) formatRepo() *memoryFormats   { return &memoryFormats{m} }
func (m *memoryWorklog) reportRepo() *memoryReports   { return &memoryReports{m} }
func (m *memoryWorklog) imageRepo() *memoryImages     { return &memoryImages{m} }

func (m *memoryWorklog) config() WorklogCommandConfig {
	return WorklogCommandConfig{
		Purposes: m.purposeRepo(),
		Formats:  m.formatRepo(),
		Reports:  m.reportRepo(),
		Images:   m.imageRepo(),
	}
}

type memoryPurposes struct{ m *memoryWorklog }

func (r *memoryPurposes) CreatePurpose(_ context.Context, p types.Purpose) (*types.Purpose, error) {
	p.ID = uuid.New()
	copy := p
	r.m.purposes[p.ID] = &copy
	return &p, nil
}

func (r *memoryPurposes) UpdatePurpose(_ context.Context, p types.Purpose) (*types.Purpose, error) {
	existing, ok := r.m.purposes[p.ID]
	if !ok {
		return nil, types.ErrPurposeNotFound
	}
	p.Insights = existing.Insights
	copy := p
	r.m.purposes[p.ID] = &copy
	return &p, nil
}

func (r *memoryPurposes) GetPurpose(_ context.Context, id uuid.UUID) (*types.Purpose, error) {
	p, ok := r.m.purposes[id]
	if !ok {
		return nil, types.ErrPurposeNotFound
	}
	copy := *p
	return &copy, nil
}

func (r *memoryPurposes) ListPurposes(_ context.Context, userID uuid.UUID) ([]types.Purpose, error) {
	out := []types.Purpose{}
	for _, p := range r.m.purposes {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memoryPurposes) DeletePurpose(_ context.Context, id uuid.UUID) error {
	if _, ok := r.m.purposes[id]; !ok {
		return types.ErrPurposeNotFound
	}
	delete(r.m.purposes, id)
	r.m.deleted = append(r.m.deleted, id)
	return nil
}

func (r *memoryPurposes) SetInsights(_ context.Context, id uuid.UUID, insights string) error {
	p, ok := r.m.purposes[id]
	if !ok {
		return types.ErrPurposeNotFound
	}
	p.Insights = insights
	return nil
}

type memoryFormats struct{ m *memoryWorklog }

func (r *memoryFormats) CreateFormat(_ context.Context, f types.ReportFormat) (*types.ReportFormat, error) {
	f.ID = uuid.New()
	copy := f
	r.m.formats[f.ID] = &copy
	return &f, nil
}

func (r *memoryFormats) UpdateFormat(_ context.Context, f types.ReportFormat) (*types.ReportFormat, error) {
	if _, ok := r.m.formats[f.ID]; !ok {
		return nil, types.ErrFormatNotFound
	}
	copy := f
	r.m.formats[f.ID] = &copy
	return &f, nil
}

func (r *memoryFormats) GetFormat(_ context.Context, id uuid.UUID) (*types.ReportFormat, error) {
	f, ok := r.m.formats[id]
	if !ok {
		return nil, types.ErrFormatNotFound
	}
	copy := *f
	return &copy, nil
}

func (r *memoryFormats) ListFormats(_ context.Context, userID uuid.UUID) ([]types.ReportFormat, error) {
	out := []types.ReportFormat{}
	for _, f := range r.m.formats {
		if f.UserID == userID {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *memoryFormats) DeleteFormat(_ context.Context, id uuid.UUID) error {
	if _, ok := r.m.formats[id]; !ok {
		return types.ErrFormatNotFound
	}
	delete(r.m.formats, id)
	r.m.deleted = append(r.m.deleted, id)
	return nil
}

type memoryReports struct{ m *memoryWorklog }

func (r *memoryReports) CreateReport(_ context.Context, rep types.Report) (*types.Report, error) {
	rep.ID = uuid.New()
	copy := rep
	r.m.reports[rep.ID] = &copy
	return &rep, nil
}

func (r *memoryReports) UpdateReport(_ context.Context, rep types.Report) (*types.Report, error) {
	if _, ok := r.m.reports[rep.ID]; !ok {
		return nil, types.ErrReportNotFound
	}
	copy := rep
	r.m.reports[rep.ID] = &copy
	return &rep, nil
}

func (r *memoryReports) GetReport(_ context.Context, id uuid.UUID) (*types.Report, error) {
	rep, ok := r.m.reports[id]
	if !ok {
		return nil, types.ErrReportNotFound
	}
	copy := *rep
	for _, imgID := range r.m.attached[id] {
		copy.Images = append(copy.Images, *r.m.images[imgID])
	}
	return &copy, nil
}

func (r *memoryReports) ListReports(_ context.Context, filter types.ReportFilter) ([]types.Report, error) {
	out := []types.Report{}
	for _, rep := range r.m.reports {
		if filter.PurposeID != uuid.Nil && rep.PurposeID != filter.PurposeID {
			continue
		}
		if filter.UserID != uuid.Nil && rep.UserID != filter.UserID {
			continue
		}
		out = append(out, *rep)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReportDate.After(out[j].ReportDate) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *memoryReports) DeleteReport(_ context.Context, id uuid.UUID) error {
	if _, ok := r.m.reports[id]; !ok {
		return types.ErrReportNotFound
	}
	delete(r.m.reports, id)
	r.m.deleted = append(r.m.deleted, id)
	return nil
}

type memoryImages struct{ m *memoryWorklog }

func (r *memoryImages) SaveImage(_ context.Context, img types.Image) (*types.Image, error) {
	img.ID = uuid.New()
	img.Size = len(img.Data)
	copy := img
	r.m.images[img.ID] = &copy
	return &img, nil
}

func (r *memoryImages) GetImages(_ context.Context, ids []uuid.UUID) ([]types.Image, error) {
	out := []types.Image{}
	for _, id := range ids {
		if img, ok := r.m.images[id]; ok {
			out = append(out, *img)
		}
	}
	return out, nil
}

func (r *memoryImages) ListByReport(_ context.Context, reportID uuid.UUID) ([]types.Image, error) {
	return r.GetImages(context.Background(), r.m.attached[reportID])
}

func (r *memoryImages) AttachToReport(_ context.Context, reportID uuid.UUID, ids []uuid.UUID) error {
	if _, ok := r.m.reports[reportID]; !ok {
		return types.ErrReportNotFound
	}
	r.m.attached[reportID] = append(r.m.attached[reportID], ids...)
	return nil
}

func (r *memoryImages) DeleteImage(_ context.Context, id uuid.UUID) error {
	if _, ok := r.m.images[id]; !ok {
		return types.ErrImageNotFound
	}
	delete(r.m.images, id)
	r.m.deleted = append(r.m.deleted, id)
	return nil
}
