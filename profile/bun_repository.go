package profile

import (
	"context"
	"errors"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/goliatone/go-worklog/registry"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryConfig wires the Bun-backed profile repository.
type RepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*Record]
	Clock      types.Clock
}

type profileStore interface {
	repository.Repository[*Record]
}

// Repository implements types.ProfileRepository using Bun.
type Repository struct {
	profileStore
	clock types.Clock
}

// NewRepository constructs the default profile repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if cfg.Repository == nil && cfg.DB == nil {
		return nil, errors.New("profile: db or repository required")
	}
	repo := cfg.Repository
	if repo == nil {
		repo = repository.NewRepository(cfg.DB, repository.ModelHandlers[*Record]{
			NewRecord: func() *Record { return &Record{} },
			GetID: func(rec *Record) uuid.UUID {
				if rec == nil {
					return uuid.Nil
				}
				return rec.ID
			},
			SetID: func(rec *Record, id uuid.UUID) {
				if rec != nil {
					rec.ID = id
				}
			},
			GetIdentifier: func() string {
				return "email"
			},
		})
	}

	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}

	return &Repository{
		profileStore: repo,
		clock:        clock,
	}, nil
}

var (
	_ repository.Repository[*Record] = (*Repository)(nil)
	_ types.ProfileRepository        = (*Repository)(nil)
)

// GetProfile returns the profile with its role embedded.
func (r *Repository) GetProfile(ctx context.Context, id uuid.UUID) (*types.Profile, error) {
	rec, err := r.getRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDomain(rec), nil
}

// ListByOrganization loads every profile of the organization in one query,
// ordered by creation time.
func (r *Repository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]types.Profile, error) {
	records, _, err := r.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Relation("Role").
			Where("p.organization_id = ?", orgID).
			OrderExpr("p.created_at ASC").
			OrderExpr("p.id ASC")
	})
	if err != nil {
		return nil, err
	}
	out := make([]types.Profile, 0, len(records))
	for _, rec := range records {
		out = append(out, *toDomain(rec))
	}
	return out, nil
}

// AssignRole points the profile at roleID and returns the reloaded profile.
func (r *Repository) AssignRole(ctx context.Context, userID, roleID uuid.UUID) (*types.Profile, error) {
	return r.mutate(ctx, userID, func(rec *Record) {
		id := roleID
		rec.RoleID = &id
	})
}

// SetAdmin flips the admin flag.
func (r *Repository) SetAdmin(ctx context.Context, userID uuid.UUID, isAdmin bool) (*types.Profile, error) {
	return r.mutate(ctx, userID, func(rec *Record) {
		rec.IsAdmin = isAdmin
	})
}

// UpdateProfile applies self-service edits.
func (r *Repository) UpdateProfile(ctx context.Context, input types.ProfileMutation) (*types.Profile, error) {
	return r.mutate(ctx, input.UserID, func(rec *Record) {
		if input.Name != nil {
			rec.Name = strings.TrimSpace(*input.Name)
		}
		if input.Personal != nil {
			rec.Personal = *input.Personal
		}
	})
}

// UpsertProfile inserts or updates the profile based on whether it already exists.
func (r *Repository) UpsertProfile(ctx context.Context, profile types.Profile) (*types.Profile, error) {
	if profile.ID == uuid.Nil {
		return nil, types.Invalid("id", "required")
	}
	if profile.OrganizationID == uuid.Nil {
		return nil, types.Invalid("organization", "required")
	}
	now := r.clock.Now()
	rec := fromDomain(profile)
	rec.UpdatedAt = now

	existing, err := r.Get(ctx, selectID(profile.ID))
	switch {
	case err == nil:
		rec.CreatedAt = existing.CreatedAt
		if _, err := r.Update(ctx, rec); err != nil {
			return nil, err
		}
	case repository.IsRecordNotFound(err):
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		if _, err := r.Create(ctx, rec); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	return r.GetProfile(ctx, profile.ID)
}

func (r *Repository) mutate(ctx context.Context, userID uuid.UUID, apply func(*Record)) (*types.Profile, error) {
	rec, err := r.getRecord(ctx, userID)
	if err != nil {
		return nil, err
	}
	apply(rec)
	rec.Role = nil
	rec.UpdatedAt = r.clock.Now()
	if _, err := r.Update(ctx, rec); err != nil {
		return nil, err
	}
	return r.GetProfile(ctx, userID)
}

func (r *Repository) getRecord(ctx context.Context, id uuid.UUID) (*Record, error) {
	if id == uuid.Nil {
		return nil, types.ErrProfileNotFound
	}
	rec, err := r.Get(ctx, withRole(), selectID(id))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, types.ErrProfileNotFound
		}
		return nil, err
	}
	return rec, nil
}

func withRole() repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Relation("Role")
	}
}

func selectID(id uuid.UUID) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("p.id = ?", id)
	}
}

func fromDomain(p types.Profile) *Record {
	return &Record{
		ID:             p.ID,
		Email:          strings.TrimSpace(p.Email),
		Name:           strings.TrimSpace(p.Name),
		IsAdmin:        p.IsAdmin,
		IsSuperuser:    p.IsSuperuser,
		OrganizationID: p.OrganizationID,
		ParentID:       p.ParentID,
		RoleID:         p.RoleID,
		Personal:       p.Personal,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func toDomain(rec *Record) *types.Profile {
	if rec == nil {
		return nil
	}
	out := &types.Profile{
		ID:             rec.ID,
		Email:          rec.Email,
		Name:           rec.Name,
		IsAdmin:        rec.IsAdmin,
		IsSuperuser:    rec.IsSuperuser,
		OrganizationID: rec.OrganizationID,
		ParentID:       rec.ParentID,
		RoleID:         rec.RoleID,
		Personal:       rec.Personal,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}
	if rec.Role != nil && rec.Role.ID != uuid.Nil {
		out.Role = roleToDomain(rec.Role)
	}
	return out
}

func roleToDomain(rec *registry.RoleRecord) *types.Role {
	return &types.Role{
		ID:             rec.ID,
		OrganizationID: rec.OrganizationID,
		Name:           rec.Name,
		Level:          rec.Level,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}
}
