package profile

import (
	"context"
	"errors"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// OrganizationRepository implements types.OrganizationRepository using Bun.
type OrganizationRepository struct {
	repo  repository.Repository[*OrganizationRecord]
	clock types.Clock
}

var _ types.OrganizationRepository = (*OrganizationRepository)(nil)

// NewOrganizationRepository constructs the organization store.
func NewOrganizationRepository(db *bun.DB, clock types.Clock) (*OrganizationRepository, error) {
	if db == nil {
		return nil, errors.New("profile: db required")
	}
	if clock == nil {
		clock = types.SystemClock{}
	}
	return &OrganizationRepository{
		repo: repository.NewRepository(db, repository.ModelHandlers[*OrganizationRecord]{
			NewRecord: func() *OrganizationRecord { return &OrganizationRecord{} },
			GetID: func(rec *OrganizationRecord) uuid.UUID {
				if rec == nil {
					return uuid.Nil
				}
				return rec.ID
			},
			SetID: func(rec *OrganizationRecord, id uuid.UUID) {
				if rec != nil {
					rec.ID = id
				}
			},
			GetIdentifier: func() string {
				return "name"
			},
		}),
		clock: clock,
	}, nil
}

// GetOrganization returns the organization or types.ErrOrganizationNotFound.
func (r *OrganizationRepository) GetOrganization(ctx context.Context, id uuid.UUID) (*types.Organization, error) {
	rec, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, types.ErrOrganizationNotFound
		}
		return nil, err
	}
	return orgToDomain(rec), nil
}

// UpsertOrganization creates the organization or renames an existing one.
func (r *OrganizationRepository) UpsertOrganization(ctx context.Context, org types.Organization) (*types.Organization, error) {
	name := strings.TrimSpace(org.Name)
	if name == "" {
		return nil, types.Invalid("name", "required")
	}
	now := r.clock.Now()
	if org.ID != uuid.Nil {
		existing, err := r.repo.GetByID(ctx, org.ID.String())
		switch {
		case err == nil:
			existing.Name = name
			existing.UpdatedAt = now
			updated, err := r.repo.Update(ctx, existing)
			if err != nil {
				return nil, err
			}
			return orgToDomain(updated), nil
		case !repository.IsRecordNotFound(err):
			return nil, err
		}
	} else {
		org.ID = uuid.New()
	}
	created, err := r.repo.Create(ctx, &OrganizationRecord{
		ID:        org.ID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}
	return orgToDomain(created), nil
}

func orgToDomain(rec *OrganizationRecord) *types.Organization {
	if rec == nil {
		return nil
	}
	return &types.Organization{
		ID:        rec.ID,
		Name:      rec.Name,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}
