package reports

import (
	"context"
	"errors"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PurposeRepositoryConfig wires the Bun-backed purpose store. DB is required
// because deletes run in a transaction.
type PurposeRepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*PurposeRecord]
	Clock      types.Clock
	IDGen      types.IDGenerator
}

type purposeStore interface {
	repository.Repository[*PurposeRecord]
}

// PurposeRepository implements types.PurposeRepository.
type PurposeRepository struct {
	purposeStore
	db    *bun.DB
	clock types.Clock
	idGen types.IDGenerator
}

var (
	_ repository.Repository[*PurposeRecord] = (*PurposeRepository)(nil)
	_ types.PurposeRepository               = (*PurposeRepository)(nil)
)

// NewPurposeRepository constructs the purpose repository.
func NewPurposeRepository(cfg PurposeRepositoryConfig) (*PurposeRepository, error) {
	if cfg.DB == nil {
		return nil, errors.New("reports: purpose repository requires db")
	}
	repo := cfg.Repository
	if repo == nil {
		repo = repository.NewRepository(cfg.DB, repository.ModelHandlers[*PurposeRecord]{
			NewRecord: func() *PurposeRecord { return &PurposeRecord{} },
			GetID: func(rec *PurposeRecord) uuid.UUID {
				if rec == nil {
					return uuid.Nil
				}
				return rec.ID
			},
			SetID: func(rec *PurposeRecord, id uuid.UUID) {
				if rec != nil {
					rec.ID = id
				}
			},
			GetIdentifier: func() string {
				return "name"
			},
		})
	}
	return &PurposeRepository{
		purposeStore: repo,
		db:           cfg.DB,
		clock:        clockOrDefault(cfg.Clock),
		idGen:        idGenOrDefault(cfg.IDGen),
	}, nil
}

// CreatePurpose stores a new folder.
func (r *PurposeRepository) CreatePurpose(ctx context.Context, purpose types.Purpose) (*types.Purpose, error) {
	if err := validatePurpose(purpose); err != nil {
		return nil, err
	}
	now := r.clock.Now()
	rec := &PurposeRecord{
		ID:          purpose.ID,
		UserID:      purpose.UserID,
		Name:        strings.TrimSpace(purpose.Name),
		Description: strings.TrimSpace(purpose.Description),
		FormatID:    cloneID(purpose.FormatID),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if rec.ID == uuid.Nil {
		rec.ID = r.idGen.UUID()
	}
	if _, err := r.Create(ctx, rec); err != nil {
		return nil, err
	}
	return r.GetPurpose(ctx, rec.ID)
}

// UpdatePurpose replaces name, description and default format.
func (r *PurposeRepository) UpdatePurpose(ctx context.Context, purpose types.Purpose) (*types.Purpose, error) {
	if err := validatePurpose(purpose); err != nil {
		return nil, err
	}
	rec, err := r.getRecord(ctx, purpose.ID)
	if err != nil {
		return nil, err
	}
	rec.Name = strings.TrimSpace(purpose.Name)
	rec.Description = strings.TrimSpace(purpose.Description)
	rec.FormatID = cloneID(purpose.FormatID)
	rec.UpdatedAt = r.clock.Now()
	if _, err := r.Update(ctx, rec); err != nil {
		return nil, err
	}
	return r.GetPurpose(ctx, rec.ID)
}

// GetPurpose returns the folder with its default format and its reports,
// newest report date first.
func (r *PurposeRepository) GetPurpose(ctx context.Context, id uuid.UUID) (*types.Purpose, error) {
	if id == uuid.Nil {
		return nil, types.ErrPurposeNotFound
	}
	rec, err := r.Get(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Relation("Format").
			Relation("Reports", func(q *bun.SelectQuery) *bun.SelectQuery {
				return q.OrderExpr("r.report_date DESC").OrderExpr("r.created_at DESC")
			}).
			Where("pu.id = ?", id)
	})
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, types.ErrPurposeNotFound
		}
		return nil, err
	}
	return purposeToDomain(rec), nil
}

// ListPurposes returns the user's folders, newest first.
func (r *PurposeRepository) ListPurposes(ctx context.Context, userID uuid.UUID) ([]types.Purpose, error) {
	records, _, err := r.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Relation("Format").
			Where("pu.user_id = ?", userID).
			OrderExpr("pu.created_at DESC")
	})
	if err != nil {
		return nil, err
	}
	out := make([]types.Purpose, 0, len(records))
	for _, rec := range records {
		out = append(out, *purposeToDomain(rec))
	}
	return out, nil
}

// DeletePurpose removes the folder's images and then the folder itself in one
// transaction. Reports go with the folder.
func (r *PurposeRepository) DeletePurpose(ctx context.Context, id uuid.UUID) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*PurposeRecord)(nil)).
			Where("id = ?", id).
			Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return types.ErrPurposeNotFound
		}
		_, err = tx.NewDelete().
			Model((*ImageRecord)(nil)).
			Where("purpose_id = ?", id).
			WhereOr("report_id IN (?)", tx.NewSelect().
				Model((*ReportRecord)(nil)).
				Column("id").
				Where("purpose_id = ?", id)).
			Exec(ctx)
		if err != nil {
			return err
		}
		_, err = tx.NewDelete().
			Model((*ReportRecord)(nil)).
			Where("purpose_id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}
		_, err = tx.NewDelete().
			Model((*PurposeRecord)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		return err
	})
}

// SetInsights stores the latest generated insight text.
func (r *PurposeRepository) SetInsights(ctx context.Context, id uuid.UUID, insights string) error {
	rec, err := r.getRecord(ctx, id)
	if err != nil {
		return err
	}
	rec.Insights = insights
	rec.UpdatedAt = r.clock.Now()
	_, err = r.Update(ctx, rec)
	return err
}

func (r *PurposeRepository) getRecord(ctx context.Context, id uuid.UUID) (*PurposeRecord, error) {
	if id == uuid.Nil {
		return nil, types.ErrPurposeNotFound
	}
	rec, err := r.Get(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("pu.id = ?", id)
	})
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, types.ErrPurposeNotFound
		}
		return nil, err
	}
	return rec, nil
}

func validatePurpose(purpose types.Purpose) error {
	if purpose.UserID == uuid.Nil {
		return types.Invalid("user", "required")
	}
	if strings.TrimSpace(purpose.Name) == "" {
		return types.Invalid("name", "required")
	}
	return nil
}

func purposeToDomain(rec *PurposeRecord) *types.Purpose {
	if rec == nil {
		return nil
	}
	out := &types.Purpose{
		ID:          rec.ID,
		UserID:      rec.UserID,
		Name:        rec.Name,
		Description: rec.Description,
		FormatID:    cloneID(rec.FormatID),
		Insights:    rec.Insights,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
	if rec.Format != nil && rec.Format.ID != uuid.Nil {
		out.Format = formatToDomain(rec.Format)
	}
	if len(rec.Reports) > 0 {
		out.Reports = make([]types.Report, 0, len(rec.Reports))
		for _, report := range rec.Reports {
			out.Reports = append(out.Reports, *reportToDomain(report))
		}
	}
	return out
}
