package reports

import (
	"context"
	"errors"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ReportRepositoryConfig wires the Bun-backed report store.
type ReportRepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*ReportRecord]
	Clock      types.Clock
	IDGen      types.IDGenerator
}

type reportStore interface {
	repository.Repository[*ReportRecord]
}

// ReportRepository implements types.ReportRepository.
type ReportRepository struct {
	reportStore
	db    *bun.DB
	clock types.Clock
	idGen types.IDGenerator
}

var (
	_ repository.Repository[*ReportRecord] = (*ReportRepository)(nil)
	_ types.ReportRepository               = (*ReportRepository)(nil)
)

// NewReportRepository constructs the report repository.
func NewReportRepository(cfg ReportRepositoryConfig) (*ReportRepository, error) {
	if cfg.DB == nil {
		return nil, errors.New("reports: report repository requires db")
	}
	repo := cfg.Repository
	if repo == nil {
		repo = repository.NewRepository(cfg.DB, repository.ModelHandlers[*ReportRecord]{
			NewRecord: func() *ReportRecord { return &ReportRecord{} },
			GetID: func(rec *ReportRecord) uuid.UUID {
				if rec == nil {
					return uuid.Nil
				}
				return rec.ID
			},
			SetID: func(rec *ReportRecord, id uuid.UUID) {
				if rec != nil {
					rec.ID = id
				}
			},
			GetIdentifier: func() string {
				return "title"
			},
		})
	}
	return &ReportRepository{
		reportStore: repo,
		db:          cfg.DB,
		clock:       clockOrDefault(cfg.Clock),
		idGen:       idGenOrDefault(cfg.IDGen),
	}, nil
}

// CreateReport stores a new report. A zero ReportDate becomes today.
func (r *ReportRepository) CreateReport(ctx context.Context, report types.Report) (*types.Report, error) {
	if err := validateReport(report); err != nil {
		return nil, err
	}
	now := r.clock.Now()
	rec := &ReportRecord{
		ID:         report.ID,
		UserID:     report.UserID,
		PurposeID:  report.PurposeID,
		FormatID:   cloneID(report.FormatID),
		Title:      strings.TrimSpace(report.Title),
		Content:    report.Content,
		ReportDate: reportDate(report.ReportDate, now),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if rec.ID == uuid.Nil {
		rec.ID = r.idGen.UUID()
	}
	if _, err := r.Create(ctx, rec); err != nil {
		return nil, err
	}
	return r.GetReport(ctx, rec.ID)
}

// UpdateReport replaces the editable fields of a report.
func (r *ReportRepository) UpdateReport(ctx context.Context, report types.Report) (*types.Report, error) {
	if err := validateReport(report); err != nil {
		return nil, err
	}
	rec, err := r.getRecord(ctx, report.ID, false)
	if err != nil {
		return nil, err
	}
	now := r.clock.Now()
	rec.PurposeID = report.PurposeID
	rec.FormatID = cloneID(report.FormatID)
	rec.Title = strings.TrimSpace(report.Title)
	rec.Content = report.Content
	rec.ReportDate = reportDate(report.ReportDate, now)
	rec.UpdatedAt = now
	if _, err := r.Update(ctx, rec); err != nil {
		return nil, err
	}
	return r.GetReport(ctx, rec.ID)
}

// GetReport returns the report with its attached images.
func (r *ReportRepository) GetReport(ctx context.Context, id uuid.UUID) (*types.Report, error) {
	rec, err := r.getRecord(ctx, id, true)
	if err != nil {
		return nil, err
	}
	return reportToDomain(rec), nil
}

// ListReports returns reports by report date, newest first. Filter.Limit
// falls back to DefaultListLimit.
func (r *ReportRepository) ListReports(ctx context.Context, filter types.ReportFilter) ([]types.Report, error) {
	if filter.UserID == uuid.Nil && filter.PurposeID == uuid.Nil {
		return nil, types.Invalid("filter", "user or purpose required")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	records, _, err := r.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		if filter.UserID != uuid.Nil {
			q = q.Where("r.user_id = ?", filter.UserID)
		}
		if filter.PurposeID != uuid.Nil {
			q = q.Where("r.purpose_id = ?", filter.PurposeID)
		}
		return q.OrderExpr("r.report_date DESC").
			OrderExpr("r.created_at DESC").
			Limit(limit)
	})
	if err != nil {
		return nil, err
	}
	out := make([]types.Report, 0, len(records))
	for _, rec := range records {
		out = append(out, *reportToDomain(rec))
	}
	return out, nil
}

// DeleteReport removes the report's images and then the report.
func (r *ReportRepository) DeleteReport(ctx context.Context, id uuid.UUID) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*ImageRecord)(nil)).
			Where("report_id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}
		res, err := tx.NewDelete().
			Model((*ReportRecord)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return types.ErrReportNotFound
		}
		return nil
	})
}

func (r *ReportRepository) getRecord(ctx context.Context, id uuid.UUID, withImages bool) (*ReportRecord, error) {
	if id == uuid.Nil {
		return nil, types.ErrReportNotFound
	}
	rec, err := r.Get(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		if withImages {
			q = q.Relation("Images", func(q *bun.SelectQuery) *bun.SelectQuery {
				return q.OrderExpr("img.created_at ASC")
			})
		}
		return q.Where("r.id = ?", id)
	})
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, types.ErrReportNotFound
		}
		return nil, err
	}
	return rec, nil
}

func validateReport(report types.Report) error {
	if report.UserID == uuid.Nil {
		return types.Invalid("user", "required")
	}
	if report.PurposeID == uuid.Nil {
		return types.Invalid("purpose", "required")
	}
	return nil
}

func reportDate(date, now time.Time) time.Time {
	if date.IsZero() {
		date = now
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func reportToDomain(rec *ReportRecord) *types.Report {
	if rec == nil {
		return nil
	}
	out := &types.Report{
		ID:         rec.ID,
		UserID:     rec.UserID,
		PurposeID:  rec.PurposeID,
		FormatID:   cloneID(rec.FormatID),
		Title:      rec.Title,
		Content:    rec.Content,
		ReportDate: rec.ReportDate,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}
	if len(rec.Images) > 0 {
		out.Images = make([]types.Image, 0, len(rec.Images))
		for _, img := range rec.Images {
			out.Images = append(out.Images, *imageToDomain(img))
		}
	}
	return out
}
