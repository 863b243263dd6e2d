package reports

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// MaxImageSize bounds a single upload.
const MaxImageSize = 10 << 20

// ImageRepositoryConfig wires the Bun-backed image store.
type ImageRepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*ImageRecord]
	Clock      types.Clock
	IDGen      types.IDGenerator
}

type imageStore interface {
	repository.Repository[*ImageRecord]
}

// ImageRepository implements types.ImageRepository. Bytes live in the row.
type ImageRepository struct {
	imageStore
	db    *bun.DB
	clock types.Clock
	idGen types.IDGenerator
}

var (
	_ repository.Repository[*ImageRecord] = (*ImageRepository)(nil)
	_ types.ImageRepository               = (*ImageRepository)(nil)
)

// NewImageRepository constructs the image repository.
func NewImageRepository(cfg ImageRepositoryConfig) (*ImageRepository, error) {
	if cfg.DB == nil {
		return nil, errors.New("reports: image repository requires db")
	}
	repo := cfg.Repository
	if repo == nil {
		repo = repository.NewRepository(cfg.DB, repository.ModelHandlers[*ImageRecord]{
			NewRecord: func() *ImageRecord { return &ImageRecord{} },
			GetID: func(rec *ImageRecord) uuid.UUID {
				if rec == nil {
					return uuid.Nil
				}
				return rec.ID
			},
			SetID: func(rec *ImageRecord, id uuid.UUID) {
				if rec != nil {
					rec.ID = id
				}
			},
			GetIdentifier: func() string {
				return "file_name"
			},
		})
	}
	return &ImageRepository{
		imageStore: repo,
		db:         cfg.DB,
		clock:      clockOrDefault(cfg.Clock),
		idGen:      idGenOrDefault(cfg.IDGen),
	}, nil
}

// SaveImage stores an uploaded image. Only image/* payloads are accepted.
func (r *ImageRepository) SaveImage(ctx context.Context, image types.Image) (*types.Image, error) {
	if image.UserID == uuid.Nil {
		return nil, types.Invalid("user", "required")
	}
	if !IsImageMime(image.MimeType) {
		return nil, types.Invalid("mime_type", "must be an image type")
	}
	if len(image.Data) == 0 {
		return nil, types.Invalid("data", "required")
	}
	if len(image.Data) > MaxImageSize {
		return nil, types.Invalid("data", "exceeds the upload size limit")
	}
	rec := &ImageRecord{
		ID:        image.ID,
		UserID:    image.UserID,
		PurposeID: cloneID(image.PurposeID),
		ReportID:  cloneID(image.ReportID),
		FileName:  strings.TrimSpace(image.FileName),
		MimeType:  strings.ToLower(strings.TrimSpace(image.MimeType)),
		Size:      len(image.Data),
		Data:      image.Data,
		CreatedAt: r.clock.Now(),
	}
	if rec.ID == uuid.Nil {
		rec.ID = r.idGen.UUID()
	}
	created, err := r.Create(ctx, rec)
	if err != nil {
		return nil, err
	}
	return imageToDomain(created), nil
}

// GetImages loads the requested images in one query. Unknown ids are
// skipped; the result follows the order of ids.
func (r *ImageRepository) GetImages(ctx context.Context, ids []uuid.UUID) ([]types.Image, error) {
	if len(ids) == 0 {
		return []types.Image{}, nil
	}
	records, _, err := r.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("img.id IN (?)", bun.In(ids))
	})
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*ImageRecord, len(records))
	for _, rec := range records {
		byID[rec.ID] = rec
	}
	out := make([]types.Image, 0, len(records))
	for _, id := range ids {
		if rec, ok := byID[id]; ok {
			out = append(out, *imageToDomain(rec))
			delete(byID, id)
		}
	}
	return out, nil
}

// ListByReport returns the images attached to the report, oldest first.
func (r *ImageRepository) ListByReport(ctx context.Context, reportID uuid.UUID) ([]types.Image, error) {
	records, _, err := r.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("img.report_id = ?", reportID).OrderExpr("img.created_at ASC")
	})
	if err != nil {
		return nil, err
	}
	out := make([]types.Image, 0, len(records))
	for _, rec := range records {
		out = append(out, *imageToDomain(rec))
	}
	return out, nil
}

// AttachToReport links uploaded images to a report and its purpose.
func (r *ImageRepository) AttachToReport(ctx context.Context, reportID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		report := &ReportRecord{}
		err := tx.NewSelect().
			Model(report).
			Column("id", "purpose_id").
			Where("id = ?", reportID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return types.ErrReportNotFound
			}
			return err
		}
		_, err = tx.NewUpdate().
			Model((*ImageRecord)(nil)).
			Set("report_id = ?", report.ID).
			Set("purpose_id = ?", report.PurposeID).
			Where("id IN (?)", bun.In(ids)).
			Exec(ctx)
		return err
	})
}

// DeleteImage removes a single image.
func (r *ImageRepository) DeleteImage(ctx context.Context, id uuid.UUID) error {
	rec, err := r.Get(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("img.id = ?", id)
	})
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return types.ErrImageNotFound
		}
		return err
	}
	return r.Delete(ctx, rec)
}

func imageToDomain(rec *ImageRecord) *types.Image {
	if rec == nil {
		return nil
	}
	return &types.Image{
		ID:        rec.ID,
		UserID:    rec.UserID,
		PurposeID: cloneID(rec.PurposeID),
		ReportID:  cloneID(rec.ReportID),
		FileName:  rec.FileName,
		MimeType:  rec.MimeType,
		Size:      rec.Size,
		Data:      rec.Data,
		CreatedAt: rec.CreatedAt,
	}
}
