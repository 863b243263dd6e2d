package reports

import (
	"context"
	"errors"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// FormatRepositoryConfig wires the Bun-backed format store.
type FormatRepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*FormatRecord]
	Clock      types.Clock
	IDGen      types.IDGenerator
}

type formatStore interface {
	repository.Repository[*FormatRecord]
}

// FormatRepository implements types.FormatRepository. Reads go through the
// go-repository-cache decorator when WithCache(true) is supplied.
type FormatRepository struct {
	formatStore
	clock types.Clock
	idGen types.IDGenerator
}

var (
	_ repository.Repository[*FormatRecord] = (*FormatRepository)(nil)
	_ types.FormatRepository               = (*FormatRepository)(nil)
)

// NewFormatRepository constructs the format repository.
func NewFormatRepository(cfg FormatRepositoryConfig, opts ...RepositoryOption) (*FormatRepository, error) {
	if cfg.Repository == nil && cfg.DB == nil {
		return nil, errors.New("reports: db or repository required")
	}
	repo := cfg.Repository
	if repo == nil {
		repo = NewFormatRecordRepository(cfg.DB)
	}
	options := applyRepositoryOptions(opts)
	if options.CacheEnabled {
		cached, err := cacheFormats(repo, options.CacheConfig)
		if err != nil {
			return nil, err
		}
		repo = cached
	}
	return &FormatRepository{
		formatStore: repo,
		clock:       clockOrDefault(cfg.Clock),
		idGen:       idGenOrDefault(cfg.IDGen),
	}, nil
}

// NewFormatRecordRepository builds the uncached go-repository-bun store.
func NewFormatRecordRepository(db *bun.DB) repository.Repository[*FormatRecord] {
	return repository.NewRepository(db, repository.ModelHandlers[*FormatRecord]{
		NewRecord: func() *FormatRecord { return &FormatRecord{} },
		GetID: func(rec *FormatRecord) uuid.UUID {
			if rec == nil {
				return uuid.Nil
			}
			return rec.ID
		},
		SetID: func(rec *FormatRecord, id uuid.UUID) {
			if rec != nil {
				rec.ID = id
			}
		},
		GetIdentifier: func() string {
			return "name"
		},
	})
}

func cacheFormats(base repository.Repository[*FormatRecord], cfg *cache.Config) (repository.Repository[*FormatRecord], error) {
	if cached, ok := base.(*repositorycache.CachedRepository[*FormatRecord]); ok {
		return cached, nil
	}
	config := cache.DefaultConfig()
	if cfg != nil {
		config = *cfg
	}
	service, err := cache.NewCacheService(config)
	if err != nil {
		return nil, err
	}
	return repositorycache.New(base, service, cache.NewDefaultKeySerializer()), nil
}

// CreateFormat stores a new template.
func (r *FormatRepository) CreateFormat(ctx context.Context, format types.ReportFormat) (*types.ReportFormat, error) {
	if err := validateFormat(format); err != nil {
		return nil, err
	}
	now := r.clock.Now()
	rec := &FormatRecord{
		ID:        format.ID,
		UserID:    format.UserID,
		Name:      strings.TrimSpace(format.Name),
		Content:   format.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if rec.ID == uuid.Nil {
		rec.ID = r.idGen.UUID()
	}
	created, err := r.Create(ctx, rec)
	if err != nil {
		return nil, err
	}
	return formatToDomain(created), nil
}

// UpdateFormat replaces the name and content of an existing template.
func (r *FormatRepository) UpdateFormat(ctx context.Context, format types.ReportFormat) (*types.ReportFormat, error) {
	if err := validateFormat(format); err != nil {
		return nil, err
	}
	rec, err := r.getRecord(ctx, format.ID)
	if err != nil {
		return nil, err
	}
	rec.Name = strings.TrimSpace(format.Name)
	rec.Content = format.Content
	rec.UpdatedAt = r.clock.Now()
	updated, err := r.Update(ctx, rec)
	if err != nil {
		return nil, err
	}
	return formatToDomain(updated), nil
}

// GetFormat loads a template by id.
func (r *FormatRepository) GetFormat(ctx context.Context, id uuid.UUID) (*types.ReportFormat, error) {
	rec, err := r.getRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	return formatToDomain(rec), nil
}

// ListFormats returns the user's templates, newest first.
func (r *FormatRepository) ListFormats(ctx context.Context, userID uuid.UUID) ([]types.ReportFormat, error) {
	records, _, err := r.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("rf.user_id = ?", userID).
			OrderExpr("rf.created_at DESC")
	})
	if err != nil {
		return nil, err
	}
	out := make([]types.ReportFormat, 0, len(records))
	for _, rec := range records {
		out = append(out, *formatToDomain(rec))
	}
	return out, nil
}

// DeleteFormat removes a template. Purposes and reports pointing at it keep
// existing with a cleared format reference.
func (r *FormatRepository) DeleteFormat(ctx context.Context, id uuid.UUID) error {
	rec, err := r.getRecord(ctx, id)
	if err != nil {
		return err
	}
	return r.Delete(ctx, rec)
}

func (r *FormatRepository) getRecord(ctx context.Context, id uuid.UUID) (*FormatRecord, error) {
	if id == uuid.Nil {
		return nil, types.ErrFormatNotFound
	}
	rec, err := r.Get(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("rf.id = ?", id)
	})
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, types.ErrFormatNotFound
		}
		return nil, err
	}
	return rec, nil
}

func validateFormat(format types.ReportFormat) error {
	if format.UserID == uuid.Nil {
		return types.Invalid("user", "required")
	}
	if strings.TrimSpace(format.Name) == "" {
		return types.Invalid("name", "required")
	}
	if strings.TrimSpace(format.Content) == "" {
		return types.Invalid("content", "required")
	}
	return nil
}

func formatToDomain(rec *FormatRecord) *types.ReportFormat {
	if rec == nil {
		return nil
	}
	return &types.ReportFormat{
		ID:        rec.ID,
		UserID:    rec.UserID,
		Name:      rec.Name,
		Content:   rec.Content,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}
