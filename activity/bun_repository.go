package activity

import (
	"context"
	"errors"

	"github.com/goliatone/go-masker"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// RepositoryConfig wires the Bun-backed activity repository.
type RepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*LogEntry]
	Clock      types.Clock
	IDGen      types.IDGenerator
	Masker     *masker.Masker
}

type activityStore interface {
	repository.Repository[*LogEntry]
}

// Repository persists activity logs and exposes the audit feed.
type Repository struct {
	activityStore
	clock  types.Clock
	idGen  types.IDGenerator
	masker *masker.Masker
}

// NewRepository constructs a repository that implements both ActivitySink
// and ActivityRepository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if cfg.Repository == nil && cfg.DB == nil {
		return nil, errors.New("activity: db or repository required")
	}
	repo := cfg.Repository
	if repo == nil {
		repo = repository.NewRepository(cfg.DB, repository.ModelHandlers[*LogEntry]{
			NewRecord: func() *LogEntry { return &LogEntry{} },
			GetID: func(entry *LogEntry) uuid.UUID {
				if entry == nil {
					return uuid.Nil
				}
				return entry.ID
			},
			SetID: func(entry *LogEntry, id uuid.UUID) {
				if entry != nil {
					entry.ID = id
				}
			},
		})
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	idGen := cfg.IDGen
	if idGen == nil {
		idGen = types.UUIDGenerator{}
	}
	mask := cfg.Masker
	if mask == nil {
		mask = DefaultMasker()
	}

	return &Repository{
		activityStore: repo,
		clock:         clock,
		idGen:         idGen,
		masker:        mask,
	}, nil
}

var (
	_ repository.Repository[*LogEntry] = (*Repository)(nil)
	_ types.ActivitySink               = (*Repository)(nil)
	_ types.ActivityRepository         = (*Repository)(nil)
)

// Log masks and persists an activity record.
func (r *Repository) Log(ctx context.Context, record types.ActivityRecord) error {
	if record.OrgID == uuid.Nil {
		return types.Invalid("organization", "required")
	}
	entry := toLogEntry(SanitizeRecord(r.masker, record))
	if entry.ID == uuid.Nil {
		entry.ID = r.idGen.UUID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.clock.Now()
	}
	_, err := r.Create(ctx, entry)
	return err
}

// ListActivity returns the organization's feed, newest first.
func (r *Repository) ListActivity(ctx context.Context, filter types.ActivityFilter) ([]types.ActivityRecord, error) {
	if filter.OrgID == uuid.Nil {
		return nil, types.Invalid("organization", "required")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	rows, _, err := r.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.Where("al.organization_id = ?", filter.OrgID)
		if filter.UserID != uuid.Nil {
			q = q.Where("(al.user_id = ? OR al.actor_id = ?)", filter.UserID, filter.UserID)
		}
		if len(filter.Verbs) > 0 {
			q = q.Where("al.verb IN (?)", bun.In(filter.Verbs))
		}
		return q.OrderExpr("al.created_at DESC").Limit(limit)
	})
	if err != nil {
		return nil, err
	}
	records := make([]types.ActivityRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, toActivityRecord(row))
	}
	return records, nil
}

func toLogEntry(record types.ActivityRecord) *LogEntry {
	return &LogEntry{
		ID:         record.ID,
		UserID:     record.UserID,
		ActorID:    record.ActorID,
		OrgID:      record.OrgID,
		Verb:       record.Verb,
		ObjectType: record.ObjectType,
		ObjectID:   record.ObjectID,
		Data:       cloneMap(record.Data),
		CreatedAt:  record.OccurredAt,
	}
}

func toActivityRecord(entry *LogEntry) types.ActivityRecord {
	if entry == nil {
		return types.ActivityRecord{}
	}
	return types.ActivityRecord{
		ID:         entry.ID,
		UserID:     entry.UserID,
		ActorID:    entry.ActorID,
		OrgID:      entry.OrgID,
		Verb:       entry.Verb,
		ObjectType: entry.ObjectType,
		ObjectID:   entry.ObjectID,
		Data:       cloneMap(entry.Data),
		OccurredAt: entry.CreatedAt,
	}
}
