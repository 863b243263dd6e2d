package activity

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// LogEntry models the persisted row in activity_log.
type LogEntry struct {
	bun.BaseModel `bun:"table:activity_log,alias:al"`

	ID         uuid.UUID      `bun:"id,pk,type:uuid"`
	UserID     uuid.UUID      `bun:"user_id,type:uuid,nullzero"`
	ActorID    uuid.UUID      `bun:"actor_id,type:uuid,notnull"`
	OrgID      uuid.UUID      `bun:"organization_id,type:uuid,notnull"`
	Verb       string         `bun:"verb,notnull"`
	ObjectType string         `bun:"object_type,notnull"`
	ObjectID   string         `bun:"object_id,notnull"`
	Data       map[string]any `bun:"data,type:jsonb"`
	CreatedAt  time.Time      `bun:"created_at,notnull"`
}
