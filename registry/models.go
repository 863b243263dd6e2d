package registry

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RoleRecord represents the schema stored in roles.
type RoleRecord struct {
	bun.BaseModel `bun:"table:roles,alias:role"`

	ID             uuid.UUID `bun:"id,pk,type:uuid"`
	OrganizationID uuid.UUID `bun:"organization_id,type:uuid,notnull"`
	Name           string    `bun:"name,notnull"`
	Level          int       `bun:"role_level,notnull"`
	CreatedAt      time.Time `bun:"created_at,notnull"`
	UpdatedAt      time.Time `bun:"updated_at,notnull"`
}
