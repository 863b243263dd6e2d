package profile

import (
	"time"

	"github.com/goliatone/go-worklog/registry"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Record models the profiles row.
type Record struct {
	bun.BaseModel `bun:"table:profiles,alias:p"`

	ID             uuid.UUID            `bun:"id,pk,type:uuid"`
	Email          string               `bun:"email,notnull"`
	Name           string               `bun:"name,notnull"`
	IsAdmin        bool                 `bun:"is_admin,notnull"`
	IsSuperuser    bool                 `bun:"is_superuser,notnull"`
	OrganizationID uuid.UUID            `bun:"organization_id,type:uuid,notnull"`
	ParentID       *uuid.UUID           `bun:"parent_id,type:uuid"`
	RoleID         *uuid.UUID           `bun:"role_id,type:uuid"`
	Role           *registry.RoleRecord `bun:"rel:belongs-to,join:role_id=id"`
	Personal       string               `bun:"personal,notnull"`
	CreatedAt      time.Time            `bun:"created_at,notnull"`
	UpdatedAt      time.Time            `bun:"updated_at,notnull"`
}

// OrganizationRecord models the organizations row.
type OrganizationRecord struct {
	bun.BaseModel `bun:"table:organizations,alias:o"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	Name      string    `bun:"name,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}
