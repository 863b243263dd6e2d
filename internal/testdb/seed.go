package testdb

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

var (
	seedEpoch = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	seedTick  atomic.Int64
)

// SeedTime returns strictly increasing timestamps so rows keep insertion
// order when sorted by created_at.
func SeedTime() time.Time {
	return seedEpoch.Add(time.Duration(seedTick.Add(1)) * time.Second)
}

// Organization inserts an organization row and returns its id.
func Organization(t testing.TB, db *bun.DB, name string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	now := SeedTime()
	_, err := db.Exec("INSERT INTO organizations (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)",
		id.String(), name, now, now)
	require.NoError(t, err)
	return id
}

// ProfileSeed describes a profile row inserted by Profile.
type ProfileSeed struct {
	ID          uuid.UUID
	Email       string
	Name        string
	OrgID       uuid.UUID
	ParentID    *uuid.UUID
	RoleID      *uuid.UUID
	IsAdmin     bool
	IsSuperuser bool
}

// Profile inserts a profile row and returns its id.
func Profile(t testing.TB, db *bun.DB, seed ProfileSeed) uuid.UUID {
	t.Helper()
	id := seed.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	email := seed.Email
	if email == "" {
		email = id.String() + "@example.com"
	}
	now := SeedTime()
	_, err := db.Exec(`INSERT INTO profiles
		(id, email, name, is_admin, is_superuser, organization_id, parent_id, role_id, personal, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, '', ?, ?)`,
		id.String(), email, seed.Name, seed.IsAdmin, seed.IsSuperuser, seed.OrgID.String(),
		nullableID(seed.ParentID), nullableID(seed.RoleID), now, now)
	require.NoError(t, err)
	return id
}

// Role inserts a role row with the given level and returns its id.
func Role(t testing.TB, db *bun.DB, orgID uuid.UUID, name string, level int) uuid.UUID {
	t.Helper()
	id := uuid.New()
	now := SeedTime()
	_, err := db.Exec("INSERT INTO roles (id, organization_id, name, role_level, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		id.String(), orgID.String(), name, level, now, now)
	require.NoError(t, err)
	return id
}

func nullableID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}
