package types

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Viewer is the resolved identity of the user issuing a request. It is built
// once per request from the stored profile and passed explicitly to every
// command and query.
type Viewer struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	ParentID       *uuid.UUID
	IsAdmin        bool
	IsSuperuser    bool
}

// IsZero reports whether the viewer carries no identity.
func (v Viewer) IsZero() bool {
	return v.ID == uuid.Nil
}

// IsRoot reports whether the viewer sits at the top of its organization.
func (v Viewer) IsRoot() bool {
	return v.ParentID == nil
}

// ViewerFromProfile derives the viewer context from a stored profile.
func ViewerFromProfile(p *Profile) Viewer {
	if p == nil {
		return Viewer{}
	}
	return Viewer{
		ID:             p.ID,
		OrganizationID: p.OrganizationID,
		ParentID:       cloneID(p.ParentID),
		IsAdmin:        p.IsAdmin,
		IsSuperuser:    p.IsSuperuser,
	}
}

// ScopeFilter carries the row filters applied to repository reads and writes.
type ScopeFilter struct {
	OrgID  uuid.UUID
	UserID uuid.UUID
}

// Direction selects the neighbor a role is swapped with when reordering.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Valid reports whether the direction is one of the supported values.
func (d Direction) Valid() bool {
	return d == DirectionUp || d == DirectionDown
}

// RoleEvent is emitted when a role is created, renamed, deleted or moved.
type RoleEvent struct {
	RoleID     uuid.UUID
	Action     string
	ActorID    uuid.UUID
	Scope      ScopeFilter
	OccurredAt time.Time
	Role       Role
}

// ProfileEvent signals that a profile mutation occurred.
type ProfileEvent struct {
	UserID     uuid.UUID
	ActorID    uuid.UUID
	Action     string
	OccurredAt time.Time
	Profile    Profile
}

// Hooks groups optional callbacks invoked after key workflows complete.
type Hooks struct {
	AfterRoleChange    func(context.Context, RoleEvent)
	AfterProfileChange func(context.Context, ProfileEvent)
	AfterActivity      func(context.Context, ActivityRecord)
}

// ActivityRecord describes an audited mutation.
type ActivityRecord struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	ActorID    uuid.UUID
	OrgID      uuid.UUID
	Verb       string
	ObjectType string
	ObjectID   string
	Data       map[string]any
	OccurredAt time.Time
}

// ActivityFilter narrows activity listings.
type ActivityFilter struct {
	OrgID  uuid.UUID
	UserID uuid.UUID
	Verbs  []string
	Limit  int
}

// ActivitySink is the write side of the activity trail.
type ActivitySink interface {
	Log(context.Context, ActivityRecord) error
}

// ActivityRepository exposes read-side access to the activity trail.
type ActivityRepository interface {
	ListActivity(ctx context.Context, filter ActivityFilter) ([]ActivityRecord, error)
}

// Clock abstracts time retrieval for deterministic testing.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID creation.
type IDGenerator interface {
	UUID() uuid.UUID
}

// Logger captures basic logging hooks used by the service.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Error(msg string, err error, fields ...any)
}

// SystemClock defers to time.Now for production usage.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator produces UUIDv4 identifiers.
type UUIDGenerator struct{}

// UUID implements IDGenerator.
func (UUIDGenerator) UUID() uuid.UUID { return uuid.New() }

// NopLogger discards all log lines.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(string, ...any) {}

// Info implements Logger.
func (NopLogger) Info(string, ...any) {}

// Error implements Logger.
func (NopLogger) Error(string, error, ...any) {}

func cloneID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
