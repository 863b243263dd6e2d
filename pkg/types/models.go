package types

import (
	"time"

	"github.com/google/uuid"
)

// Organization groups profiles and roles.
type Organization struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Role is an organization-scoped title. Higher Level means more senior.
type Role struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
	Level          int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Profile is the application-level user record. A nil ParentID marks the
// organization root.
type Profile struct {
	ID             uuid.UUID
	Email          string
	Name           string
	IsAdmin        bool
	IsSuperuser    bool
	OrganizationID uuid.UUID
	ParentID       *uuid.UUID
	RoleID         *uuid.UUID
	Role           *Role
	Personal       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DisplayName returns the name, falling back to the email address.
func (p Profile) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Email
}

// RoleName returns the embedded role name or an empty string.
func (p Profile) RoleName() string {
	if p.Role == nil {
		return ""
	}
	return p.Role.Name
}

// ProfileMutation carries self-service profile edits. Nil fields are left
// untouched.
type ProfileMutation struct {
	UserID   uuid.UUID
	Name     *string
	Personal *string
}

// Purpose is a report folder owned by a single user.
type Purpose struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Name        string
	Description string
	FormatID    *uuid.UUID
	Format      *ReportFormat
	Insights    string
	Reports     []Report
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ReportFormat is a reusable Markdown template.
type ReportFormat struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Report is a single dated entry inside a purpose.
type Report struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	PurposeID  uuid.UUID
	FormatID   *uuid.UUID
	Title      string
	Content    string
	ReportDate time.Time
	Images     []Image
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ReportFilter narrows report listings.
type ReportFilter struct {
	UserID    uuid.UUID
	PurposeID uuid.UUID
	Limit     int
}

// Image is an uploaded picture, optionally attached to a report.
type Image struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	PurposeID *uuid.UUID
	ReportID  *uuid.UUID
	FileName  string
	MimeType  string
	Size      int
	Data      []byte
	CreatedAt time.Time
}
