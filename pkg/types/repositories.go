package types

import (
	"context"

	"github.com/google/uuid"
)

// ProfileRepository persists profiles. Lookups of unknown ids return
// ErrProfileNotFound.
type ProfileRepository interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]Profile, error)
	AssignRole(ctx context.Context, userID, roleID uuid.UUID) (*Profile, error)
	SetAdmin(ctx context.Context, userID uuid.UUID, isAdmin bool) (*Profile, error)
	UpdateProfile(ctx context.Context, input ProfileMutation) (*Profile, error)
	UpsertProfile(ctx context.Context, profile Profile) (*Profile, error)
}

// OrganizationRepository persists organizations.
type OrganizationRepository interface {
	GetOrganization(ctx context.Context, id uuid.UUID) (*Organization, error)
	UpsertOrganization(ctx context.Context, org Organization) (*Organization, error)
}

// RoleMutation carries role create/rename payloads.
type RoleMutation struct {
	Name    string
	Scope   ScopeFilter
	ActorID uuid.UUID
}

// RoleRegistry manages organization roles and their ordering.
type RoleRegistry interface {
	CreateRole(ctx context.Context, input RoleMutation) (*Role, error)
	RenameRole(ctx context.Context, id uuid.UUID, input RoleMutation) (*Role, error)
	DeleteRole(ctx context.Context, id uuid.UUID, scope ScopeFilter, actor uuid.UUID) error
	GetRole(ctx context.Context, id uuid.UUID, scope ScopeFilter) (*Role, error)
	ListRoles(ctx context.Context, scope ScopeFilter) ([]Role, error)
	MoveRole(ctx context.Context, id uuid.UUID, dir Direction, scope ScopeFilter, actor uuid.UUID) (bool, error)
}

// PurposeRepository persists report folders.
type PurposeRepository interface {
	CreatePurpose(ctx context.Context, purpose Purpose) (*Purpose, error)
	UpdatePurpose(ctx context.Context, purpose Purpose) (*Purpose, error)
	GetPurpose(ctx context.Context, id uuid.UUID) (*Purpose, error)
	ListPurposes(ctx context.Context, userID uuid.UUID) ([]Purpose, error)
	DeletePurpose(ctx context.Context, id uuid.UUID) error
	SetInsights(ctx context.Context, id uuid.UUID, insights string) error
}

// FormatRepository persists report templates.
type FormatRepository interface {
	CreateFormat(ctx context.Context, format ReportFormat) (*ReportFormat, error)
	UpdateFormat(ctx context.Context, format ReportFormat) (*ReportFormat, error)
	GetFormat(ctx context.Context, id uuid.UUID) (*ReportFormat, error)
	ListFormats(ctx context.Context, userID uuid.UUID) ([]ReportFormat, error)
	DeleteFormat(ctx context.Context, id uuid.UUID) error
}

// ReportRepository persists reports.
type ReportRepository interface {
	CreateReport(ctx context.Context, report Report) (*Report, error)
	UpdateReport(ctx context.Context, report Report) (*Report, error)
	GetReport(ctx context.Context, id uuid.UUID) (*Report, error)
	ListReports(ctx context.Context, filter ReportFilter) ([]Report, error)
	DeleteReport(ctx context.Context, id uuid.UUID) error
}

// ImageRepository persists uploaded images.
type ImageRepository interface {
	SaveImage(ctx context.Context, image Image) (*Image, error)
	GetImages(ctx context.Context, ids []uuid.UUID) ([]Image, error)
	ListByReport(ctx context.Context, reportID uuid.UUID) ([]Image, error)
	AttachToReport(ctx context.Context, reportID uuid.UUID, ids []uuid.UUID) error
	DeleteImage(ctx context.Context, id uuid.UUID) error
}

// InlineImage is an image payload sent alongside a prompt.
type InlineImage struct {
	MimeType string
	Data     []byte
}

// GenerationRequest is a single prompt submitted to a text generator.
type GenerationRequest struct {
	Prompt string
	Images []InlineImage
}

// TextGenerator produces text from a prompt. Implementations wrap a
// generative model backend.
type TextGenerator interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}
