package reports

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// FormatRecord models the report_formats row.
type FormatRecord struct {
	bun.BaseModel `bun:"table:report_formats,alias:rf"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	UserID    uuid.UUID `bun:"user_id,type:uuid,notnull"`
	Name      string    `bun:"name,notnull"`
	Content   string    `bun:"content,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// PurposeRecord models the purposes row.
type PurposeRecord struct {
	bun.BaseModel `bun:"table:purposes,alias:pu"`

	ID          uuid.UUID       `bun:"id,pk,type:uuid"`
	UserID      uuid.UUID       `bun:"user_id,type:uuid,notnull"`
	Name        string          `bun:"name,notnull"`
	Description string          `bun:"description,notnull"`
	FormatID    *uuid.UUID      `bun:"format_id,type:uuid"`
	Format      *FormatRecord   `bun:"rel:belongs-to,join:format_id=id"`
	Insights    string          `bun:"insights,notnull"`
	Reports     []*ReportRecord `bun:"rel:has-many,join:id=purpose_id"`
	CreatedAt   time.Time       `bun:"created_at,notnull"`
	UpdatedAt   time.Time       `bun:"updated_at,notnull"`
}

// ReportRecord models the reports row.
type ReportRecord struct {
	bun.BaseModel `bun:"table:reports,alias:r"`

	ID         uuid.UUID      `bun:"id,pk,type:uuid"`
	UserID     uuid.UUID      `bun:"user_id,type:uuid,notnull"`
	PurposeID  uuid.UUID      `bun:"purpose_id,type:uuid,notnull"`
	FormatID   *uuid.UUID     `bun:"format_id,type:uuid"`
	Title      string         `bun:"title,notnull"`
	Content    string         `bun:"content,notnull"`
	ReportDate time.Time      `bun:"report_date,notnull"`
	Images     []*ImageRecord `bun:"rel:has-many,join:id=report_id"`
	CreatedAt  time.Time      `bun:"created_at,notnull"`
	UpdatedAt  time.Time      `bun:"updated_at,notnull"`
}

// ImageRecord models the images row. Data holds the raw bytes.
type ImageRecord struct {
	bun.BaseModel `bun:"table:images,alias:img"`

	ID        uuid.UUID  `bun:"id,pk,type:uuid"`
	UserID    uuid.UUID  `bun:"user_id,type:uuid,notnull"`
	PurposeID *uuid.UUID `bun:"purpose_id,type:uuid"`
	ReportID  *uuid.UUID `bun:"report_id,type:uuid"`
	FileName  string     `bun:"file_name,notnull"`
	MimeType  string     `bun:"mime_type,notnull"`
	Size      int        `bun:"size,notnull"`
	Data      []byte     `bun:"data,notnull"`
	CreatedAt time.Time  `bun:"created_at,notnull"`
}
