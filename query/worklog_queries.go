package query

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/goliatone/go-worklog/scope"
	"github.com/google/uuid"
)

// WorklogQueryConfig wires the purpose, format, report and image reads.
type WorklogQueryConfig struct {
	Purposes   types.PurposeRepository
	Formats    types.FormatRepository
	Reports    types.ReportRepository
	Images     types.ImageRepository
	Visibility VisibilityResolver
	ScopeGuard scope.Guard
}

func (cfg WorklogQueryConfig) subjects() subjectGuard {
	return subjectGuard{guard: safeScopeGuard(cfg.ScopeGuard), visibility: cfg.Visibility}
}

// OwnerInput selects whose records to read. A nil UserID means the viewer's.
type OwnerInput struct {
	Viewer types.Viewer
	UserID uuid.UUID
}

// Type implements gocommand.Message.
func (OwnerInput) Type() string {
	return "query.worklog.owner"
}

// Validate implements gocommand.Message.
func (input OwnerInput) Validate() error {
	if input.Viewer.IsZero() {
		return types.ErrViewerRequired
	}
	return nil
}

// RecordInput loads one record of the selected owner.
type RecordInput struct {
	Viewer types.Viewer
	UserID uuid.UUID
	ID     uuid.UUID
}

// Type implements gocommand.Message.
func (RecordInput) Type() string {
	return "query.worklog.record"
}

// Validate implements gocommand.Message.
func (input RecordInput) Validate() error {
	if input.Viewer.IsZero() {
		return types.ErrViewerRequired
	}
	if input.ID == uuid.Nil {
		return types.Invalid("id", "required")
	}
	return nil
}

// belongs hides records of other owners behind a not found error so ids
// cannot be probed across users.
func belongs(owner, subject uuid.UUID, notFound error) error {
	if owner != subject {
		return notFound
	}
	return nil
}

// PurposeListQuery lists a user's folders, newest first.
type PurposeListQuery struct {
	purposes types.PurposeRepository
	subjects subjectGuard
}

// NewPurposeListQuery constructs the query.
func NewPurposeListQuery(cfg WorklogQueryConfig) *PurposeListQuery {
	return &PurposeListQuery{purposes: cfg.Purposes, subjects: cfg.subjects()}
}

var _ gocommand.Querier[OwnerInput, []types.Purpose] = (*PurposeListQuery)(nil)

// Query implements gocommand.Querier.
func (q *PurposeListQuery) Query(ctx context.Context, input OwnerInput) ([]types.Purpose, error) {
	if q.purposes == nil {
		return nil, types.ErrServiceNotReady
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	userID, err := q.subjects.subject(ctx, input.Viewer, input.UserID)
	if err != nil {
		return nil, err
	}
	return q.purposes.ListPurposes(ctx, userID)
}

// PurposeDetailQuery loads a folder with its format and reports.
type PurposeDetailQuery struct {
	purposes types.PurposeRepository
	subjects subjectGuard
}

// NewPurposeDetailQuery constructs the query.
func NewPurposeDetailQuery(cfg WorklogQueryConfig) *PurposeDetailQuery {
	return &PurposeDetailQuery{purposes: cfg.Purposes, subjects: cfg.subjects()}
}

var _ gocommand.Querier[RecordInput, *types.Purpose] = (*PurposeDetailQuery)(nil)

// Query implements gocommand.Querier.
func (q *PurposeDetailQuery) Query(ctx context.Context, input RecordInput) (*types.Purpose, error) {
	if q.purposes == nil {
		return nil, types.ErrServiceNotReady
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	userID, err := q.subjects.subject(ctx, input.Viewer, input.UserID)
	if err != nil {
		return nil, err
	}
	purpose, err := q.purposes.GetPurpose(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if err := belongs(purpose.UserID, userID, types.ErrPurposeNotFound); err != nil {
		return nil, err
	}
	return purpose, nil
}

// FormatListQuery lists the viewer's templates.
type FormatListQuery struct {
	formats  types.FormatRepository
	subjects subjectGuard
}

// NewFormatListQuery constructs the query.
func NewFormatListQuery(cfg WorklogQueryConfig) *FormatListQuery {
	return &FormatListQuery{formats: cfg.Formats, subjects: cfg.subjects()}
}

var _ gocommand.Querier[OwnerInput, []types.ReportFormat] = (*FormatListQuery)(nil)

// Query implements gocommand.Querier.
func (q *FormatListQuery) Query(ctx context.Context, input OwnerInput) ([]types.ReportFormat, error) {
	if q.formats == nil {
		return nil, types.ErrServiceNotReady
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	userID, err := q.subjects.subject(ctx, input.Viewer, input.UserID)
	if err != nil {
		return nil, err
	}
	return q.formats.ListFormats(ctx, userID)
}

// FormatDetailQuery loads a single template.
type FormatDetailQuery struct {
	formats  types.FormatRepository
	subjects subjectGuard
}

// NewFormatDetailQuery constructs the query.
func NewFormatDetailQuery(cfg WorklogQueryConfig) *FormatDetailQuery {
	return &FormatDetailQuery{formats: cfg.Formats, subjects: cfg.subjects()}
}

var _ gocommand.Querier[RecordInput, *types.ReportFormat] = (*FormatDetailQuery)(nil)

// Query implements gocommand.Querier.
func (q *FormatDetailQuery) Query(ctx context.Context, input RecordInput) (*types.ReportFormat, error) {
	if q.formats == nil {
		return nil, types.ErrServiceNotReady
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	userID, err := q.subjects.subject(ctx, input.Viewer, input.UserID)
	if err != nil {
		return nil, err
	}
	format, err := q.formats.GetFormat(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if err := belongs(format.UserID, userID, types.ErrFormatNotFound); err != nil {
		return nil, err
	}
	return format, nil
}

// ReportListInput narrows report listings.
type ReportListInput struct {
	Viewer    types.Viewer
	UserID    uuid.UUID
	PurposeID uuid.UUID
	Limit     int
}

// Type implements gocommand.Message.
func (ReportListInput) Type() string {
	return "query.report.list"
}

// Validate implements gocommand.Message.
func (input ReportListInput) Validate() error {
	if input.Viewer.IsZero() {
		return types.ErrViewerRequired
	}
	return nil
}

// ReportListQuery lists a user's reports, newest report date first.
type ReportListQuery struct {
	reports  types.ReportRepository
	subjects subjectGuard
}

// NewReportListQuery constructs the query.
func NewReportListQuery(cfg WorklogQueryConfig) *ReportListQuery {
	return &ReportListQuery{reports: cfg.Reports, subjects: cfg.subjects()}
}

var _ gocommand.Querier[ReportListInput, []types.Report] = (*ReportListQuery)(nil)

// Query implements gocommand.Querier.
func (q *ReportListQuery) Query(ctx context.Context, input ReportListInput) ([]types.Report, error) {
	if q.reports == nil {
		return nil, types.ErrServiceNotReady
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	userID, err := q.subjects.subject(ctx, input.Viewer, input.UserID)
	if err != nil {
		return nil, err
	}
	return q.reports.ListReports(ctx, types.ReportFilter{
		UserID:    userID,
		PurposeID: input.PurposeID,
		Limit:     input.Limit,
	})
}

// ReportDetailQuery loads a report with its images.
type ReportDetailQuery struct {
	reports  types.ReportRepository
	subjects subjectGuard
}

// NewReportDetailQuery constructs the query.
func NewReportDetailQuery(cfg WorklogQueryConfig) *ReportDetailQuery {
	return &ReportDetailQuery{reports: cfg.Reports, subjects: cfg.subjects()}
}

var _ gocommand.Querier[RecordInput, *types.Report] = (*ReportDetailQuery)(nil)

// Query implements gocommand.Querier.
func (q *ReportDetailQuery) Query(ctx context.Context, input RecordInput) (*types.Report, error) {
	if q.reports == nil {
		return nil, types.ErrServiceNotReady
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	userID, err := q.subjects.subject(ctx, input.Viewer, input.UserID)
	if err != nil {
		return nil, err
	}
	report, err := q.reports.GetReport(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if err := belongs(report.UserID, userID, types.ErrReportNotFound); err != nil {
		return nil, err
	}
	return report, nil
}

// ImageQuery loads image bytes for display. The owner and anyone who may
// browse the owner can read it.
type ImageQuery struct {
	images   types.ImageRepository
	subjects subjectGuard
}

// NewImageQuery constructs the query.
func NewImageQuery(cfg WorklogQueryConfig) *ImageQuery {
	return &ImageQuery{images: cfg.Images, subjects: cfg.subjects()}
}

var _ gocommand.Querier[RecordInput, *types.Image] = (*ImageQuery)(nil)

// Query implements gocommand.Querier. UserID is ignored; the image owner is
// checked instead.
func (q *ImageQuery) Query(ctx context.Context, input RecordInput) (*types.Image, error) {
	if q.images == nil {
		return nil, types.ErrServiceNotReady
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	images, err := q.images.GetImages(ctx, []uuid.UUID{input.ID})
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, types.ErrImageNotFound
	}
	img := images[0]
	if _, err := q.subjects.subject(ctx, input.Viewer, img.UserID); err != nil {
		if types.IsForbidden(err) {
			return nil, types.ErrImageNotFound
		}
		return nil, err
	}
	return &img, nil
}
