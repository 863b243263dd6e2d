package types

import (
	"errors"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

var (
	// ErrViewerRequired indicates a command or query ran without a viewer.
	ErrViewerRequired = errors.New("go-worklog: viewer required")
	// ErrForbidden indicates the viewer lacks the privilege for the action.
	ErrForbidden = errors.New("go-worklog: forbidden")
	// ErrProfileNotFound indicates the referenced profile does not exist.
	ErrProfileNotFound = errors.New("go-worklog: profile not found")
	// ErrOrganizationNotFound indicates the referenced organization does not exist.
	ErrOrganizationNotFound = errors.New("go-worklog: organization not found")
	// ErrRoleNotFound indicates the referenced role does not exist in scope.
	ErrRoleNotFound = errors.New("go-worklog: role not found")
	// ErrRoleInUse is returned when deleting a role still referenced by a profile.
	ErrRoleInUse = errors.New("go-worklog: role is in use and cannot be deleted")
	// ErrPurposeNotFound indicates the referenced purpose does not exist.
	ErrPurposeNotFound = errors.New("go-worklog: purpose not found")
	// ErrFormatNotFound indicates the referenced format does not exist.
	ErrFormatNotFound = errors.New("go-worklog: format not found")
	// ErrReportNotFound indicates the referenced report does not exist.
	ErrReportNotFound = errors.New("go-worklog: report not found")
	// ErrImageNotFound indicates the referenced image does not exist.
	ErrImageNotFound = errors.New("go-worklog: image not found")
	// ErrFeatureDisabled indicates a feature gate switched the workflow off.
	ErrFeatureDisabled = errors.New("go-worklog: feature disabled")
	// ErrGeneratorUnavailable indicates no text generator was configured.
	ErrGeneratorUnavailable = errors.New("go-worklog: text generator unavailable")
	// ErrServiceNotReady indicates the service has not been properly configured.
	ErrServiceNotReady = errors.New("go-worklog: service not ready")
)

const (
	textCodeViewerMissing = "VIEWER_MISSING"
	textCodeForbidden     = "FORBIDDEN"
	textCodeNotFound      = "NOT_FOUND"
	textCodeRoleInUse     = "ROLE_IN_USE"
	textCodeDisabled      = "FEATURE_DISABLED"
	textCodeInvalid       = "INVALID_INPUT"
	textCodeInternal      = "INTERNAL"
	textCodeUnavailable   = "UNAVAILABLE"
)

// IsNotFound reports whether err refers to a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProfileNotFound) ||
		errors.Is(err, ErrOrganizationNotFound) ||
		errors.Is(err, ErrRoleNotFound) ||
		errors.Is(err, ErrPurposeNotFound) ||
		errors.Is(err, ErrFormatNotFound) ||
		errors.Is(err, ErrReportNotFound) ||
		errors.Is(err, ErrImageNotFound)
}

// IsForbidden reports whether err is an authorization denial.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden) || errors.Is(err, ErrViewerRequired)
}

// ValidationError marks input errors so transports can answer with 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "go-worklog: " + e.Message
	}
	return "go-worklog: " + e.Field + " " + e.Message
}

// Invalid builds a ValidationError for the field.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// Categorize wraps err into a go-errors value carrying the HTTP code and
// category transports use to render a response.
func Categorize(err error) error {
	if err == nil {
		return nil
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return err
	}
	var invalid *ValidationError
	switch {
	case errors.Is(err, ErrViewerRequired):
		return goerrors.Wrap(err, goerrors.CategoryAuth, err.Error()).
			WithCode(goerrors.CodeUnauthorized).
			WithTextCode(textCodeViewerMissing)
	case errors.Is(err, ErrForbidden):
		return goerrors.Wrap(err, goerrors.CategoryAuthz, err.Error()).
			WithCode(goerrors.CodeForbidden).
			WithTextCode(textCodeForbidden)
	case IsNotFound(err):
		return goerrors.Wrap(err, goerrors.CategoryNotFound, err.Error()).
			WithCode(goerrors.CodeNotFound).
			WithTextCode(textCodeNotFound)
	case errors.Is(err, ErrRoleInUse):
		return goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()).
			WithCode(goerrors.CodeBadRequest).
			WithTextCode(textCodeRoleInUse)
	case errors.Is(err, ErrFeatureDisabled):
		return goerrors.Wrap(err, goerrors.CategoryAuthz, err.Error()).
			WithCode(goerrors.CodeForbidden).
			WithTextCode(textCodeDisabled)
	case errors.As(err, &invalid):
		return goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()).
			WithCode(goerrors.CodeBadRequest).
			WithTextCode(textCodeInvalid)
	case errors.Is(err, ErrGeneratorUnavailable), errors.Is(err, ErrServiceNotReady):
		return goerrors.Wrap(err, goerrors.CategoryInternal, err.Error()).
			WithCode(http.StatusServiceUnavailable).
			WithTextCode(textCodeUnavailable)
	default:
		return goerrors.Wrap(err, goerrors.CategoryInternal, "go-worklog: internal error").
			WithCode(goerrors.CodeInternal).
			WithTextCode(textCodeInternal)
	}
}
