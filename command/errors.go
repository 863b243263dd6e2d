package command

import (
	"errors"

	"github.com/goliatone/go-worklog/pkg/types"
)

var (
	// ErrViewerRequired indicates a command ran without a viewer.
	ErrViewerRequired = types.ErrViewerRequired
	// ErrTargetRequired indicates a profile command omitted the target user.
	ErrTargetRequired = errors.New("go-worklog: target user required")
	// ErrRoleIDRequired signals the role ID was missing.
	ErrRoleIDRequired = errors.New("go-worklog: role id required")
	// ErrRoleNameRequired occurs when a role command omits the role name.
	ErrRoleNameRequired = errors.New("go-worklog: role name required")
	// ErrDirectionInvalid occurs when MoveRole receives neither up nor down.
	ErrDirectionInvalid = errors.New("go-worklog: direction must be up or down")
	// ErrPurposeRequired occurs when a report or AI command omits the purpose.
	ErrPurposeRequired = types.Invalid("purpose", "required")
	// ErrContentRequired occurs when an AI command has nothing to analyze.
	ErrContentRequired = types.Invalid("content", "required")
	// ErrIDRequired occurs when an update or delete omits the record id.
	ErrIDRequired = errors.New("go-worklog: record id required")
)
