package reports

import (
	"strings"

	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/google/uuid"
)

// DefaultListLimit caps report listings when the filter leaves Limit unset.
const DefaultListLimit = 200

func clockOrDefault(clock types.Clock) types.Clock {
	if clock == nil {
		return types.SystemClock{}
	}
	return clock
}

func idGenOrDefault(gen types.IDGenerator) types.IDGenerator {
	if gen == nil {
		return types.UUIDGenerator{}
	}
	return gen
}

func cloneID(id *uuid.UUID) *uuid.UUID {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	v := *id
	return &v
}

// IsImageMime reports whether the mime type names an image.
func IsImageMime(mime string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mime)), "image/")
}
