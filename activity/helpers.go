package activity

import (
	"strings"

	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/google/uuid"
)

// BuildRecord constructs an ActivityRecord for a mutation performed by the
// viewer. The metadata map is copied.
func BuildRecord(viewer types.Viewer, target uuid.UUID, verb, objectType, objectID string, metadata map[string]any) (types.ActivityRecord, error) {
	if viewer.IsZero() {
		return types.ActivityRecord{}, types.ErrViewerRequired
	}
	verb = strings.TrimSpace(verb)
	if verb == "" {
		return types.ActivityRecord{}, types.Invalid("verb", "required")
	}
	return types.ActivityRecord{
		UserID:     target,
		ActorID:    viewer.ID,
		OrgID:      viewer.OrganizationID,
		Verb:       verb,
		ObjectType: strings.TrimSpace(objectType),
		ObjectID:   strings.TrimSpace(objectID),
		Data:       cloneMap(metadata),
	}, nil
}
