package activity

import (
	"sync"

	"github.com/goliatone/go-masker"
	"github.com/goliatone/go-worklog/pkg/types"
)

var defaultMaskerOnce sync.Once

// DefaultMasker returns the shared masker with the worklog denylist
// registered: contact details and the free-form writing notes.
func DefaultMasker() *masker.Masker {
	defaultMaskerOnce.Do(func() {
		if masker.Default == nil {
			return
		}
		registerDefaultMaskFields(masker.Default)
	})
	return masker.Default
}

// SanitizeRecord masks sensitive values in the record payload. When masking
// fails the payload is dropped rather than stored in clear.
func SanitizeRecord(mask *masker.Masker, record types.ActivityRecord) types.ActivityRecord {
	if len(record.Data) == 0 {
		return record
	}
	if mask == nil {
		mask = DefaultMasker()
	}
	if mask == nil {
		record.Data = map[string]any{}
		return record
	}

	masked, err := mask.Mask(cloneMap(record.Data))
	if err != nil {
		record.Data = map[string]any{}
		return record
	}
	if data, ok := masked.(map[string]any); ok {
		record.Data = data
	} else {
		record.Data = map[string]any{}
	}
	return record
}

func registerDefaultMaskFields(mask *masker.Masker) {
	for _, field := range []string{"email", "Email", "personal", "Personal"} {
		mask.RegisterMaskField(field, "filled4")
	}
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return map[string]any{}
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
