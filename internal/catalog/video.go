// Package catalog implements the how-to video catalog: record normalization,
// validation, and the read-modify-write store that persists the catalog as a
// single ordered JSON document in a blob store.
package catalog

// Video is one entry in the catalog document. Timestamps are epoch millis;
// VimeoID is the upsert key, ID the handle admin tooling deletes by.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Video struct {
	ID                     string   `json:"id"`
	VimeoID                string   `json:"vimeoId"`
	Title                  string   `json:"title"`
	Description            string   `json:"description,omitempty"`
	Category               string   `json:"category,omitempty"`
	Duration               float64  `json:"duration"`
	ThumbURL               string   `json:"thumbUrl"`
	DefaultCaptionLanguage string   `json:"defaultCaptionLanguage,omitempty"`
	CaptionLanguages       []string `json:"captionLanguages"`
	CreatedAt              int64    `json:"createdAt,omitempty"`
	UpdatedAt              int64    `json:"updatedAt,omitempty"`
}

// merge lays next over prev for an upsert hitting an existing record: fields
// the new payload supplied win, fields it omitted survive, and the original
// CreatedAt is never overwritten.
func merge(prev, next Video, now int64) Video {
	merged := next

	merged.CreatedAt = prev.CreatedAt
	if merged.CreatedAt == 0 {
		merged.CreatedAt = now
	}
	merged.UpdatedAt = now

	if merged.ID == "" {
		merged.ID = prev.ID
	}
	if merged.Description == "" {
		merged.Description = prev.Description
	}
	if merged.Category == "" {
		merged.Category = prev.Category
	}
	if merged.Duration == 0 {
		merged.Duration = prev.Duration
	}
	if merged.DefaultCaptionLanguage == "" {
		merged.DefaultCaptionLanguage = prev.DefaultCaptionLanguage
	}
	if len(merged.CaptionLanguages) == 0 {
		merged.CaptionLanguages = prev.CaptionLanguages
	}

	return merged
}
