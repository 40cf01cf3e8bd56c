package catalog

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	digitsRegex   = regexp.MustCompile(`^\d+$`)
	vimeoURLRegex = regexp.MustCompile(`(?i)vimeo\.com/(?:video/)?(\d+)`)
	thumbURLRegex = regexp.MustCompile(`(?i)^https?://`)
	slugRegex     = regexp.MustCompile(`[^a-z0-9]+`)
)

// IDRule is one strategy for pulling the Vimeo identifier out of a raw
// payload. Admin tooling has sent the identifier under several names and
// shapes over time; new shapes get a new rule instead of touching these.
type IDRule struct {
	Name  string
	Field string
}

// Apply returns the identifier this rule finds in the payload, or "".
// A whole-digit value is taken as-is; anything else must contain a Vimeo URL
// whose numeric id is captured.
func (r IDRule) Apply(in map[string]any) string {
	raw, ok := in[r.Field]
	if !ok {
		return ""
	}

	s := strings.TrimSpace(stringify(raw))
	if s == "" {
		return ""
	}
	if digitsRegex.MatchString(s) {
		return s
	}
	if m := vimeoURLRegex.FindStringSubmatch(s); m != nil {
		return m[1]
	}

	return ""
}

// idRules is the extraction priority order: direct identifier fields first,
// URL-shaped fields last.
var idRules = []IDRule{
	{Name: "vimeo-id", Field: "vimeoId"},
	{Name: "vimeo-id-caps", Field: "vimeoID"},
	{Name: "vimeo", Field: "vimeo"},
	{Name: "record-id", Field: "id"},
	{Name: "url", Field: "url"},
	{Name: "vimeo-url", Field: "vimeoUrl"},
	{Name: "link", Field: "link"},
}

// ExtractVimeoID returns the first identifier any rule accepts, in priority
// order, or "" when none match.
func ExtractVimeoID(in map[string]any) string {
	for _, rule := range idRules {
		if id := rule.Apply(in); id != "" {
			return id
		}
	}
	return ""
}

// Slugify converts free text to a lowercase hyphen-delimited slug. It is
// idempotent: Slugify(Slugify(s)) == Slugify(s).
func Slugify(s string) string {
	slug := slugRegex.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(slug, "-")
}

// Normalize converts a loosely-typed payload into a canonical Video record.
// It never fails; Validate decides whether the result is acceptable.
func Normalize(in map[string]any) Video {
	vimeoID := ExtractVimeoID(in)

	id := strings.TrimSpace(stringify(in["id"]))
	if id == "" {
		id = vimeoID
	}

	duration := numeric(in["duration"])
	if duration < 0 {
		duration = 0
	}

	return Video{
		ID:                     id,
		VimeoID:                vimeoID,
		Title:                  strings.TrimSpace(stringify(in["title"])),
		Description:            strings.TrimSpace(stringify(in["description"])),
		Category:               Slugify(strings.TrimSpace(stringify(in["category"]))),
		Duration:               duration,
		ThumbURL:               strings.TrimSpace(stringify(in["thumbUrl"])),
		DefaultCaptionLanguage: strings.TrimSpace(stringify(in["defaultCaptionLanguage"])),
		CaptionLanguages:       captionLanguages(in["captionLanguages"]),
		CreatedAt:              int64(numeric(in["createdAt"])),
		UpdatedAt:              int64(numeric(in["updatedAt"])),
	}
}

// Validate applies the single-record upsert rules and reports the first
// failing one.
func Validate(v Video) error {
	switch {
	case v.VimeoID == "" || !digitsRegex.MatchString(v.VimeoID):
		return fmt.Errorf("%w: vimeoId must be a numeric string", ErrValidation)
	case v.Title == "":
		return fmt.Errorf("%w: title is required", ErrValidation)
	case v.ThumbURL == "" || !thumbURLRegex.MatchString(v.ThumbURL):
		return fmt.Errorf("%w: thumbUrl must start with http:// or https://", ErrValidation)
	}
	return nil
}

func stringify(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case json.Number:
		return value.String()
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	default:
		return fmt.Sprint(value)
	}
}

func numeric(v any) float64 {
	switch value := v.(type) {
	case float64:
		return value
	case int:
		return float64(value)
	case int64:
		return float64(value)
	case json.Number:
		f, err := value.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func captionLanguages(v any) []string {
	langs := []string{}

	switch value := v.(type) {
	case []any:
		for _, item := range value {
			if lang := strings.TrimSpace(stringify(item)); lang != "" {
				langs = append(langs, lang)
			}
		}
	case []string:
		for _, item := range value {
			if lang := strings.TrimSpace(item); lang != "" {
				langs = append(langs, lang)
			}
		}
	case string:
		for _, piece := range strings.Split(value, ",") {
			if lang := strings.TrimSpace(piece); lang != "" {
				langs = append(langs, lang)
			}
		}
	}

	return langs
}
