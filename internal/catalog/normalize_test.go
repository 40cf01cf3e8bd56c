package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Getting Started", "getting-started"},
		{"already a slug", "getting-started", "getting-started"},
		{"punctuation runs", "Notes & Charts!!", "notes-charts"},
		{"leading and trailing junk", "  --Clinical Docs--  ", "clinical-docs"},
		{"unicode stripped", "café menü", "caf-men"},
		{"empty", "", ""},
		{"only junk", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Slugify(tt.input))
		})
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"Getting Started", "a  b   c", "UPPER CASE", "already-a-slug",
		"123 Numbers", "--edges--", "mixed_Case AND symbols #1",
	}

	for _, input := range inputs {
		once := Slugify(input)
		assert.Equal(t, once, Slugify(once), "Slugify must be idempotent for %q", input)
	}
}

func TestIDRuleApply(t *testing.T) {
	t.Parallel()

	rule := IDRule{Name: "url", Field: "url"}

	tests := []struct {
		name string
		in   map[string]any
		want string
	}{
		{"digits accepted directly", map[string]any{"url": "987654"}, "987654"},
		{"plain vimeo url", map[string]any{"url": "https://vimeo.com/123456"}, "123456"},
		{"video path segment", map[string]any{"url": "https://vimeo.com/video/123456"}, "123456"},
		{"case insensitive host", map[string]any{"url": "HTTPS://VIMEO.COM/VIDEO/777"}, "777"},
		{"numeric json value", map[string]any{"url": float64(4242)}, "4242"},
		{"field absent", map[string]any{}, ""},
		{"empty value", map[string]any{"url": "   "}, ""},
		{"unrelated url", map[string]any{"url": "https://youtube.com/watch?v=abc"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, rule.Apply(tt.in))
		})
	}
}

func TestExtractVimeoIDPriority(t *testing.T) {
	t.Parallel()

	t.Run("direct id wins over url", func(t *testing.T) {
		t.Parallel()

		got := ExtractVimeoID(map[string]any{
			"vimeoId": "111",
			"url":     "https://vimeo.com/222",
		})
		assert.Equal(t, "111", got)
	})

	t.Run("skips empty candidates", func(t *testing.T) {
		t.Parallel()

		got := ExtractVimeoID(map[string]any{
			"vimeoId": "  ",
			"vimeo":   "https://vimeo.com/333",
		})
		assert.Equal(t, "333", got)
	})

	t.Run("alternate casing field", func(t *testing.T) {
		t.Parallel()

		got := ExtractVimeoID(map[string]any{"vimeoID": "444"})
		assert.Equal(t, "444", got)
	})

	t.Run("falls through to link", func(t *testing.T) {
		t.Parallel()

		got := ExtractVimeoID(map[string]any{"link": "vimeo.com/video/555"})
		assert.Equal(t, "555", got)
	})

	t.Run("no candidate matches", func(t *testing.T) {
		t.Parallel()

		got := ExtractVimeoID(map[string]any{"id": "abc", "url": "https://example.com"})
		assert.Equal(t, "", got)
	})
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	t.Run("full payload", func(t *testing.T) {
		t.Parallel()

		v := Normalize(map[string]any{
			"id":                     " intro-1 ",
			"vimeoId":                "12345",
			"title":                  "  Intro  ",
			"description":            " A tour. ",
			"category":               "Getting Started",
			"duration":               float64(93.5),
			"thumbUrl":               " https://x.com/a.png ",
			"defaultCaptionLanguage": "en",
			"captionLanguages":       []any{"en", " de ", ""},
			"createdAt":              float64(1700000000000),
		})

		assert.Equal(t, "intro-1", v.ID)
		assert.Equal(t, "12345", v.VimeoID)
		assert.Equal(t, "Intro", v.Title)
		assert.Equal(t, "A tour.", v.Description)
		assert.Equal(t, "getting-started", v.Category)
		assert.Equal(t, 93.5, v.Duration)
		assert.Equal(t, "https://x.com/a.png", v.ThumbURL)
		assert.Equal(t, "en", v.DefaultCaptionLanguage)
		assert.Equal(t, []string{"en", "de"}, v.CaptionLanguages)
		assert.Equal(t, int64(1700000000000), v.CreatedAt)
		assert.Equal(t, int64(0), v.UpdatedAt)
	})

	t.Run("id falls back to extracted identifier", func(t *testing.T) {
		t.Parallel()

		v := Normalize(map[string]any{
			"url":      "https://vimeo.com/6789",
			"title":    "No explicit id",
			"thumbUrl": "https://x.com/t.png",
		})

		assert.Equal(t, "6789", v.ID)
		assert.Equal(t, "6789", v.VimeoID)
	})

	t.Run("caption languages from csv string", func(t *testing.T) {
		t.Parallel()

		v := Normalize(map[string]any{"captionLanguages": "en, fr ,,es"})
		assert.Equal(t, []string{"en", "fr", "es"}, v.CaptionLanguages)
	})

	t.Run("caption languages default to empty array", func(t *testing.T) {
		t.Parallel()

		v := Normalize(map[string]any{})
		require.NotNil(t, v.CaptionLanguages)
		assert.Empty(t, v.CaptionLanguages)
	})

	t.Run("unparseable duration becomes zero", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, float64(0), Normalize(map[string]any{"duration": "soon"}).Duration)
		assert.Equal(t, float64(0), Normalize(map[string]any{"duration": float64(-5)}).Duration)
		assert.Equal(t, 42.0, Normalize(map[string]any{"duration": "42"}).Duration)
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := Video{
		VimeoID:  "12345",
		Title:    "Intro",
		ThumbURL: "https://x.com/a.png",
	}

	t.Run("valid record passes", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, Validate(valid))
	})

	tests := []struct {
		name    string
		mutate  func(v Video) Video
		wantMsg string
	}{
		{
			name:    "empty vimeoId",
			mutate:  func(v Video) Video { v.VimeoID = ""; return v },
			wantMsg: "vimeoId",
		},
		{
			name:    "non numeric vimeoId",
			mutate:  func(v Video) Video { v.VimeoID = "12a45"; return v },
			wantMsg: "vimeoId",
		},
		{
			name:    "empty title",
			mutate:  func(v Video) Video { v.Title = ""; return v },
			wantMsg: "title",
		},
		{
			name:    "empty thumbUrl",
			mutate:  func(v Video) Video { v.ThumbURL = ""; return v },
			wantMsg: "thumbUrl",
		},
		{
			name:    "thumbUrl without scheme",
			mutate:  func(v Video) Video { v.ThumbURL = "not-a-url"; return v },
			wantMsg: "thumbUrl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Validate(tt.mutate(valid))
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}

	t.Run("http scheme accepted case insensitively", func(t *testing.T) {
		t.Parallel()

		v := valid
		v.ThumbURL = "HTTP://x.com/a.png"
		assert.NoError(t, Validate(v))
	})
}
