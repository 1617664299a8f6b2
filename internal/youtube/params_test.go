package youtube

import (
	"strings"
	"testing"
)

func TestExtractVideoID(t *testing.T) {
	cases := []struct {
		src  string
		want VideoID
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/live/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ?rel=0", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=short", ""},
		{"https://example.com/video.mp4", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := ExtractVideoID(c.src); got != c.want {
			t.Errorf("ExtractVideoID(%q) = %q, want %q", c.src, got, c.want)
		}
	}
}

func TestOrigin(t *testing.T) {
	if got := Origin(false); got != "https://www.youtube.com" {
		t.Errorf("Origin(false) = %q", got)
	}
	if got := Origin(true); got != "https://www.youtube-nocookie.com" {
		t.Errorf("Origin(true) = %q", got)
	}
}

func TestEmbedURL(t *testing.T) {
	params := EmbedParams{
		Controls:        true,
		AllowFullscreen: true,
		SuppressRelated: true,
		Language:        "en",
		Color:           "white",
	}
	url := EmbedURL(Origin(false), "dQw4w9WgXcQ", params)

	if !strings.HasPrefix(url, "https://www.youtube.com/embed/dQw4w9WgXcQ?") {
		t.Fatalf("unexpected embed URL prefix: %s", url)
	}
	for _, want := range []string{"enablejsapi=1", "controls=1", "fs=1", "rel=0", "hl=en", "color=white", "autoplay=0", "mute=0"} {
		if !strings.Contains(url, want) {
			t.Errorf("embed URL missing %q: %s", want, url)
		}
	}
}

func TestEmbedURL_emptyID(t *testing.T) {
	if url := EmbedURL(Origin(false), "", EmbedParams{}); url != "" {
		t.Errorf("empty identifier should produce no URL, got %q", url)
	}
}

func TestEmbedParams_captions(t *testing.T) {
	q := EmbedParams{CaptionLanguage: "de", ForceCaptions: true}.Query()
	if !strings.Contains(q, "cc_lang_pref=de") || !strings.Contains(q, "cc_load_policy=1") {
		t.Errorf("caption params missing: %s", q)
	}

	q = EmbedParams{}.Query()
	if strings.Contains(q, "cc_lang_pref") || strings.Contains(q, "cc_load_policy") {
		t.Errorf("caption params should be omitted by default: %s", q)
	}
}
