package youtube

import (
	"net/url"
	"regexp"
	"strconv"
)

// VideoID is the 11-character identifier extracted from a source URL.
// The empty string means "no source"; the embed is torn down.
type VideoID string

const (
	originStandard = "https://www.youtube.com"
	originPrivacy  = "https://www.youtube-nocookie.com"
)

// Matches watch, live, shorts, embed and youtu.be short-link forms.
var videoIDRe = regexp.MustCompile(`(?:youtu\.be|youtube|youtube\.com|youtube-nocookie\.com)/(?:(?:watch\?v=)|(?:live/)|(?:shorts/)|(?:embed/))?([A-Za-z0-9_-]{11})`)

// ExtractVideoID pulls the video identifier out of a source URL.
// Unrecognized URLs yield the empty VideoID.
func ExtractVideoID(src string) VideoID {
	m := videoIDRe.FindStringSubmatch(src)
	if m == nil {
		return ""
	}
	return VideoID(m[1])
}

// Origin returns the embed hosting origin. Privacy mode uses the
// cookie-free domain.
func Origin(privacy bool) string {
	if privacy {
		return originPrivacy
	}
	return originStandard
}

// EmbedParams is the immutable configuration baked into the embed
// document URL. A fresh value is built every time the embed is
// (re)created; it is never mutated afterwards.
type EmbedParams struct {
	Autoplay        bool   // start playback immediately
	Muted           bool   // start muted
	Playsinline     bool   // inline playback on mobile
	Controls        bool   // show the widget's own controls
	DisableKeyboard bool   // disable widget keyboard shortcuts
	AllowFullscreen bool   // permit the fullscreen button
	SuppressRelated bool   // restrict related videos to the same channel
	Color           string // progress bar theme, "red" or "white"
	Language        string // interface language (hl)
	CaptionLanguage string // preferred caption track (cc_lang_pref)
	ForceCaptions   bool   // always load captions (cc_load_policy=1)
}

// Query renders the canonical query string for the embed document URL.
// enablejsapi is always on; without it the widget posts no status
// messages and the reconciler is blind.
func (p EmbedParams) Query() string {
	v := url.Values{}
	v.Set("enablejsapi", "1")
	v.Set("autoplay", boolParam(p.Autoplay))
	v.Set("mute", boolParam(p.Muted))
	v.Set("playsinline", boolParam(p.Playsinline))
	v.Set("controls", boolParam(p.Controls))
	v.Set("disablekb", boolParam(p.DisableKeyboard))
	v.Set("fs", boolParam(p.AllowFullscreen))
	v.Set("rel", boolParam(!p.SuppressRelated))
	if p.Color != "" {
		v.Set("color", p.Color)
	}
	if p.Language != "" {
		v.Set("hl", p.Language)
	}
	if p.CaptionLanguage != "" {
		v.Set("cc_lang_pref", p.CaptionLanguage)
	}
	if p.ForceCaptions {
		v.Set("cc_load_policy", "1")
	}
	return v.Encode()
}

// EmbedURL composes the embed document URL for the given identifier.
// An empty identifier produces no URL: the embed is torn down.
func EmbedURL(origin string, id VideoID, params EmbedParams) string {
	if id == "" {
		return ""
	}
	return origin + "/embed/" + string(id) + "?" + params.Query()
}

func boolParam(b bool) string {
	return strconv.Itoa(boolToInt(b))
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
