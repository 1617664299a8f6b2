package youtube

// VideoData carries title metadata inside a status snapshot.
type VideoData struct {
	Title string `json:"title"`
}

// ProgressState is the coarse progress record inside a status snapshot.
type ProgressState struct {
	Current       float64 `json:"current"`
	SeekableStart float64 `json:"seekableStart"`
	SeekableEnd   float64 `json:"seekableEnd"`
	Loaded        float64 `json:"loaded"`
	Duration      float64 `json:"duration"`
}

// Snapshot is one inbound status message from the remote widget.
// Every field is independently optional; absence means "unchanged",
// never zero.
type Snapshot struct {
	VideoData           *VideoData     `json:"videoData,omitempty"`
	Duration            *float64       `json:"duration,omitempty"`
	PlaybackRate        *float64       `json:"playbackRate,omitempty"`
	ProgressState       *ProgressState `json:"progressState,omitempty"`
	Volume              *float64       `json:"volume,omitempty"`
	Muted               *bool          `json:"muted,omitempty"`
	PlayerState         *PlayerState   `json:"playerState,omitempty"`
	VideoLoadedFraction *float64       `json:"videoLoadedFraction,omitempty"`
}

// hasContent reports whether the snapshot carries at least one
// recognized field. Snapshots without any are ignored outright.
func (s Snapshot) hasContent() bool {
	return s.VideoData != nil ||
		s.Duration != nil ||
		s.PlaybackRate != nil ||
		s.ProgressState != nil ||
		s.Volume != nil ||
		s.Muted != nil ||
		s.PlayerState != nil ||
		s.VideoLoadedFraction != nil
}
