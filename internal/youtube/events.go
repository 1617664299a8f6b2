package youtube

// EventType identifies a semantic playback event inferred from the
// remote widget's status messages.
type EventType string

const (
	EventTitleChange    EventType = "title-change"
	EventDurationChange EventType = "duration-change"
	EventRateChange     EventType = "rate-change"
	EventVolumeChange   EventType = "volume-change"
	EventProgress       EventType = "progress"
	EventTimeUpdate     EventType = "time-update"
	EventSeeking        EventType = "seeking"
	EventSeeked         EventType = "seeked"
	EventWaiting        EventType = "waiting"
	EventPlay           EventType = "play"
	EventPlaying        EventType = "playing"
	EventPause          EventType = "pause"
	EventEnd            EventType = "end"
	EventPosterChange   EventType = "poster-change"
	EventProviderReady  EventType = "provider-ready"
	EventSrcChange      EventType = "src-change"
)

// Range is a span on the media timeline, in seconds.
type Range struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Event is a single semantic event surfaced to the local state store.
// Only the fields relevant to Type are populated.
type Event struct {
	Type        EventType `json:"type"`
	Title       string    `json:"title,omitempty"`
	Duration    float64   `json:"duration,omitempty"`
	Rate        float64   `json:"rate,omitempty"`
	Volume      float64   `json:"volume,omitempty"`
	Muted       bool      `json:"muted,omitempty"`
	CurrentTime float64   `json:"current_time,omitempty"`
	Played      *Range    `json:"played,omitempty"`
	Buffered    *Range    `json:"buffered,omitempty"`
	Seekable    *Range    `json:"seekable,omitempty"`
	Poster      string    `json:"poster,omitempty"`
	Src         string    `json:"src,omitempty"`
}

// Sink receives events synchronously, in emission order, while the
// provider's internal lock is held. Implementations must not call back
// into the Provider from OnEvent.
type Sink interface {
	OnEvent(Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

// OnEvent implements Sink.
func (f SinkFunc) OnEvent(ev Event) { f(ev) }
