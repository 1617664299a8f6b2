package youtube

// Command names understood by the remote widget.
const (
	cmdPlay    = "playVideo"
	cmdPause   = "pauseVideo"
	cmdSeekTo  = "seekTo"
	cmdVolume  = "setVolume"
	cmdMute    = "mute"
	cmdUnmute  = "unMute"
	cmdSetRate = "setPlaybackRate"
)

const (
	msgEventCommand   = "command"
	msgEventListening = "listening"
)

// Message is one outbound transport message. Commands are
// fire-and-forget: no acknowledgment is tied back to them, which is why
// outcomes must be inferred from later status snapshots.
type Message struct {
	Event string `json:"event"`
	Func  string `json:"func,omitempty"`
	Args  []any  `json:"args,omitempty"`
}

// Transport delivers messages to the remote widget's browsing context.
// It is supplied by the embed host; the provider never awaits a reply.
type Transport interface {
	PostMessage(Message) error
}

func commandMessage(name string, args ...any) Message {
	return Message{Event: msgEventCommand, Func: name, Args: args}
}
