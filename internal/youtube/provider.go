package youtube

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Default timing constants. The seek-settle and threshold values encode
// observed behavior of the remote widget; see the notes in reconciler.go
// before changing them.
const (
	DefaultOpTimeout       = 3 * time.Second
	DefaultSeekSettleDelay = 500 * time.Millisecond
	DefaultListeningDelay  = 500 * time.Millisecond

	// seekThreshold is the timeline divergence, in seconds, beyond
	// which a reported position is treated as a seek rather than
	// normal playback advance.
	seekThreshold = 1.0
)

var (
	// ErrPlayTimeout is returned when no state snapshot confirms a
	// play intent within the timeout window.
	ErrPlayTimeout = errors.New("play request timed out")

	// ErrPauseTimeout is the pause counterpart of ErrPlayTimeout.
	ErrPauseTimeout = errors.New("pause request timed out")

	// ErrSessionClosed is returned for operations interrupted by a
	// source change or teardown.
	ErrSessionClosed = errors.New("playback session closed")
)

type opKind string

const (
	opPlay  opKind = "play"
	opPause opKind = "pause"
)

// pendingOp is one in-flight play or pause intent, awaiting inferred
// confirmation from a status snapshot or a timeout.
type pendingOp struct {
	done  chan struct{}
	err   error
	timer *time.Timer
}

// Options configures a Provider. Transport is required; everything else
// has sensible defaults.
type Options struct {
	Transport Transport
	Sink      Sink
	Posters   *PosterResolver
	Logger    *slog.Logger

	Privacy         bool   // use the cookie-free embed origin
	Language        string // interface language, default "en"
	CaptionLanguage string
	ForceCaptions   bool
	HideControls    bool
	Autoplay        bool
	StartMuted      bool
	Playsinline     bool

	// Timing overrides, zero means default.
	OpTimeout       time.Duration
	SeekSettleDelay time.Duration
	ListeningDelay  time.Duration
}

// Provider drives one embedded remote player through asynchronous
// message passing and presents its behavior as deterministic semantic
// events and awaitable play/pause operations.
//
// All mutation happens under a single mutex; events are emitted
// synchronously in a fixed order while it is held. Timer callbacks
// re-enter through the mutex and are generation-tagged so that work
// belonging to a replaced session is discarded.
type Provider struct {
	opts Options
	log  *slog.Logger

	mu         sync.Mutex
	generation uint64
	videoID    VideoID

	// Intended local state, owned by the caller via setters.
	intendedVolume float64
	intendedMuted  bool
	intendedRate   float64

	// paused gates the pending-operation tracker. It starts true and
	// flips on inferred play/pause transitions.
	paused bool

	// Last-announced values; snapshots are diffed against these, so
	// duplicate snapshots are silent no-ops.
	title       string
	duration    float64
	rate        float64
	state       PlayerState
	currentTime float64
	playedMark  float64

	seeking   bool
	seekTimer *time.Timer

	pending      map[opKind]*pendingOp
	posterCancel context.CancelFunc
}

// NewProvider returns a Provider wired to the given transport and sink.
func NewProvider(opts Options) *Provider {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Language == "" {
		opts.Language = "en"
	}
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = DefaultOpTimeout
	}
	if opts.SeekSettleDelay <= 0 {
		opts.SeekSettleDelay = DefaultSeekSettleDelay
	}
	if opts.ListeningDelay <= 0 {
		opts.ListeningDelay = DefaultListeningDelay
	}
	p := &Provider{
		opts:           opts,
		log:            opts.Logger,
		intendedVolume: 1,
		intendedRate:   1,
		pending:        make(map[opKind]*pendingOp),
	}
	p.resetSessionLocked()
	return p
}

// VideoID returns the identifier of the currently loaded source, or ""
// when no source is loaded.
func (p *Provider) VideoID() VideoID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.videoID
}

// Load replaces the current source. It extracts the video identifier,
// resets all session state, announces the new embed URL via a
// src-change event (empty URL tears the embed down), and kicks off
// poster resolution. It returns the embed URL.
func (p *Provider) Load(sourceURL string) string {
	p.mu.Lock()

	id := ExtractVideoID(sourceURL)
	p.invalidateLocked()
	p.resetSessionLocked()
	p.videoID = id

	if id == "" {
		p.emit(Event{Type: EventSrcChange})
		p.mu.Unlock()
		return ""
	}

	src := EmbedURL(Origin(p.opts.Privacy), id, p.buildParamsLocked())
	p.emit(Event{Type: EventSrcChange, Src: src})
	p.log.Debug("source loaded", slog.String("video_id", string(id)))

	if p.opts.Posters != nil {
		if url, ok := p.opts.Posters.Cached(id); ok {
			p.emit(Event{Type: EventPosterChange, Poster: url})
			p.mu.Unlock()
			return src
		}
		ctx, cancel := context.WithCancel(context.Background())
		p.posterCancel = cancel
		gen := p.generation
		go p.opts.Posters.Resolve(ctx, id, func(url string) {
			p.mu.Lock()
			defer p.mu.Unlock()
			if p.generation != gen {
				return
			}
			p.emit(Event{Type: EventPosterChange, Poster: url})
		})
	}
	p.mu.Unlock()
	return src
}

// Destroy tears the session down: in-flight poster probes and timers
// are invalidated and outstanding operations fail with
// ErrSessionClosed.
func (p *Provider) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.invalidateLocked()
	p.resetSessionLocked()
	p.videoID = ""
}

// EmbedLoaded tells the provider the embed document finished loading.
// The widget is not ready to receive commands immediately, so the
// listening handshake is posted after a short delay.
func (p *Provider) EmbedLoaded() {
	p.mu.Lock()
	defer p.mu.Unlock()
	gen := p.generation
	time.AfterFunc(p.opts.ListeningDelay, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.generation != gen {
			return
		}
		p.post(Message{Event: msgEventListening})
	})
}

// Play requests playback and blocks until a status snapshot confirms
// the transition, the operation times out, or ctx is cancelled.
// Calling Play while already playing resolves immediately; concurrent
// calls while a play intent is pending coalesce onto it and no second
// command is issued.
func (p *Provider) Play(ctx context.Context) error {
	return p.awaitOp(ctx, opPlay)
}

// Pause is the symmetric counterpart of Play, gated on the paused flag
// being currently false.
func (p *Provider) Pause(ctx context.Context) error {
	return p.awaitOp(ctx, opPause)
}

func (p *Provider) awaitOp(ctx context.Context, kind opKind) error {
	p.mu.Lock()
	if satisfied := (kind == opPlay && !p.paused) || (kind == opPause && p.paused); satisfied {
		p.mu.Unlock()
		return nil
	}
	op, ok := p.pending[kind]
	if !ok {
		op = p.armPendingLocked(kind)
		if kind == opPlay {
			p.post(commandMessage(cmdPlay))
		} else {
			p.post(commandMessage(cmdPause))
		}
	}
	p.mu.Unlock()

	select {
	case <-op.done:
		return op.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// armPendingLocked creates the single pending operation for kind with a
// timeout that converts silence into a failure. The timer never
// panics; it settles the awaited result instead.
func (p *Provider) armPendingLocked(kind opKind) *pendingOp {
	op := &pendingOp{done: make(chan struct{})}
	gen := p.generation
	op.timer = time.AfterFunc(p.opts.OpTimeout, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.generation != gen || p.pending[kind] != op {
			return
		}
		delete(p.pending, kind)
		if kind == opPlay && p.paused {
			op.err = ErrPlayTimeout
		} else if kind == opPause && !p.paused {
			op.err = ErrPauseTimeout
		}
		close(op.done)
		p.log.Debug("pending operation timed out", slog.String("op", string(kind)))
	})
	p.pending[kind] = op
	return op
}

// resolvePendingLocked settles the pending operation for kind, clearing
// the slot before any further events are emitted so a second resolution
// cannot race in.
func (p *Provider) resolvePendingLocked(kind opKind, err error) {
	op, ok := p.pending[kind]
	if !ok {
		return
	}
	delete(p.pending, kind)
	op.timer.Stop()
	op.err = err
	close(op.done)
}

// Seek asks the remote widget to jump to t seconds. Completion is
// observed through the snapshot heuristics, not acknowledged.
func (p *Provider) Seek(t float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.post(commandMessage(cmdSeekTo, t))
}

// SetVolume sets the intended volume as a [0,1] fraction and forwards
// it to the widget, which takes a percentage.
func (p *Provider) SetVolume(v float64) {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.intendedVolume = v
	p.post(commandMessage(cmdVolume, v*100))
}

// SetMuted sets the intended muted flag and forwards it.
func (p *Provider) SetMuted(muted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.intendedMuted = muted
	if muted {
		p.post(commandMessage(cmdMute))
	} else {
		p.post(commandMessage(cmdUnmute))
	}
}

// SetRate sets the intended playback rate and forwards it. The change
// is announced only once a snapshot reports it back.
func (p *Provider) SetRate(rate float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.intendedRate = rate
	p.post(commandMessage(cmdSetRate, rate))
}

// buildParamsLocked regenerates the immutable embed parameter set from
// caller options and the intended state at this moment.
func (p *Provider) buildParamsLocked() EmbedParams {
	return EmbedParams{
		Autoplay:        p.opts.Autoplay,
		Muted:           p.opts.StartMuted || p.intendedMuted,
		Playsinline:     p.opts.Playsinline,
		Controls:        !p.opts.HideControls,
		DisableKeyboard: p.opts.HideControls,
		AllowFullscreen: true,
		SuppressRelated: true,
		Color:           "white",
		Language:        p.opts.Language,
		CaptionLanguage: p.opts.CaptionLanguage,
		ForceCaptions:   p.opts.ForceCaptions,
	}
}

// invalidateLocked bumps the session generation and cancels every unit
// of asynchronous work tagged with the old one: poster probes, the
// seek-settle timer, operation timeouts. Outstanding operations fail
// with ErrSessionClosed rather than dangling.
func (p *Provider) invalidateLocked() {
	p.generation++
	for kind := range p.pending {
		p.resolvePendingLocked(kind, ErrSessionClosed)
	}
	if p.seekTimer != nil {
		p.seekTimer.Stop()
		p.seekTimer = nil
	}
	if p.posterCancel != nil {
		p.posterCancel()
		p.posterCancel = nil
	}
}

// resetSessionLocked restores the per-source reconciliation state to
// its initial values.
func (p *Provider) resetSessionLocked() {
	p.paused = true
	p.title = ""
	p.duration = 0
	p.rate = 1
	p.state = StateUnstarted
	p.currentTime = 0
	p.playedMark = 0
	p.seeking = false
}

// post submits a message to the transport. Delivery failures are
// logged, never surfaced: command issuance and effect observation are
// fully decoupled.
func (p *Provider) post(msg Message) {
	if p.opts.Transport == nil {
		return
	}
	if err := p.opts.Transport.PostMessage(msg); err != nil {
		p.log.Warn("post message failed",
			slog.String("event", msg.Event),
			slog.String("func", msg.Func),
			slog.String("error", err.Error()))
	}
}

func (p *Provider) emit(ev Event) {
	if p.opts.Sink == nil {
		return
	}
	p.opts.Sink.OnEvent(ev)
}
