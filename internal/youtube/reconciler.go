package youtube

import (
	"log/slog"
	"math"
	"time"
)

// HandleSnapshot ingests one inbound status snapshot, diffs it against
// the last-announced state, and emits the resulting semantic events in
// a fixed order: title, duration, rate, progress record, volume, state
// code. Within one snapshot the order is part of the contract; callers
// may rely on duration-change following any progress event it implied.
//
// A snapshot with no recognized field is ignored outright.
func (p *Provider) HandleSnapshot(s Snapshot) {
	if !s.hasContent() {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if s.VideoData != nil && s.VideoData.Title != p.title {
		p.title = s.VideoData.Title
		p.emit(Event{Type: EventTitleChange, Title: p.title})
	}

	if s.Duration != nil && *s.Duration != p.duration {
		d := *s.Duration
		if s.VideoLoadedFraction != nil {
			buffered := *s.VideoLoadedFraction * d
			if s.ProgressState != nil {
				buffered = s.ProgressState.Loaded
			}
			p.onProgress(buffered, Range{Start: 0, End: d})
		}
		p.duration = d
		p.emit(Event{Type: EventDurationChange, Duration: d})
	}

	if s.PlaybackRate != nil && *s.PlaybackRate != p.rate {
		p.rate = *s.PlaybackRate
		p.emit(Event{Type: EventRateChange, Rate: p.rate})
	}

	if ps := s.ProgressState; ps != nil {
		p.onTimeUpdate(ps.Current)
		p.onProgress(ps.Loaded, Range{Start: ps.SeekableStart, End: ps.SeekableEnd})
		if ps.Duration > 0 && ps.Duration != p.duration {
			p.duration = ps.Duration
			p.emit(Event{Type: EventDurationChange, Duration: ps.Duration})
		}
	}

	if s.Volume != nil && s.Muted != nil {
		p.emit(Event{Type: EventVolumeChange, Volume: *s.Volume / 100, Muted: *s.Muted})
	}

	if s.PlayerState != nil && *s.PlayerState != p.state {
		p.onStateChange(*s.PlayerState)
	}
}

// onProgress announces buffered and seekable bounds. A buffered amount
// overtaking the current position while a seek is in flight is the only
// signal the widget gives that the seek landed, so it doubles as the
// seeked trigger.
func (p *Provider) onProgress(buffered float64, seekable Range) {
	p.emit(Event{
		Type:     EventProgress,
		Buffered: &Range{Start: 0, End: buffered},
		Seekable: &seekable,
	})
	if p.seeking && buffered > p.currentTime {
		p.onSeeked()
	}
}

// onTimeUpdate announces the playback position and played range, and
// runs the heuristic seek detection: the widget never reports that a
// seek started, so a position diverging from the known time by more
// than seekThreshold is the sole indicator.
func (p *Provider) onTimeUpdate(raw float64) {
	t := raw
	// Ended snapshots may report a stale position.
	if p.state == StateEnded && p.duration > 0 {
		t = math.Min(t, p.duration)
	}

	// The played mark is a monotonic high-water: a regression reports
	// the previous span instead of shrinking it.
	var played Range
	if t < p.playedMark {
		played = Range{Start: 0, End: p.playedMark}
	} else {
		p.playedMark = t
		played = Range{Start: 0, End: t}
	}
	p.emit(Event{Type: EventTimeUpdate, CurrentTime: t, Played: &played})

	if !p.seeking && math.Abs(t-p.currentTime) > seekThreshold {
		p.seeking = true
		p.emit(Event{Type: EventSeeking, CurrentTime: t})
	}
	p.currentTime = t
}

// onStateChange interprets a new discrete state code. Buffering while
// locally paused counts as an early play signal so the play promise
// settles with minimal latency.
func (p *Provider) onStateChange(next PlayerState) {
	p.log.Debug("state change",
		slog.String("from", p.state.String()),
		slog.String("to", next.String()))

	if p.paused && (next == StateBuffering || next == StatePlaying) {
		p.resolvePendingLocked(opPlay, nil)
		p.paused = false
		p.emit(Event{Type: EventPlay})
	}
	if next == StateBuffering {
		p.emit(Event{Type: EventWaiting})
	}

	switch next {
	case StateCued:
		p.emit(Event{Type: EventProviderReady})
	case StatePlaying:
		p.emit(Event{Type: EventPlaying})
	case StatePaused:
		p.resolvePendingLocked(opPause, nil)
		p.paused = true
		p.emit(Event{Type: EventPause})
	case StateEnded:
		if p.seeking {
			p.onSeeked()
		}
		p.paused = true
		p.emit(Event{Type: EventEnd})
	}

	p.state = next
}

// onSeeked debounces seek completion. While paused the widget can
// report completion prematurely, with seeking and seeked arriving
// back-to-back and nothing to tell them apart, so the settle timer is
// re-armed on every trigger and carries a delay only in that case.
func (p *Provider) onSeeked() {
	if p.seekTimer != nil {
		p.seekTimer.Stop()
	}
	var delay time.Duration
	if p.paused {
		delay = p.opts.SeekSettleDelay
	}
	gen := p.generation
	p.seekTimer = time.AfterFunc(delay, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.generation != gen || !p.seeking {
			return
		}
		p.seeking = false
		p.emit(Event{Type: EventSeeked, CurrentTime: p.currentTime})
	})
}
