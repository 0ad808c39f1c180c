// Package player owns the playback transport: the single logical caller of
// the audio scheduler's play/pause/seek/sync methods, with the current
// frame derived from the wall clock while playing.
package player

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/clipmill/clipmill/internal/audio"
	"github.com/clipmill/clipmill/internal/composition"
	"github.com/clipmill/clipmill/internal/timeline"
)

// Status is a snapshot of the transport for the host API.
type Status struct {
	Playing     bool    `json:"playing"`
	Frame       int     `json:"frame"`
	Seconds     float64 `json:"seconds"`
	TotalFrames int     `json:"totalFrames"`
	PageIndex   int     `json:"pageIndex"`
	LocalFrame  int     `json:"localFrame"`
}

// Transport drives the audio scheduler from a periodic tick and converts
// wall-clock time into frames. Seek/Play/Pause are serialized here, which
// is the concurrency contract the scheduler requires of its caller.
type Transport struct {
	sched        *audio.Scheduler
	comp         *composition.Composition
	syncInterval time.Duration

	mu          sync.Mutex
	playing     bool
	originFrame int       // frame the transport was at when playback started
	startedAt   time.Time // wall clock at the same instant
}

// NewTransport creates a transport for one composition snapshot.
func NewTransport(sched *audio.Scheduler, comp *composition.Composition, syncInterval time.Duration) *Transport {
	if syncInterval <= 0 {
		syncInterval = 50 * time.Millisecond
	}
	return &Transport{
		sched:        sched,
		comp:         comp,
		syncInterval: syncInterval,
	}
}

// CurrentFrame derives the playhead from the wall clock, clamped to the
// composition's final frame.
func (t *Transport) CurrentFrame() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentFrameLocked()
}

func (t *Transport) currentFrameLocked() int {
	frame := t.originFrame
	if t.playing {
		elapsed := time.Since(t.startedAt).Seconds()
		frame += int(elapsed * float64(t.comp.FPS))
	}
	total := timeline.TotalFrames(t.comp.Pages, t.comp.FPS)
	if total > 0 && frame >= total {
		frame = total - 1
	}
	if frame < 0 {
		frame = 0
	}
	return frame
}

// Play starts playback from the current frame.
func (t *Transport) Play() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.playing {
		return
	}
	t.startedAt = time.Now()
	t.playing = true
	t.sched.Play(t.originFrame, t.comp.FPS)
	log.Printf("transport: play from frame %d", t.originFrame)
}

// Pause freezes the playhead and stops all audio sources.
func (t *Transport) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.playing {
		return
	}
	t.originFrame = t.currentFrameLocked()
	t.playing = false
	t.sched.Pause()
	log.Printf("transport: paused at frame %d", t.originFrame)
}

// Seek moves the playhead. While playing, audio reschedules immediately
// from the new position.
func (t *Transport) Seek(frame int) {
	if frame < 0 {
		frame = 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.originFrame = frame
	t.startedAt = time.Now()
	t.sched.SeekTo(frame, t.comp.FPS)
}

// Status reports the current playhead for the host API.
func (t *Transport) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	frame := t.currentFrameLocked()
	page, local := timeline.Locate(t.comp.Pages, t.comp.FPS, frame)
	return Status{
		Playing:     t.playing,
		Frame:       frame,
		Seconds:     float64(frame) / float64(t.comp.FPS),
		TotalFrames: timeline.TotalFrames(t.comp.Pages, t.comp.FPS),
		PageIndex:   page,
		LocalFrame:  local,
	}
}

// Run reconciles audio against the playhead on a fixed tick. Each tick
// recomputes desired state from scratch, so late or skipped ticks are
// harmless. Pauses automatically at the end of the composition.
func (t *Transport) Run(ctx context.Context) {
	ticker := time.NewTicker(t.syncInterval)
	defer ticker.Stop()

	total := timeline.TotalFrames(t.comp.Pages, t.comp.FPS)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		t.mu.Lock()
		playing := t.playing
		frame := t.currentFrameLocked()
		t.mu.Unlock()

		if !playing {
			continue
		}
		if total > 0 && frame >= total-1 {
			t.Pause()
			continue
		}
		t.sched.SyncToFrame(frame, t.comp.FPS, t.comp.AudioTracks)
	}
}
