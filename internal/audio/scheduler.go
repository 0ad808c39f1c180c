package audio

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/clipmill/clipmill/internal/composition"
)

// State is the scheduler lifecycle phase. Idle and Loaded schedule
// identically; the split only records whether any buffer has been decoded.
type State int

const (
	StateIdle State = iota
	StateLoaded
	StatePlaying
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoaded:
		return "loaded"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Scheduler decides which audio tracks must be audibly playing for the
// current transport position and drives the engine accordingly. It owns
// three maps keyed by track id: decoded buffers (persistent, set once per
// load), active sources (ephemeral, present only while audible), and
// persistent gain controls that survive pause and reschedule.
//
// Transport methods (Play/Pause/SeekTo/SyncToFrame) must be called from one
// logical owner; the mutex protects the live controls, not concurrent
// transports.
type Scheduler struct {
	engine Engine

	mu      sync.Mutex
	state   State
	buffers map[string]Buffer
	sources map[string]Source
	gains   map[string]Gain
	tracks  map[string]composition.AudioTrack

	positionSec   float64 // transport position, seconds
	lastSyncFrame int
}

// NewScheduler creates a scheduler over the given engine.
func NewScheduler(engine Engine) *Scheduler {
	return &Scheduler{
		engine:        engine,
		state:         StateIdle,
		buffers:       make(map[string]Buffer),
		sources:       make(map[string]Source),
		gains:         make(map[string]Gain),
		tracks:        make(map[string]composition.AudioTrack),
		lastSyncFrame: -1,
	}
}

// State returns the current lifecycle phase.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Position returns the transport position in seconds.
func (s *Scheduler) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.positionSec
}

// Load decodes one track's asset into an engine buffer and sets up its
// persistent gain control. A failed decode leaves the track absent from
// later scheduling and never affects other tracks.
func (s *Scheduler) Load(ctx context.Context, track composition.AudioTrack, data []byte) error {
	buf, err := s.engine.Decode(ctx, data)
	if err != nil {
		log.Printf("audio: decode failed for track %s: %v", track.ID, err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffers[track.ID] = buf
	s.tracks[track.ID] = track
	if _, ok := s.gains[track.ID]; !ok {
		s.gains[track.ID] = s.engine.NewGain(track.TargetGain())
	}
	if s.state == StateIdle {
		s.state = StateLoaded
	}
	return nil
}

// Play records the transport origin and starts every loaded track whose
// window contains the new position.
func (s *Scheduler) Play(frame, fps int) {
	if fps <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.positionSec = float64(frame) / float64(fps)
	s.lastSyncFrame = frame
	s.state = StatePlaying
	s.scheduleAllLocked()
}

// Pause stops every active source and retains the transport position. The
// ephemeral source handles are discarded; buffers and gain controls stay.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopAllLocked()
	if s.state == StatePlaying {
		s.state = StatePaused
	}
}

// SeekTo stops all active sources and moves the transport. When playing,
// it immediately reschedules from the new position; paused transports just
// adopt the position. All sources are fully stopped before return.
func (s *Scheduler) SeekTo(frame, fps int) {
	if fps <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopAllLocked()
	s.positionSec = float64(frame) / float64(fps)
	s.lastSyncFrame = frame
	if s.state == StatePlaying {
		s.scheduleAllLocked()
	}
}

// SyncToFrame reconciles the active-source set against the desired set for
// the given frame. It recomputes from scratch each call, so it tolerates
// being invoked late or skipped. Sub-frame jitter is ignored: deltas below
// max(1, round(fps*0.05)) frames since the last call are a no-op.
func (s *Scheduler) SyncToFrame(frame, fps int, tracks []composition.AudioTrack) {
	if fps <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePlaying {
		return
	}

	minDelta := int(math.Round(float64(fps) * 0.05))
	if minDelta < 1 {
		minDelta = 1
	}
	delta := frame - s.lastSyncFrame
	if delta < 0 {
		delta = -delta
	}
	if s.lastSyncFrame >= 0 && delta < minDelta {
		return
	}

	s.lastSyncFrame = frame
	s.positionSec = float64(frame) / float64(fps)

	// Fresh track snapshot: the host may have edited volumes or windows.
	inSnapshot := make(map[string]struct{}, len(tracks))
	for _, t := range tracks {
		inSnapshot[t.ID] = struct{}{}
		s.tracks[t.ID] = t
	}

	nowMS := s.positionSec * 1000
	for id, track := range s.tracks {
		_, active := s.sources[id]
		if _, present := inSnapshot[id]; !present {
			// Track removed from the composition: silence it.
			if active {
				s.stopTrackLocked(id)
			}
			continue
		}
		should := s.shouldPlayLocked(&track, nowMS)
		switch {
		case should && !active:
			s.startTrackLocked(&track, nowMS)
		case !should && active:
			s.stopTrackLocked(id)
		}
	}
}

// SetTrackVolume updates a track's persistent gain. Valid in any state and
// independent of whether the track currently has a source.
func (s *Scheduler) SetTrackVolume(id string, volume float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	track, ok := s.tracks[id]
	if !ok {
		return
	}
	track.Volume = volume
	s.tracks[id] = track
	if g, ok := s.gains[id]; ok && !track.Muted {
		g.Set(volume)
	}
}

// SetTrackMuted toggles a track's mute without touching its source. The
// gain control keeps the authored volume and restores it on unmute.
func (s *Scheduler) SetTrackMuted(id string, muted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	track, ok := s.tracks[id]
	if !ok {
		return
	}
	track.Muted = muted
	s.tracks[id] = track
	if g, ok := s.gains[id]; ok {
		g.Set(track.TargetGain())
	}
}

// SetMasterVolume adjusts the composition-wide gain all tracks feed into.
func (s *Scheduler) SetMasterVolume(volume float64) {
	s.engine.Master().Set(volume)
}

// Cleanup stops all sources, releases all buffers and gain controls, and
// closes the engine. Safe from any state, including before any load.
func (s *Scheduler) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopAllLocked()
	s.buffers = make(map[string]Buffer)
	s.gains = make(map[string]Gain)
	s.tracks = make(map[string]composition.AudioTrack)
	s.state = StateIdle
	if err := s.engine.Close(); err != nil {
		log.Printf("audio: engine close: %v", err)
	}
}

// effectiveDurationMS resolves a track's playable span on the timeline.
// An authored duration is authoritative; otherwise the span derives from
// the buffer length minus trims, stretched by the playback rate. Looping
// tracks without an authored duration play until the transport leaves them.
func (s *Scheduler) effectiveDurationMS(track *composition.AudioTrack) float64 {
	if track.DurationMS > 0 {
		return track.DurationMS
	}
	buf, ok := s.buffers[track.ID]
	if !ok {
		return 0
	}
	if track.Loop {
		return math.Inf(1)
	}
	sourceMS := buf.Duration().Seconds() * 1000
	remaining := sourceMS - track.TrimBeforeMS - track.TrimAfterMS
	if remaining <= 0 {
		return 0
	}
	return remaining / track.Rate()
}

// shouldPlayLocked reports whether the track window [delay, delay+duration)
// contains the transport instant. The end boundary is exclusive: a 2000ms
// track at fps 30 is audible for frames 0..59 and silent at frame 60.
func (s *Scheduler) shouldPlayLocked(track *composition.AudioTrack, nowMS float64) bool {
	if _, loaded := s.buffers[track.ID]; !loaded {
		return false
	}
	start := track.DelayMS
	return nowMS >= start && nowMS < start+s.effectiveDurationMS(track)
}

// scheduleAllLocked starts every loaded track whose window contains the
// current position. Callers hold the mutex.
func (s *Scheduler) scheduleAllLocked() {
	nowMS := s.positionSec * 1000
	for id, track := range s.tracks {
		if _, active := s.sources[id]; active {
			continue
		}
		if s.shouldPlayLocked(&track, nowMS) {
			s.startTrackLocked(&track, nowMS)
		}
	}
}

// startTrackLocked starts one source at the correct intra-track offset and
// arms the fade-in ramp when the offset lands inside the fade window. A
// rejected start is logged and leaves no active-source entry, so a later
// sync can retry cleanly.
func (s *Scheduler) startTrackLocked(track *composition.AudioTrack, nowMS float64) {
	buf, ok := s.buffers[track.ID]
	if !ok {
		return
	}
	gain, ok := s.gains[track.ID]
	if !ok {
		gain = s.engine.NewGain(track.TargetGain())
		s.gains[track.ID] = gain
	}

	elapsedMS := nowMS - track.DelayMS
	if elapsedMS < 0 {
		elapsedMS = 0
	}
	offsetMS := track.TrimBeforeMS + elapsedMS

	target := track.TargetGain()
	if !track.Muted && track.FadeInMS > 0 && elapsedMS < track.FadeInMS {
		gain.Set(0)
		gain.Ramp(target, time.Duration(track.FadeInMS-elapsedMS)*time.Millisecond)
	} else {
		gain.Set(target)
	}

	src, err := s.engine.Start(buf, SourceParams{
		Offset: time.Duration(offsetMS) * time.Millisecond,
		Loop:   track.Loop,
		Rate:   track.Rate(),
		Pitch:  track.Tone(),
	}, gain)
	if err != nil {
		log.Printf("audio: start failed for track %s: %v", track.ID, err)
		delete(s.sources, track.ID)
		return
	}
	s.sources[track.ID] = src
}

func (s *Scheduler) stopTrackLocked(id string) {
	if src, ok := s.sources[id]; ok {
		src.Stop()
		delete(s.sources, id)
	}
}

func (s *Scheduler) stopAllLocked() {
	for id, src := range s.sources {
		src.Stop()
		delete(s.sources, id)
	}
}

// ActiveTracks returns the ids of tracks with a live source, for status
// reporting.
func (s *Scheduler) ActiveTracks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.sources))
	for id := range s.sources {
		ids = append(ids, id)
	}
	return ids
}
