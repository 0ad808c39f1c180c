package audio

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// pcmBuffer is the MixEngine's Buffer: decoded interleaved stereo samples.
type pcmBuffer struct {
	samples []int16
}

func (b *pcmBuffer) Duration() time.Duration {
	perChannel := len(b.samples) / Channels
	return time.Duration(perChannel) * time.Second / SampleRate
}

// mixSource is one active playback of a pcmBuffer. pos is a fractional
// sample-frame index stepped by rate*pitch each output sample.
type mixSource struct {
	buf     *pcmBuffer
	gain    Gain
	pos     float64
	step    float64
	loop    bool
	stopped atomic.Bool
}

func (s *mixSource) Stop() {
	s.stopped.Store(true)
}

// MixEngine is a software implementation of Engine: it sums every active
// source into 20ms PCM frames at real-time rate and hands them to a
// consumer channel (typically the preview broadcaster). All source and
// gain state lives on the engine value; nothing is package-global.
type MixEngine struct {
	mu      sync.Mutex
	sources map[*mixSource]struct{}
	master  *rampGain
	frameCh chan []int16
	closed  bool
}

// NewMixEngine creates a mix engine with the given master volume.
func NewMixEngine(masterVolume float64) *MixEngine {
	return &MixEngine{
		sources: make(map[*mixSource]struct{}),
		master:  newRampGain(masterVolume),
		frameCh: make(chan []int16, 100),
	}
}

// Frames returns the channel of mixed PCM frames (20ms each).
func (e *MixEngine) Frames() <-chan []int16 {
	return e.frameCh
}

// Decode turns raw asset bytes into a PCM buffer via FFmpeg.
func (e *MixEngine) Decode(ctx context.Context, data []byte) (Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	samples, err := DecodePCM(data)
	if err != nil {
		return nil, err
	}
	return &pcmBuffer{samples: samples}, nil
}

// NewGain creates a persistent volume control usable by any source.
func (e *MixEngine) NewGain(initial float64) Gain {
	return newRampGain(initial)
}

// Master returns the engine-wide gain all sources feed through.
func (e *MixEngine) Master() Gain {
	return e.master
}

// Start begins playback of a buffer at the given offset. The returned
// source keeps playing until it runs out of samples (or forever when
// looping) or Stop is called.
func (e *MixEngine) Start(buf Buffer, p SourceParams, g Gain) (Source, error) {
	pcm, ok := buf.(*pcmBuffer)
	if !ok {
		return nil, errors.New("mix engine: foreign buffer type")
	}
	if p.Rate <= 0 || p.Pitch <= 0 {
		return nil, errors.New("mix engine: rate and pitch must be positive")
	}

	src := &mixSource{
		buf:  pcm,
		gain: g,
		pos:  p.Offset.Seconds() * SampleRate,
		step: p.Rate * p.Pitch,
		loop: p.Loop,
	}
	total := float64(len(pcm.samples) / Channels)
	if src.pos >= total {
		if !p.Loop || total == 0 {
			return nil, errors.New("mix engine: start offset past end of buffer")
		}
		for src.pos >= total {
			src.pos -= total
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, errors.New("mix engine: closed")
	}
	e.sources[src] = struct{}{}
	return src, nil
}

// Close stops every source and releases the engine. Safe to call twice.
func (e *MixEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	for src := range e.sources {
		src.stopped.Store(true)
	}
	e.sources = make(map[*mixSource]struct{})
	return nil
}

// Run emits mixed frames at real-time rate until ctx is cancelled. Frames
// are dropped rather than blocking when the consumer falls behind; the next
// tick recomputes from live state, so a dropped frame never desyncs.
func (e *MixEngine) Run(ctx context.Context) {
	defer close(e.frameCh)

	ticker := time.NewTicker(FrameDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		frame := e.MixFrame()

		select {
		case e.frameCh <- frame:
		default:
		}
	}
}

// MixFrame sums one 20ms frame across all active sources, applying each
// source's gain and the master gain, with int16 clipping. Exhausted
// sources are removed as a side effect.
func (e *MixEngine) MixFrame() []int16 {
	e.mu.Lock()
	defer e.mu.Unlock()

	mixed := make([]float64, FrameSamples)
	masterGain := e.master.Value()

	for src := range e.sources {
		if src.stopped.Load() {
			delete(e.sources, src)
			continue
		}
		gain := src.gain.Value() * masterGain
		total := float64(len(src.buf.samples) / Channels)

		for i := 0; i < FrameSize; i++ {
			if src.pos >= total {
				if !src.loop {
					src.stopped.Store(true)
					break
				}
				src.pos -= total
			}
			idx := int(src.pos) * Channels
			mixed[i*Channels] += float64(src.buf.samples[idx]) * gain
			mixed[i*Channels+1] += float64(src.buf.samples[idx+1]) * gain
			src.pos += src.step
		}

		if src.stopped.Load() {
			delete(e.sources, src)
		}
	}

	frame := make([]int16, FrameSamples)
	for i, v := range mixed {
		frame[i] = clipSample(v)
	}
	return frame
}

// ActiveSources reports how many sources are currently mixed in.
func (e *MixEngine) ActiveSources() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sources)
}
