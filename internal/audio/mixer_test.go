package audio

import (
	"testing"
	"time"
)

// constBuffer builds a stereo buffer holding the same sample value for the
// given number of 20ms frames.
func constBuffer(frames int, value int16) *pcmBuffer {
	samples := make([]int16, frames*FrameSamples)
	for i := range samples {
		samples[i] = value
	}
	return &pcmBuffer{samples: samples}
}

func TestPCMBufferDuration(t *testing.T) {
	buf := constBuffer(50, 0) // 50 frames of 20ms
	if got := buf.Duration(); got != time.Second {
		t.Errorf("Duration = %v, want 1s", got)
	}
	empty := &pcmBuffer{}
	if got := empty.Duration(); got != 0 {
		t.Errorf("empty Duration = %v, want 0", got)
	}
}

func TestMixFrameAppliesGains(t *testing.T) {
	e := NewMixEngine(0.5)
	buf := constBuffer(10, 1000)

	g := e.NewGain(0.8)
	if _, err := e.Start(buf, SourceParams{Rate: 1, Pitch: 1}, g); err != nil {
		t.Fatalf("start: %v", err)
	}

	frame := e.MixFrame()
	// 1000 * 0.8 source gain * 0.5 master = 400
	if frame[0] != 400 || frame[1] != 400 {
		t.Errorf("mixed sample = (%d,%d), want (400,400)", frame[0], frame[1])
	}
}

func TestMixFrameSumsSourcesAndClips(t *testing.T) {
	e := NewMixEngine(1)
	unity := e.NewGain(1)

	for i := 0; i < 3; i++ {
		if _, err := e.Start(constBuffer(10, 20000), SourceParams{Rate: 1, Pitch: 1}, unity); err != nil {
			t.Fatalf("start %d: %v", i, err)
		}
	}

	frame := e.MixFrame()
	// 3*20000 = 60000, clipped to the int16 ceiling
	if frame[0] != 32767 {
		t.Errorf("clipped sample = %d, want 32767", frame[0])
	}
}

func TestSourceExhaustionRemovesIt(t *testing.T) {
	e := NewMixEngine(1)
	buf := constBuffer(1, 500) // exactly one frame of audio

	if _, err := e.Start(buf, SourceParams{Rate: 1, Pitch: 1}, e.NewGain(1)); err != nil {
		t.Fatalf("start: %v", err)
	}

	first := e.MixFrame()
	if first[0] != 500 {
		t.Errorf("first frame sample = %d, want 500", first[0])
	}

	second := e.MixFrame()
	if second[0] != 0 {
		t.Errorf("post-exhaustion sample = %d, want silence", second[0])
	}
	if n := e.ActiveSources(); n != 0 {
		t.Errorf("sources after exhaustion = %d, want 0", n)
	}
}

func TestLoopingSourceWraps(t *testing.T) {
	e := NewMixEngine(1)
	buf := constBuffer(1, 700)

	src, err := e.Start(buf, SourceParams{Loop: true, Rate: 1, Pitch: 1}, e.NewGain(1))
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	for i := 0; i < 5; i++ {
		frame := e.MixFrame()
		if frame[0] != 700 {
			t.Fatalf("loop pass %d sample = %d, want 700", i, frame[0])
		}
	}
	if e.ActiveSources() != 1 {
		t.Error("looping source dropped")
	}
	src.Stop()
	e.MixFrame()
	if e.ActiveSources() != 0 {
		t.Error("stopped source not removed")
	}
}

func TestStartOffset(t *testing.T) {
	// first half 100s, second half 900s
	buf := constBuffer(2, 0)
	for i := 0; i < FrameSamples; i++ {
		buf.samples[i] = 100
	}
	for i := FrameSamples; i < 2*FrameSamples; i++ {
		buf.samples[i] = 900
	}

	e := NewMixEngine(1)
	if _, err := e.Start(buf, SourceParams{Offset: FrameDuration, Rate: 1, Pitch: 1}, e.NewGain(1)); err != nil {
		t.Fatalf("start: %v", err)
	}
	frame := e.MixFrame()
	if frame[0] != 900 {
		t.Errorf("offset start sample = %d, want 900", frame[0])
	}
}

func TestStartOffsetPastEnd(t *testing.T) {
	e := NewMixEngine(1)
	buf := constBuffer(1, 100) // 20ms

	if _, err := e.Start(buf, SourceParams{Offset: time.Second, Rate: 1, Pitch: 1}, e.NewGain(1)); err == nil {
		t.Error("offset past end must error for non-looping sources")
	}

	// a looping source wraps the offset instead
	if _, err := e.Start(buf, SourceParams{Offset: time.Second, Loop: true, Rate: 1, Pitch: 1}, e.NewGain(1)); err != nil {
		t.Errorf("looping offset wrap: %v", err)
	}
}

func TestStartRejectsBadParams(t *testing.T) {
	e := NewMixEngine(1)
	buf := constBuffer(10, 0)
	g := e.NewGain(1)

	if _, err := e.Start(buf, SourceParams{Rate: 0, Pitch: 1}, g); err == nil {
		t.Error("zero rate accepted")
	}
	if _, err := e.Start(buf, SourceParams{Rate: 1, Pitch: -1}, g); err == nil {
		t.Error("negative pitch accepted")
	}
}

func TestFasterRateConsumesMoreBuffer(t *testing.T) {
	e := NewMixEngine(1)
	buf := constBuffer(2, 300) // 40ms of audio

	if _, err := e.Start(buf, SourceParams{Rate: 2, Pitch: 1}, e.NewGain(1)); err != nil {
		t.Fatalf("start: %v", err)
	}

	// at 2x the 40ms buffer is exhausted after one 20ms frame
	e.MixFrame()
	second := e.MixFrame()
	if second[0] != 0 {
		t.Errorf("second frame sample = %d, want silence", second[0])
	}
	if n := e.ActiveSources(); n != 0 {
		t.Errorf("sources after 2x playback = %d, want 0", n)
	}
}

func TestEngineClose(t *testing.T) {
	e := NewMixEngine(1)
	buf := constBuffer(10, 100)
	src, err := e.Start(buf, SourceParams{Loop: true, Rate: 1, Pitch: 1}, e.NewGain(1))
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := e.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if e.ActiveSources() != 0 {
		t.Error("sources survive Close")
	}
	if _, err := e.Start(buf, SourceParams{Rate: 1, Pitch: 1}, e.NewGain(1)); err == nil {
		t.Error("start after close accepted")
	}
	src.Stop() // must not panic after close
}
