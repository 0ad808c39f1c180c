package audio

import (
	"sync"
	"time"
)

// rampGain is the MixEngine's Gain: a mutex-guarded value with optional
// linear ramps. Value() is sampled once per 20ms mix frame, which is fine
// grained enough for fade-ins without per-sample interpolation.
type rampGain struct {
	mu        sync.Mutex
	value     float64
	rampFrom  float64
	rampTo    float64
	rampStart time.Time
	rampEnd   time.Time
}

func newRampGain(initial float64) *rampGain {
	return &rampGain{value: initial}
}

func (g *rampGain) Set(v float64) {
	g.mu.Lock()
	g.value = v
	g.rampEnd = time.Time{} // cancel any ramp in flight
	g.mu.Unlock()
}

func (g *rampGain) Ramp(target float64, over time.Duration) {
	if over <= 0 {
		g.Set(target)
		return
	}
	now := time.Now()
	g.mu.Lock()
	g.rampFrom = g.currentLocked(now)
	g.rampTo = target
	g.rampStart = now
	g.rampEnd = now.Add(over)
	g.mu.Unlock()
}

func (g *rampGain) Value() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentLocked(time.Now())
}

// currentLocked resolves the ramp at the given instant. A finished ramp
// collapses into the plain value.
func (g *rampGain) currentLocked(now time.Time) float64 {
	if g.rampEnd.IsZero() {
		return g.value
	}
	if !now.Before(g.rampEnd) {
		g.value = g.rampTo
		g.rampEnd = time.Time{}
		return g.value
	}
	progress := float64(now.Sub(g.rampStart)) / float64(g.rampEnd.Sub(g.rampStart))
	g.value = g.rampFrom + (g.rampTo-g.rampFrom)*progress
	return g.value
}

// clipSample clamps a mixed float sample to the int16 range.
func clipSample(v float64) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
