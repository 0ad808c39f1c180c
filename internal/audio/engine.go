package audio

import (
	"context"
	"time"
)

// Buffer is a decoded, engine-native audio asset. Buffers are persistent:
// decoded once per track load and reused across every source started from
// them.
type Buffer interface {
	Duration() time.Duration
}

// Source is one ephemeral playback of a buffer. Stop is idempotent and
// synchronous: once it returns, the source contributes no more output.
type Source interface {
	Stop()
}

// Gain is a persistent, addressable volume control. It outlives the sources
// routed through it, so mute/volume survive pause and reschedule. Ramp
// moves the value linearly over the given span.
type Gain interface {
	Set(v float64)
	Value() float64
	Ramp(target float64, over time.Duration)
}

// SourceParams carries the per-start playback parameters for one source.
type SourceParams struct {
	Offset time.Duration // intra-source start offset (trim already applied)
	Loop   bool
	Rate   float64 // playback rate multiplier, > 0
	Pitch  float64 // tone frequency multiplier, 0.01..2
}

// Engine is the capability surface the scheduler drives. The scheduler
// never assumes a particular backend; the software MixEngine implements
// this for the preview player and tests substitute their own.
type Engine interface {
	Decode(ctx context.Context, data []byte) (Buffer, error)
	NewGain(initial float64) Gain
	Master() Gain
	Start(buf Buffer, p SourceParams, g Gain) (Source, error)
	Close() error
}
