package composition

// ElementType tags the element union. The engine dispatches on this tag
// instead of attaching behavior to element values.
type ElementType string

const (
	ElementVideo ElementType = "video"
	ElementImage ElementType = "image"
	ElementText  ElementType = "text"
	ElementGroup ElementType = "group"
)

// Composition is a full project snapshot. It is produced by the editing
// layer and handed in whole; this engine never mutates it.
type Composition struct {
	FPS         int          `json:"fps" yaml:"fps"`
	Width       float64      `json:"width" yaml:"width"`
	Height      float64      `json:"height" yaml:"height"`
	Pages       []Page       `json:"pages" yaml:"pages"`
	AudioTracks []AudioTrack `json:"audioTracks,omitempty" yaml:"audioTracks,omitempty"`
}

// Page is one sequential timeline segment. Pages play back-to-back with
// no gap; a page spans round(durationMS/1000 * fps) frames.
type Page struct {
	ID         string    `json:"id" yaml:"id"`
	Name       string    `json:"name,omitempty" yaml:"name,omitempty"`
	DurationMS float64   `json:"duration" yaml:"duration"`
	Background string    `json:"background,omitempty" yaml:"background,omitempty"`
	Elements   []Element `json:"elements,omitempty" yaml:"elements,omitempty"`
}

// Animation is an opaque descriptor forwarded to the presentation layer.
// The engine never interpolates it.
type Animation struct {
	DurationMS float64        `json:"duration,omitempty" yaml:"duration,omitempty"`
	DelayMS    float64        `json:"delay,omitempty" yaml:"delay,omitempty"`
	Easing     string         `json:"easing,omitempty" yaml:"easing,omitempty"`
	Loop       bool           `json:"loop,omitempty" yaml:"loop,omitempty"`
	Alternate  bool           `json:"alternate,omitempty" yaml:"alternate,omitempty"`
	Properties map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// Element is the tagged union over video, image, text, and group variants.
// Left/Top are relative to the parent origin (the page, or the enclosing
// group before scaling).
type Element struct {
	Type     ElementType `json:"type" yaml:"type"`
	ID       string      `json:"id,omitempty" yaml:"id,omitempty"`
	Left     float64     `json:"left" yaml:"left"`
	Top      float64     `json:"top" yaml:"top"`
	Width    float64     `json:"width,omitempty" yaml:"width,omitempty"`
	Height   float64     `json:"height,omitempty" yaml:"height,omitempty"`
	Rotation float64     `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	Opacity  *float64    `json:"opacity,omitempty" yaml:"opacity,omitempty"`
	ZIndex   int         `json:"zIndex,omitempty" yaml:"zIndex,omitempty"`
	DelayMS  float64     `json:"delay,omitempty" yaml:"delay,omitempty"`

	Animation *Animation `json:"animation,omitempty" yaml:"animation,omitempty"`

	// video | image
	Src string `json:"src,omitempty" yaml:"src,omitempty"`

	// text
	Text       string  `json:"text,omitempty" yaml:"text,omitempty"`
	FontSize   float64 `json:"fontSize,omitempty" yaml:"fontSize,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty" yaml:"fontFamily,omitempty"`
	Color      string  `json:"color,omitempty" yaml:"color,omitempty"`
	FontWeight string  `json:"fontWeight,omitempty" yaml:"fontWeight,omitempty"`
	TextAlign  string  `json:"textAlign,omitempty" yaml:"textAlign,omitempty"`

	// group
	Children []Element `json:"elements,omitempty" yaml:"elements,omitempty"`
}

// EffectiveOpacity returns the element opacity, defaulting to 1 when the
// snapshot omits it.
func (e *Element) EffectiveOpacity() float64 {
	if e.Opacity == nil {
		return 1
	}
	return *e.Opacity
}

// AudioTrack is an independent audio layer on the composition timeline.
// Times are milliseconds; DelayMS offsets the track start within the
// composition, TrimBeforeMS/TrimAfterMS clip the source ends.
type AudioTrack struct {
	ID            string  `json:"id" yaml:"id"`
	Src           string  `json:"src" yaml:"src"`
	Volume        float64 `json:"volume" yaml:"volume"`
	TrimBeforeMS  float64 `json:"trimBefore,omitempty" yaml:"trimBefore,omitempty"`
	TrimAfterMS   float64 `json:"trimAfter,omitempty" yaml:"trimAfter,omitempty"`
	PlaybackRate  float64 `json:"playbackRate,omitempty" yaml:"playbackRate,omitempty"`
	Muted         bool    `json:"muted,omitempty" yaml:"muted,omitempty"`
	Loop          bool    `json:"loop,omitempty" yaml:"loop,omitempty"`
	ToneFrequency float64 `json:"toneFrequency,omitempty" yaml:"toneFrequency,omitempty"`
	DelayMS       float64 `json:"delay,omitempty" yaml:"delay,omitempty"`
	DurationMS    float64 `json:"duration,omitempty" yaml:"duration,omitempty"`
	FadeInMS      float64 `json:"fadeIn,omitempty" yaml:"fadeIn,omitempty"`
	FadeOutMS     float64 `json:"fadeOut,omitempty" yaml:"fadeOut,omitempty"`
}

// Rate returns the playback rate, defaulting to 1 when unset.
func (t *AudioTrack) Rate() float64 {
	if t.PlaybackRate <= 0 {
		return 1
	}
	return t.PlaybackRate
}

// Tone returns the pitch multiplier clamped to the supported 0.01..2 range,
// defaulting to 1 when unset.
func (t *AudioTrack) Tone() float64 {
	switch {
	case t.ToneFrequency == 0:
		return 1
	case t.ToneFrequency < 0.01:
		return 0.01
	case t.ToneFrequency > 2:
		return 2
	}
	return t.ToneFrequency
}

// TargetGain is the gain a track's persistent control should sit at when
// audible: 0 while muted, otherwise the authored volume.
func (t *AudioTrack) TargetGain() float64 {
	if t.Muted {
		return 0
	}
	return t.Volume
}
