package composition

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ReadFile loads a composition snapshot from a JSON or YAML file, chosen by
// extension. Missing per-track defaults (volume, rate) are normalized so the
// rest of the engine never sees zero values for them.
func ReadFile(path string) (*Composition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var comp Composition
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &comp)
	default:
		err = json.Unmarshal(data, &comp)
	}
	if err != nil {
		return nil, fmt.Errorf("parse composition %s: %w", path, err)
	}

	normalize(&comp)
	return &comp, nil
}

// WriteFile saves a composition snapshot, format chosen by extension.
func WriteFile(comp *Composition, path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(comp)
	default:
		data, err = json.MarshalIndent(comp, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func normalize(comp *Composition) {
	for i := range comp.AudioTracks {
		t := &comp.AudioTracks[i]
		if t.PlaybackRate == 0 {
			t.PlaybackRate = 1
		}
		if t.ToneFrequency == 0 {
			t.ToneFrequency = 1
		}
	}
}
