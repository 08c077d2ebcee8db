package composition

import (
	"fmt"
	"sort"
	"strings"

	"github.com/CarsonHerness/ctcsound-Example/internal/duration"
	apperrors "github.com/CarsonHerness/ctcsound-Example/internal/errors"
	"github.com/CarsonHerness/ctcsound-Example/internal/frequency"
	"github.com/CarsonHerness/ctcsound-Example/internal/orchestra"
	"github.com/CarsonHerness/ctcsound-Example/internal/pitch"
)

// PresetOptions tunes the built-in voice sets.
type PresetOptions struct {
	ThunderSample string
}

// Preset returns the voices of a named arrangement.
type Preset func(opts PresetOptions) []Voice

var presets = map[string]Preset{
	"pop":    Pop,
	"sparse": Sparse,
}

// PresetNames lists the registered presets.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PresetByName looks up a preset.
func PresetByName(name string) (Preset, error) {
	p, ok := presets[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", apperrors.ErrUnknownPreset, name, strings.Join(PresetNames(), ", "))
	}
	return p, nil
}

// Pop is a tone melody from A3, a drum part, a piano part from C3 and four
// thunder strikes.
func Pop(opts PresetOptions) []Voice {
	return []Voice{
		{
			Kind:          KindTonal,
			Instrument:    orchestra.Tone(orchestra.ToneNumber),
			StartNote:     "A3",
			StartDuration: duration.DefaultStart,
			Durations:     duration.Uniform(),
			Amplitude:     1,
		},
		{
			Kind:          KindPercussive,
			Instrument:    orchestra.Drum(orchestra.DrumNumber),
			StartDuration: duration.DefaultStart,
			Durations:     duration.ShortFavoring(),
			Amplitude:     0.05,
		},
		{
			Kind:          KindTonal,
			Instrument:    orchestra.Piano(orchestra.PianoNumber),
			StartNote:     "C3",
			StartDuration: duration.DefaultStart,
			Durations:     duration.LongFavoring(),
			Amplitude:     1,
		},
		{
			Kind:       KindOneShot,
			Instrument: orchestra.Thunder(orchestra.ThunderNumber, opts.ThunderSample),
			Count:      4,
			Length:     4,
		},
	}
}

// Sparse is a single slow piano line over a quiet drum part.
func Sparse(opts PresetOptions) []Voice {
	return []Voice{
		{
			Kind:          KindTonal,
			Instrument:    orchestra.Piano(orchestra.PianoNumber),
			StartNote:     "C3",
			StartDuration: duration.Quarter,
			Durations:     duration.LongFavoring(),
			Amplitude:     0.8,
		},
		{
			Kind:          KindPercussive,
			Instrument:    orchestra.Drum(orchestra.DrumNumber),
			StartDuration: duration.Quarter,
			Durations:     duration.LongFavoring(),
			Amplitude:     0.03,
		},
	}
}

// FromPreset returns a Builder for the named preset using the default
// orchestra settings, with reverb enabled.
func FromPreset(name string, pitches *pitch.Table, freqs *frequency.Resolver, opts PresetOptions) (*Builder, error) {
	preset, err := PresetByName(name)
	if err != nil {
		return nil, err
	}
	return &Builder{
		Settings:     orchestra.DefaultSettings(),
		Pitches:      pitches,
		Frequencies:  freqs,
		Voices:       preset(opts),
		Reverb:       true,
		ReverbNumber: orchestra.ReverbNumber,
	}, nil
}
