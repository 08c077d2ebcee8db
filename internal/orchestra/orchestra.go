// Package orchestra renders Csound orchestra documents from the embedded
// instrument definitions.
package orchestra

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed instruments/*.orc
var instrumentsFS embed.FS

var templates = template.Must(template.ParseFS(instrumentsFS, "instruments/*.orc"))

// Instrument kinds, named after their template file.
const (
	KindTone    = "tone"
	KindDrum    = "drum"
	KindPiano   = "piano"
	KindThunder = "thunder"
	KindReverb  = "reverb"
)

// Default instrument numbers.
const (
	ToneNumber    = 1
	DrumNumber    = 2
	PianoNumber   = 3
	ThunderNumber = 4
	ReverbNumber  = 99
)

// DefaultSend is the share of each voice routed into the global reverb bus.
const DefaultSend = 0.1

// DefaultThunderSample is the sound file the thunder instrument plays.
const DefaultThunderSample = "thunder16.wav"

// Settings holds the orchestra header values
type Settings struct {
	SampleRate  int
	ControlRate int
	Channels    int
}

// DefaultSettings returns 44.1kHz stereo
func DefaultSettings() Settings {
	return Settings{
		SampleRate:  44100,
		ControlRate: 4400,
		Channels:    2,
	}
}

// Instrument is one instrument definition in an orchestra.
type Instrument struct {
	Kind   string
	Number int
	Send   float64 // reverb send level
	Sample string  // sound file, thunder only
}

// Tone is three stacked harmonics of p4 Hz at amplitude p5.
func Tone(number int) Instrument {
	return Instrument{Kind: KindTone, Number: number, Send: DefaultSend}
}

// Drum is a noise burst at amplitude p4.
func Drum(number int) Instrument {
	return Instrument{Kind: KindDrum, Number: number, Send: DefaultSend}
}

// Piano is a prepiano voice at p4 Hz and amplitude p5.
func Piano(number int) Instrument {
	return Instrument{Kind: KindPiano, Number: number, Send: DefaultSend}
}

// Reverb is the global reverb that drains every instrument's send.
func Reverb(number int) Instrument {
	return Instrument{Kind: KindReverb, Number: number}
}

// Thunder plays sample, or DefaultThunderSample when sample is empty.
func Thunder(number int, sample string) Instrument {
	if sample == "" {
		sample = DefaultThunderSample
	}
	return Instrument{Kind: KindThunder, Number: number, Send: DefaultSend, Sample: sample}
}

// Render returns the Csound text of the instrument.
func (i Instrument) Render() (string, error) {
	tmpl := templates.Lookup(i.Kind + ".orc")
	if tmpl == nil || i.Kind == "header" {
		return "", fmt.Errorf("unknown instrument kind %q", i.Kind)
	}
	if i.Number < 1 {
		return "", fmt.Errorf("instrument %s: invalid number %d", i.Kind, i.Number)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, i); err != nil {
		return "", fmt.Errorf("render instrument %s: %w", i.Kind, err)
	}
	return sb.String(), nil
}

// Orchestra is a header plus the instruments a score can call.
type Orchestra struct {
	Settings    Settings
	Instruments []Instrument
	Reverb      *Instrument // optional global reverb, rendered last
}

// Render concatenates the header and every instrument definition.
func (o Orchestra) Render() (string, error) {
	var sb strings.Builder
	if err := templates.ExecuteTemplate(&sb, "header.orc", o.Settings); err != nil {
		return "", fmt.Errorf("render orchestra header: %w", err)
	}
	sb.WriteString("\n")

	all := o.Instruments
	if o.Reverb != nil {
		all = append(all[:len(all):len(all)], *o.Reverb)
	}

	seen := make(map[int]string, len(all))
	for _, instr := range all {
		if prev, ok := seen[instr.Number]; ok {
			return "", fmt.Errorf("instrument number %d used by both %s and %s", instr.Number, prev, instr.Kind)
		}
		seen[instr.Number] = instr.Kind

		text, err := instr.Render()
		if err != nil {
			return "", err
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
