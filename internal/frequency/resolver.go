package frequency

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/CarsonHerness/ctcsound-Example/internal/errors"
)

// Resolver maps pitch labels to frequencies. It is read-only after creation.
type Resolver struct {
	freqs map[string]float64
}

// NewResolver copies table into a new Resolver.
func NewResolver(table map[string]float64) *Resolver {
	freqs := make(map[string]float64, len(table))
	for k, v := range table {
		freqs[k] = v
	}
	return &Resolver{freqs: freqs}
}

var naturals = []struct {
	name     string
	semitone int
}{
	{"C", 0}, {"D", 2}, {"E", 4}, {"F", 5}, {"G", 7}, {"A", 9}, {"B", 11},
}

// Default returns equal-tempered naturals C0 through B8 tuned to A4 = 440 Hz,
// rounded to hundredths.
func Default() *Resolver {
	freqs := make(map[string]float64, len(naturals)*9)
	for octave := 0; octave <= 8; octave++ {
		for _, n := range naturals {
			midi := (octave+1)*12 + n.semitone
			hz := 440 * math.Pow(2, float64(midi-69)/12)
			freqs[fmt.Sprintf("%s%d", n.name, octave)] = math.Round(hz*100) / 100
		}
	}
	return &Resolver{freqs: freqs}
}

// LoadTable reads a name,freq CSV. A header row whose frequency column is not
// numeric is skipped. Names are kept as written; rows whose name a token can
// never normalize to (sharps, flats, "C#0/Db0") are skipped.
func LoadTable(r io.Reader) (*Resolver, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	freqs := make(map[string]float64)
	line := 0
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read frequency table line %d: %w", line, err)
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("frequency table line %d: want name,freq", line)
		}
		hz, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("frequency table line %d: %w", line, err)
		}
		name := strings.TrimSpace(record[0])
		if !isLabel(name) {
			continue
		}
		freqs[name] = hz
	}
	if len(freqs) == 0 {
		return nil, fmt.Errorf("frequency table is empty")
	}
	return &Resolver{freqs: freqs}, nil
}

// isLabel reports whether name is a single pitch label that survives
// Normalize unchanged.
func isLabel(name string) bool {
	return name != "" && !strings.ContainsRune(name, ChordDelimiter) && Normalize(name) == name
}

// LoadTableFile reads a frequency table from path.
func LoadTableFile(path string) (*Resolver, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frequency table: %w", err)
	}
	defer f.Close()
	return LoadTable(f)
}

// Lookup returns the frequency of a single pitch label.
func (r *Resolver) Lookup(label string) (float64, bool) {
	hz, ok := r.freqs[label]
	return hz, ok
}

// Labels returns every known pitch label, sorted.
func (r *Resolver) Labels() []string {
	out := make([]string, 0, len(r.freqs))
	for k := range r.freqs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Resolve converts a note token into one frequency per chord member.
func (r *Resolver) Resolve(token string) ([]float64, error) {
	labels := SplitChord(Normalize(token))
	out := make([]float64, 0, len(labels))
	for _, label := range labels {
		hz, ok := r.freqs[label]
		if !ok {
			return nil, &apperrors.UnknownPitchLabelError{Label: label, Token: token}
		}
		out = append(out, hz)
	}
	return out, nil
}

// ResolveAll resolves every token of seq, preserving order.
func (r *Resolver) ResolveAll(seq []string) ([][]float64, error) {
	out := make([][]float64, len(seq))
	for i, tok := range seq {
		freqs, err := r.Resolve(tok)
		if err != nil {
			return nil, fmt.Errorf("note %d: %w", i, err)
		}
		out[i] = freqs
	}
	return out, nil
}
