package pitch

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	apperrors "github.com/CarsonHerness/ctcsound-Example/internal/errors"
	"github.com/CarsonHerness/ctcsound-Example/internal/markov"
)

//go:embed tables/pop.csv
var popCSV []byte

// Table is a transition table over note tokens.
type Table = markov.Table[string]

// DefaultTable returns the built-in pop progression matrix.
func DefaultTable() *Table {
	t, err := parse("pop", bytes.NewReader(popCSV))
	if err != nil {
		panic(fmt.Sprintf("embedded pitch table: %v", err))
	}
	return t
}

// LoadTable reads a pitch transition matrix. The header row names the next
// states (its first cell is ignored); every following row is a state label
// followed by one probability per header column.
func LoadTable(r io.Reader) (*Table, error) {
	return parse("pitch", r)
}

// LoadTableFile reads a pitch transition matrix from path.
func LoadTableFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pitch table: %w", err)
	}
	defer f.Close()
	return parse(path, f)
}

func parse(name string, r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", apperrors.ErrInvalidTable, err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("%w: header has no note columns", apperrors.ErrInvalidTable)
	}
	next := make([]string, len(header)-1)
	for i, h := range header[1:] {
		next[i] = strings.TrimSpace(h)
	}

	b := markov.NewBuilder[string](name)
	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", apperrors.ErrInvalidTable, line, err)
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("%w: line %d has %d fields, want %d",
				apperrors.ErrInvalidTable, line, len(record), len(header))
		}

		probs := make([]float64, len(next))
		for i, cell := range record[1:] {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			p, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %q: %v", apperrors.ErrInvalidTable, line, next[i], err)
			}
			probs[i] = p
		}
		b.Weights(strings.TrimSpace(record[0]), next, probs)
	}

	return b.Build(), nil
}
