package duration

import "github.com/CarsonHerness/ctcsound-Example/internal/markov"

// Rows are in Classes order:
// 0.125, 0.25, 0.333, 0.5, 0.666, 0.75, 1

// Uniform returns the balanced duration table.
func Uniform() *Table {
	return build(NameUniform, map[Duration][]float64{
		ThirtySecond:  {0.35, 0.25, 0.05, 0.15, 0.05, 0.05, 0.1},
		Sixteenth:     {0.1, 0.25, 0.1, 0.2, 0.05, 0.1, 0.2},
		Triplet:       {0.05, 0.05, 0.3, 0.1, 0.2, 0.1, 0.2},
		Eighth:        {0.125, 0.125, 0.05, 0.35, 0.05, 0.1, 0.2},
		DoubleTriplet: {0.05, 0.05, 0.3, 0.1, 0.2, 0.1, 0.2},
		Dotted:        {0.1, 0.25, 0.1, 0.2, 0.05, 0.1, 0.2},
		Quarter:       {0.125, 0.125, 0.125, 0.125, 0.125, 0.125, 0.25},
	})
}

// ShortFavoring returns a table that leans toward shorter notes.
func ShortFavoring() *Table {
	return build(NameShort, map[Duration][]float64{
		ThirtySecond:  {0.35, 0.25, 0.05, 0.15, 0.05, 0.05, 0.1},
		Sixteenth:     {0.15, 0.25, 0.1, 0.2, 0.05, 0.1, 0.15},
		Triplet:       {0.05, 0.05, 0.3, 0.1, 0.2, 0.1, 0.2},
		Eighth:        {0.2, 0.2, 0.05, 0.35, 0.05, 0.05, 0.1},
		DoubleTriplet: {0.05, 0.05, 0.3, 0.1, 0.2, 0.1, 0.2},
		Dotted:        {0.1, 0.25, 0.1, 0.2, 0.05, 0.1, 0.2},
		Quarter:       {0.25, 0.25, 0.05, 0.125, 0.125, 0.1, 0.1},
	})
}

// LongFavoring returns a table that leans toward longer notes.
func LongFavoring() *Table {
	return build(NameLong, map[Duration][]float64{
		ThirtySecond:  {0.25, 0.25, 0.05, 0.15, 0.05, 0.05, 0.2},
		Sixteenth:     {0.15, 0.25, 0.1, 0.2, 0.05, 0.1, 0.15},
		Triplet:       {0.05, 0.05, 0.3, 0.1, 0.2, 0.1, 0.2},
		Eighth:        {0.125, 0.125, 0.05, 0.35, 0.05, 0.1, 0.2},
		DoubleTriplet: {0.05, 0.05, 0.3, 0.1, 0.2, 0.1, 0.2},
		Dotted:        {0.1, 0.25, 0.1, 0.2, 0.05, 0.1, 0.2},
		Quarter:       {0.1, 0.125, 0.05, 0.25, 0.125, 0.1, 0.25},
	})
}

func build(name string, rows map[Duration][]float64) *Table {
	b := markov.NewBuilder[Duration](name)
	for _, d := range Classes {
		b.Weights(d, Classes, rows[d])
	}
	return b.Build()
}
