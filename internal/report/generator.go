// Package report renders self-contained HTML reports for archived
// compositions.
package report

import (
	"encoding/base64"
	"fmt"
	"html"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/CarsonHerness/ctcsound-Example/internal/cache"
	"github.com/dustin/go-humanize"
)

// ReportData holds all data needed to generate a report
type ReportData struct {
	Key       string
	Version   int
	Preset    string
	Seed      int64
	Duration  float64
	Events    int
	CreatedAt time.Time
	Orchestra string
	Score     string

	// Rendered audio, embedded as base64 when present
	RenderPath string

	Instruments []InstrumentStats
}

// InstrumentStats summarises the events that call one instrument
type InstrumentStats struct {
	Number     int
	Events     int
	FirstStart float64
	LastEnd    float64
	MinHz      float64 // 0 when the instrument takes no frequency
	MaxHz      float64
}

// Generator creates HTML reports from the output cache
type Generator struct {
	store *cache.OutputCache
}

// NewGenerator creates a new report generator
func NewGenerator(store *cache.OutputCache) *Generator {
	return &Generator{store: store}
}

// LoadData loads one archived version of key, 0 meaning the latest
func (g *Generator) LoadData(key string, version int) (*ReportData, error) {
	history, err := g.store.GetOutputHistory(key)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	if len(history) == 0 {
		return nil, fmt.Errorf("no archived outputs for %q", key)
	}

	output := history[len(history)-1]
	if version > 0 {
		output = nil
		for _, h := range history {
			if h.Version == version {
				output = h
				break
			}
		}
		if output == nil {
			return nil, fmt.Errorf("%q has no version %d", key, version)
		}
	}

	return &ReportData{
		Key:         key,
		Version:     output.Version,
		Preset:      output.Preset,
		Seed:        output.Seed,
		Duration:    output.Duration,
		Events:      output.Events,
		CreatedAt:   output.CreatedAt,
		Orchestra:   output.Orchestra,
		Score:       output.Score,
		RenderPath:  findFile(g.store.Dir(key), "render.wav"),
		Instruments: Summarize(output.Score),
	}, nil
}

// Generate writes the report and returns its path. An empty outputPath
// writes report.html next to the archived versions.
func (g *Generator) Generate(key string, version int, outputPath string) (string, error) {
	data, err := g.LoadData(key, version)
	if err != nil {
		return "", fmt.Errorf("failed to load data: %w", err)
	}

	if outputPath == "" {
		outputPath = filepath.Join(g.store.Dir(key), "report.html")
	}

	if err := os.WriteFile(outputPath, []byte(generateHTML(data)), 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return outputPath, nil
}

// Summarize groups score lines by instrument. Lines that are not i-statements
// are skipped.
func Summarize(score string) []InstrumentStats {
	byNumber := make(map[int]*InstrumentStats)
	for _, line := range strings.Split(score, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 || !strings.HasPrefix(fields[0], "i") {
			continue
		}
		number, err := strconv.Atoi(fields[0][1:])
		if err != nil {
			continue
		}
		start, err1 := strconv.ParseFloat(fields[1], 64)
		dur, err2 := strconv.ParseFloat(fields[2], 64)
		if err1 != nil || err2 != nil {
			continue
		}

		st, ok := byNumber[number]
		if !ok {
			st = &InstrumentStats{Number: number, FirstStart: math.Inf(1)}
			byNumber[number] = st
		}
		st.Events++
		st.FirstStart = math.Min(st.FirstStart, start)
		st.LastEnd = math.Max(st.LastEnd, start+dur)

		// tonal instruments take frequency then amplitude
		if len(fields) >= 5 {
			if hz, err := strconv.ParseFloat(fields[3], 64); err == nil {
				if st.MinHz == 0 || hz < st.MinHz {
					st.MinHz = hz
				}
				st.MaxHz = math.Max(st.MaxHz, hz)
			}
		}
	}

	stats := make([]InstrumentStats, 0, len(byNumber))
	for _, st := range byNumber {
		stats = append(stats, *st)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Number < stats[j].Number })
	return stats
}

// Helper functions

func findFile(dir string, names ...string) string {
	for _, name := range names {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func encodeAudioBase64(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return "data:audio/wav;base64," + base64.StdEncoding.EncodeToString(data)
}

func formatHz(v float64) string {
	if v == 0 {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 2, 64) + " Hz"
}

func generateHTML(data *ReportData) string {
	renderData := encodeAudioBase64(data.RenderPath)
	player := `<div class="no-data">Not rendered</div>`
	if renderData != "" {
		player = fmt.Sprintf(`<audio controls src="%s" id="render"></audio>`, renderData)
	}

	var rows strings.Builder
	for _, st := range data.Instruments {
		fmt.Fprintf(&rows, `
				<tr><td>i%d</td><td>%d</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
			st.Number, st.Events,
			strconv.FormatFloat(st.FirstStart, 'f', -1, 64),
			strconv.FormatFloat(st.LastEnd, 'f', -1, 64),
			formatHz(st.MinHz), formatHz(st.MaxHz))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>markov-score Report: %s</title>
    <style>
        :root {
            --bg-primary: #0d1117;
            --bg-secondary: #161b22;
            --text-primary: #c9d1d9;
            --text-secondary: #8b949e;
            --accent: #58a6ff;
            --border: #30363d;
        }
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Helvetica, Arial, sans-serif;
            background: var(--bg-primary);
            color: var(--text-primary);
            line-height: 1.6;
            padding: 2rem;
        }
        h1 { color: var(--accent); margin-bottom: 0.5rem; }
        .meta { color: var(--text-secondary); margin-bottom: 1.5rem; }
        .card {
            background: var(--bg-secondary);
            border: 1px solid var(--border);
            border-radius: 6px;
            padding: 1rem;
            margin-bottom: 1rem;
        }
        .card-title { font-weight: 600; margin-bottom: 0.75rem; }
        table { width: 100%%; border-collapse: collapse; }
        th, td { text-align: left; padding: 0.25rem 0.5rem; border-bottom: 1px solid var(--border); }
        pre { overflow-x: auto; font-size: 0.85rem; max-height: 30rem; }
        audio { width: 100%%; }
        .no-data { color: var(--text-secondary); font-style: italic; }
    </style>
</head>
<body>
    <h1>%s</h1>
    <div class="meta">Preset %s &middot; seed %d &middot; %ss &middot; %d events &middot; version %d &middot; %s</div>

    <div class="card">
        <div class="card-title">Render</div>
        %s
    </div>

    <div class="card">
        <div class="card-title">Instruments</div>
        <table>
            <thead><tr><th>Instrument</th><th>Events</th><th>First start</th><th>Last end</th><th>Lowest</th><th>Highest</th></tr></thead>
            <tbody>%s
            </tbody>
        </table>
    </div>

    <div class="card">
        <div class="card-title">Orchestra</div>
        <pre>%s</pre>
    </div>

    <div class="card">
        <div class="card-title">Score</div>
        <pre>%s</pre>
    </div>
</body>
</html>
`,
		html.EscapeString(data.Key),
		html.EscapeString(data.Key),
		html.EscapeString(data.Preset),
		data.Seed,
		strconv.FormatFloat(data.Duration, 'f', -1, 64),
		data.Events,
		data.Version,
		humanize.Time(data.CreatedAt),
		player,
		rows.String(),
		html.EscapeString(data.Orchestra),
		html.EscapeString(data.Score),
	)
}
