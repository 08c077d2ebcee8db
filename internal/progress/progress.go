package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
)

// Stage represents a processing stage
type Stage struct {
	Number      int
	Total       int
	Name        string
	Description string
}

// Predefined stages of a run
var (
	StageTables  = Stage{1, 3, "tables", "Loading transition tables..."}
	StageCompose = Stage{2, 3, "compose", "Composing voices..."}
	StageRender  = Stage{3, 3, "render", "Rendering with csound... (this may take a moment)"}
)

// Reporter handles CLI progress output
type Reporter struct {
	out       io.Writer
	startTime time.Time
	verbose   bool
}

// NewReporter creates a new progress reporter
func NewReporter(out io.Writer, verbose bool) *Reporter {
	return &Reporter{
		out:       out,
		startTime: time.Now(),
		verbose:   verbose,
	}
}

// StartStage announces the beginning of a processing stage
func (r *Reporter) StartStage(stage Stage) {
	fmt.Fprintf(r.out, "[%d/%d] %s\n", stage.Number, stage.Total, stage.Description)
}

// Update shows a sub-progress message within a stage
func (r *Reporter) Update(format string, args ...any) {
	if r.verbose {
		fmt.Fprintf(r.out, "       %s\n", fmt.Sprintf(format, args...))
	}
}

// StageComplete shows completion message for a stage
func (r *Reporter) StageComplete(format string, args ...any) {
	fmt.Fprintf(r.out, "       %s\n", fmt.Sprintf(format, args...))
}

// Done announces successful completion and lists the files written
func (r *Reporter) Done(outputPaths ...string) {
	fmt.Fprintln(r.out, "Done! Composition generated successfully.")
	for _, path := range outputPaths {
		if path == "" {
			continue
		}
		if info, err := os.Stat(path); err == nil {
			fmt.Fprintf(r.out, "Output saved to: %s (%s)\n", path, humanize.Bytes(uint64(info.Size())))
		} else {
			fmt.Fprintf(r.out, "Output saved to: %s\n", path)
		}
	}
	fmt.Fprintf(r.out, "Completed in %s (started %s)\n",
		FormatDuration(time.Since(r.startTime).Round(time.Millisecond)), humanize.Time(r.startTime))
}

// FormatDuration renders d as its two largest units, e.g. "1 minute 30 seconds"
func FormatDuration(d time.Duration) string {
	return durafmt.Parse(d).LimitFirstN(2).String()
}

// Error announces an error
func (r *Reporter) Error(err error) {
	fmt.Fprintf(r.out, "Error: %s\n", err)
}

// Warning announces a non-fatal warning
func (r *Reporter) Warning(format string, args ...any) {
	fmt.Fprintf(r.out, "Warning: %s\n", fmt.Sprintf(format, args...))
}
