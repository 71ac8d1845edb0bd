package uitest

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/syubbanul/uitest-harness/framework"
)

// ProgressTestLogger shows a single progress bar instead of a line per test. Only top-level
// tests advance the bar, since those are the cases the total refers to; a top-level test counts
// with the worst outcome of anything inside it.
type ProgressTestLogger struct {
	bar     *progressbar.ProgressBar
	worst   map[string]OutcomeKind
	out     io.Writer
	passed  int
	failed  int
	errored int
	skipped int
	lock    sync.Mutex
}

// NewProgressTestLogger creates a bar for total cases, writing to out (normally os.Stderr).
func NewProgressTestLogger(total int, out io.Writer) *ProgressTestLogger {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription(progressDescription(0, 0, 0)),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(out),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(out, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
	return &ProgressTestLogger{bar: bar, out: out, worst: make(map[string]OutcomeKind)}
}

func progressDescription(passed, failed, errored int) string {
	return color.CyanString("Running cases: ") +
		color.GreenString("[passed: %d", passed) +
		" | " +
		color.RedString("failed: %d", failed) +
		" | " +
		color.YellowString("error: %d]", errored)
}

func (p *ProgressTestLogger) TestStarted(TestID)      {}
func (p *ProgressTestLogger) TestError(TestID, error) {}

func (p *ProgressTestLogger) TestFinished(id TestID, result TestResult, _ framework.CapturedOutput) {
	if len(id) == 0 {
		return
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	if result.Outcome.Kind > p.worst[id[0]] {
		p.worst[id[0]] = result.Outcome.Kind
	}
	if len(id) != 1 {
		return
	}
	switch p.worst[id[0]] {
	case Passed:
		p.passed++
	case Failed:
		p.failed++
	default:
		p.errored++
	}
	p.bar.Describe(progressDescription(p.passed, p.failed, p.errored))
	_ = p.bar.Add(1)
}

func (p *ProgressTestLogger) TestSkipped(id TestID, _ string) {
	if len(id) != 1 {
		return
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	p.skipped++
	_ = p.bar.Add(1)
}

func (p *ProgressTestLogger) EndLog(results Results) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if err := p.bar.Finish(); err != nil {
		return err
	}
	if p.skipped > 0 {
		_, _ = consoleTestSkippedColor.Fprintf(p.out, "%d skipped by filter\n", p.skipped)
	}
	for _, f := range results.Failures {
		_, _ = consoleTestFailedColor.Fprintf(p.out, "  * %s: %s - %s\n", f.TestID, f.Outcome.Kind, f.Outcome.Message)
	}
	return nil
}
