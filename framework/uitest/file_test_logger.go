package uitest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/syubbanul/uitest-harness/framework"
)

const fileLogTimestampFormat = "2006-01-02 15:04:05,000"

// FileTestLogger appends one line per test outcome to a log file when the run ends. The file is
// opened when the logger is created so that an unwritable path is reported before any test runs.
// Close releases the file if the run is abandoned before EndLog.
type FileTestLogger struct {
	file *os.File
	now  func() time.Time
	lock sync.Mutex
}

// NewFileTestLogger opens path for appending, creating it and its parent directories as needed.
func NewFileTestLogger(path string) (*FileTestLogger, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil { //nolint:gosec
			return nil, fmt.Errorf("can't create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("can't open log file: %w", err)
	}
	return &FileTestLogger{file: f, now: time.Now}, nil
}

func (l *FileTestLogger) TestStarted(TestID)                                        {}
func (l *FileTestLogger) TestError(TestID, error)                                   {}
func (l *FileTestLogger) TestFinished(TestID, TestResult, framework.CapturedOutput) {}
func (l *FileTestLogger) TestSkipped(TestID, string)                                {}

// EndLog writes the outcome lines and closes the file.
func (l *FileTestLogger) EndLog(results Results) error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.file == nil {
		return nil
	}
	var b strings.Builder
	for _, r := range results.Tests {
		b.WriteString(formatLogLine(l.now(), r))
	}
	_, writeErr := l.file.WriteString(b.String())
	closeErr := l.file.Close()
	l.file = nil
	if writeErr != nil {
		return writeErr
	}
	return closeErr
}

// Close closes the file without writing anything. It does nothing after EndLog or a previous Close.
func (l *FileTestLogger) Close() error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func formatLogLine(ts time.Time, r TestResult) string {
	return fmt.Sprintf("%s - INFO - %s: %s - %s\n",
		ts.Format(fileLogTimestampFormat), r.TestID, r.Outcome.Kind, foldNewlines(r.Outcome.Message))
}

func foldNewlines(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "\r", "")), " ")
}
