package build

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jrick/logrotate/rotator"
)

const (
	// DefaultMaxLogFiles is how many rotated log files are kept.
	DefaultMaxLogFiles = 10

	// DefaultMaxLogFileSize is the size in MB at which a log file is
	// rotated.
	DefaultMaxLogFileSize = 20

	// DefaultLogFilename is the name of the log file.
	DefaultLogFilename = "mailactions.log"
)

// LogRotatorConfig configures a RotatingLogWriter.
type LogRotatorConfig struct {
	// LogDir is the directory holding the log files.
	LogDir string

	// MaxLogFiles is how many rotated files to keep. Zero keeps a single
	// file that is never rotated.
	MaxLogFiles int

	// MaxLogFileSize is the size in MB at which the file is rotated.
	MaxLogFileSize int

	// Filename defaults to DefaultLogFilename.
	Filename string
}

// RotatingLogWriter is an io.Writer feeding a jrick/logrotate rotator that
// gzips the files it rotates out.
type RotatingLogWriter struct {
	pipe *io.PipeWriter
	done chan struct{}
}

// NewRotatingLogWriter creates the log directory and starts the rotator.
func NewRotatingLogWriter(cfg LogRotatorConfig) (*RotatingLogWriter, error) {
	filename := cfg.Filename
	if filename == "" {
		filename = DefaultLogFilename
	}

	if err := os.MkdirAll(cfg.LogDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	r, err := rotator.New(
		filepath.Join(cfg.LogDir, filename),
		int64(cfg.MaxLogFileSize*1024), false, cfg.MaxLogFiles,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create file rotator: %w", err)
	}
	r.SetCompressor(gzip.NewWriter(nil), ".gz")

	pr, pw := io.Pipe()
	w := &RotatingLogWriter{pipe: pw, done: make(chan struct{})}

	go func() {
		defer close(w.done)

		// The rotator is the log destination, so its own failure can
		// only go to stderr.
		err := r.Run(pr)
		if err != nil && !errors.Is(err, io.EOF) {
			_, _ = fmt.Fprintf(os.Stderr,
				"failed to run file rotator: %v\n", err)
		}
		_, _ = io.Copy(io.Discard, pr)
		_ = r.Close()
	}()

	return w, nil
}

// Write implements io.Writer.
func (w *RotatingLogWriter) Write(b []byte) (int, error) {
	return w.pipe.Write(b)
}

// Close flushes the pending output and stops the rotator.
func (w *RotatingLogWriter) Close() error {
	err := w.pipe.Close()
	<-w.done

	return err
}
