// Package logger builds the zerolog logger shared by every command. The
// default sink is stderr; a file path can be given instead, in which case
// writes are serialized through zerolog's sync writer.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

const permission = 0664

// Build configures a logger before Make assembles it.
type Build struct {
	writer io.Writer
	path   string
	level  zerolog.Level
}

// Data is an assembled logger together with the file it owns, if any.
type Data struct {
	LogFile *os.File
	Logger  zerolog.Logger
}

func New() *Build {
	return &Build{writer: os.Stderr, level: zerolog.InfoLevel}
}

// FromPath directs log output to the file at path, appending.
func (b *Build) FromPath(path string) *Build {
	b.path = path
	return b
}

// FromBuffer directs log output to w.
func (b *Build) FromBuffer(w io.Writer) *Build {
	b.writer = w
	return b
}

// Level sets the minimum level emitted.
func (b *Build) Level(level zerolog.Level) *Build {
	b.level = level
	return b
}

func (b *Build) Make() (*Data, error) {
	data := &Data{}
	writer := b.writer
	if b.path != "" {
		file, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, err
		}
		data.LogFile = file
		writer = zerolog.SyncWriter(file)
	}
	data.Logger = zerolog.New(writer).Level(b.level).With().Timestamp().Logger()
	return data, nil
}

// Close releases the log file when one is open.
func (d *Data) Close() error {
	if d.LogFile != nil {
		return d.LogFile.Close()
	}
	return nil
}
