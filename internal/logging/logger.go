package logging

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/wizzomafizzo/cm/internal/storage"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxLogSizeMB  = 10
	maxLogBackups = 3
	maxLogAgeDays = 30
)

// DefaultLevel applies when no level, or an unknown one, is configured.
const DefaultLevel = zerolog.InfoLevel

// Config selects where a run logs and at what level. A nil Writer means the
// rotating file under the data directory.
type Config struct {
	Writer   io.Writer
	RepoRoot string
	Level    zerolog.Level
}

// New attaches a logger to ctx. Every entry carries the repository root.
func New(ctx context.Context, fs afero.Fs, config Config) (context.Context, error) {
	writer := config.Writer
	if writer == nil {
		file, err := rotatingFile(fs)
		if err != nil {
			return nil, err
		}
		writer = file
	}

	logger := zerolog.New(writer).
		Level(config.Level).
		With().
		Timestamp().
		Str("repo", config.RepoRoot).
		Logger()

	return logger.WithContext(ctx), nil
}

func rotatingFile(fs afero.Fs) (*lumberjack.Logger, error) {
	if fs == nil {
		return nil, errors.New("filesystem required when no writer provided")
	}

	path, err := storage.New(fs).GetLogPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get log path: %w", err)
	}

	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
	}, nil
}

// Get retrieves the logger from the provided context
// Returns the logger associated with the context, or a disabled logger if none exists
func Get(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// ParseLevel converts a level name to a zerolog level, falling back to info.
func ParseLevel(name string) zerolog.Level {
	level, err := zerolog.ParseLevel(name)
	if err != nil || level == zerolog.NoLevel {
		return DefaultLevel
	}
	return level
}
