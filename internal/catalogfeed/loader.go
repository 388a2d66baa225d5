package catalogfeed

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for feeds on the local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based feed loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "feed-loader").Logger(),
	}
}

func (l *fileLoader) Load(ctx context.Context, path string) ([]Entry, error) {
	l.logger.Info().Str("file", path).Msg("loading catalog feed")

	file, err := os.Open(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to open catalog feed")
		return nil, fmt.Errorf("failed to open catalog feed %s: %w", path, err)
	}
	defer file.Close()

	entries, err := decode(ctx, file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to read catalog feed")
		return nil, fmt.Errorf("catalog feed %s: %w", path, err)
	}

	l.logger.Info().
		Str("file", path).
		Int("entries", len(entries)).
		Msg("catalog feed loaded")

	return entries, nil
}
