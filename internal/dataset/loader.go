package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/rainfall-xml-service/internal/observability"
)

// Loader produces a fresh Dataset for one request.
type Loader interface {
	Load(ctx context.Context) (Dataset, error)
}

// FileLoader reads and parses the input file on every call. Nothing is cached, so
// an edit to the file is visible to the next request.
type FileLoader struct {
	path string
}

// NewFileLoader returns a FileLoader for path. The path is not checked here.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

// Load reads and parses the input file. Errors wrap ErrRead or ErrParse.
func (l *FileLoader) Load(ctx context.Context) (Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	data, err := os.ReadFile(l.path)
	if err != nil {
		observability.RecordDatasetLoad("read_error", time.Since(start))
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	ds, err := Parse(data)
	if err != nil {
		observability.RecordDatasetLoad("parse_error", time.Since(start))
		return nil, err
	}
	observability.RecordDatasetLoad("success", time.Since(start))
	observability.LoggerFromContext(ctx).Debug("dataset loaded",
		zap.String("path", l.path),
		zap.Int("records", len(ds)),
		zap.Duration("duration", time.Since(start)))
	return ds, nil
}

// IsNotExist reports whether err came from a missing input file.
func IsNotExist(err error) bool {
	return errors.Is(err, ErrRead) && errors.Is(err, os.ErrNotExist)
}
