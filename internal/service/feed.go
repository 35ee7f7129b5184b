package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/rainfall-xml-service/internal/dataset"
	"github.com/kjstillabower/rainfall-xml-service/internal/models"
	"github.com/kjstillabower/rainfall-xml-service/internal/observability"
)

// Alias chains for the output fields, in precedence order.
var (
	RainfallChain = dataset.Chain{
		Names:   []string{"Rainfall", "rainfall", "rain"},
		Default: float64(0),
	}
	Pressure3pmChain = dataset.Chain{
		Names: []string{"Pressure3pm", "pressure3pm", "pressure"},
	}
	HumidityChain = dataset.Chain{
		Names: []string{"Humidity3pm", "humidity3pm", "humidity"},
	}
)

// FeedService turns the input dataset into output records for one request.
type FeedService struct {
	loader dataset.Loader
}

// NewFeedService creates a FeedService reading through loader.
func NewFeedService(loader dataset.Loader) *FeedService {
	return &FeedService{loader: loader}
}

// Records loads a fresh dataset, filters it by q and projects every remaining record.
// Source order is preserved. The returned slice is never nil on success.
func (s *FeedService) Records(ctx context.Context, q models.Query) ([]models.Record, error) {
	start := time.Now()
	ds, err := s.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	kept := Filter(ds, q)
	records := Project(kept, q.IncludeHumidity)

	observability.RecordsServedTotal.Add(float64(len(records)))
	observability.LoggerFromContext(ctx).Debug("feed built",
		zap.Int("source_records", len(ds)),
		zap.Int("records", len(records)),
		zap.Bool("humidity", q.IncludeHumidity),
		zap.Duration("duration", time.Since(start)))
	return records, nil
}

// Filter keeps records whose coerced rainfall is strictly greater than q.MinRainfall.
// Without a threshold every record is kept. NaN rainfall never passes.
func Filter(ds dataset.Dataset, q models.Query) dataset.Dataset {
	if !q.HasMinRainfall {
		return ds
	}
	out := make(dataset.Dataset, 0, len(ds))
	for _, rec := range ds {
		if dataset.Number(RainfallChain.Resolve(rec)) > q.MinRainfall {
			out = append(out, rec)
		}
	}
	return out
}

// Project maps each raw record onto the fixed output shape.
func Project(ds dataset.Dataset, includeHumidity bool) []models.Record {
	out := make([]models.Record, 0, len(ds))
	for _, rec := range ds {
		r := models.Record{
			Rainfall:    models.NewValue(RainfallChain.Resolve(rec)),
			Pressure3pm: models.NewValue(Pressure3pmChain.Resolve(rec)),
		}
		if includeHumidity {
			h := models.NewValue(HumidityChain.Resolve(rec))
			r.Humidity = &h
		}
		out = append(out, r)
	}
	return out
}
