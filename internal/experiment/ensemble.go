package experiment

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/mapstory/internal/engine"
	"github.com/san-kum/mapstory/internal/storage"
)

// Ensemble runs independent headless experiments side by side. Each run has
// its own engine, so runs share nothing but the story file, which is only
// read.
type Ensemble struct {
	configs []Config
	workers int
}

func NewEnsemble(configs []Config, workers int) *Ensemble {
	if workers <= 0 {
		workers = 1
	}
	return &Ensemble{configs: configs, workers: workers}
}

// Run returns the runs in config order. The first failure cancels the rest.
func (e *Ensemble) Run(ctx context.Context) ([]*storage.Run, error) {
	results := make([]*storage.Run, len(e.configs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, cfg := range e.configs {
		i, cfg := i, cfg
		g.Go(func() error {
			exp := New(cfg)
			if err := exp.Setup(engine.Hooks{}, nil); err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			run, err := exp.Run(ctx)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			results[i] = run
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
