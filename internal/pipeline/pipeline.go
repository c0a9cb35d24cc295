// Package pipeline runs the summary build: the three sources are loaded and
// normalized, the transactions aggregated, everything merged on year and
// the result written to the configured sinks.
package pipeline

import (
	"context"

	"github.com/google/uuid"

	"paytrends/internal/logger"
)

// Load validates cfg and runs only the load and aggregate stages, for
// consumers that chart the normalized sources.
func Load(ctx context.Context, cfg Config) (*State, error) {
	return execute(ctx, cfg, NewLoadPipeline())
}

// Run validates cfg and executes the standard pipeline. The returned state
// holds every intermediate result, also on failure.
func Run(ctx context.Context, cfg Config) (*State, error) {
	return execute(ctx, cfg, NewSummaryPipeline())
}

func execute(ctx context.Context, cfg Config, p *Pipeline) (*State, error) {
	state := &State{Config: cfg, RunID: uuid.NewString()}
	if err := cfg.Validate(); err != nil {
		return state, &StageError{Stage: "config", Err: err}
	}
	log := logger.FromContext(ctx).With().Str("run_id", state.RunID).Logger()
	ctx = logger.WithContext(ctx, log)

	log.Info().
		Str("transactions", cfg.TransactionsPath).
		Str("gdp", cfg.GDPPath).
		Str("inclusion", cfg.InclusionPath).
		Int("from_year", cfg.FromYear).
		Int("to_year", cfg.ToYear).
		Msg("run started")
	if err := p.Execute(ctx, state); err != nil {
		log.Error().Err(err).Msg("run failed")
		return state, err
	}
	log.Info().Msg("run finished")
	return state, nil
}
