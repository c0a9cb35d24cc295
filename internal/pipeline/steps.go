package pipeline

import (
	"context"
	"time"

	"paytrends/internal/gdp"
	"paytrends/internal/inclusion"
	"paytrends/internal/logger"
	"paytrends/internal/merge"
	"paytrends/internal/sink"
	"paytrends/internal/table"
	"paytrends/internal/transactions"
)

// Step is one stage of a run.
type Step interface {
	Name() string
	Execute(ctx context.Context, state *State) error
}

// State carries each stage's output to the next.
type State struct {
	Config Config
	RunID  string

	Transactions     []transactions.Record
	TransactionStats transactions.Stats
	GDP              []gdp.Record
	GDPStats         gdp.Stats
	Indicators       []inclusion.Indicator
	Inclusion        []inclusion.Record
	InclusionStats   inclusion.Stats

	Yearly       []transactions.YearlyAggregate
	VolumePivot  transactions.Pivot
	ValuePivot   transactions.Pivot
	Summary      []merge.SummaryRecord
	WrittenPaths []string
}

// Pipeline runs steps in order and stops at the first failure.
type Pipeline struct {
	steps []Step
}

// New creates a pipeline of the given steps.
func New(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs every step. A failing step's error is returned as a
// *StageError.
func (p *Pipeline) Execute(ctx context.Context, state *State) error {
	log := logger.FromContext(ctx)
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return &StageError{Stage: step.Name(), Err: err}
		}
		start := time.Now()
		log.Debug().Str("stage", step.Name()).Msg("stage started")
		if err := step.Execute(ctx, state); err != nil {
			return &StageError{Stage: step.Name(), Err: err}
		}
		log.Info().Str("stage", step.Name()).Dur("elapsed", time.Since(start)).Msg("stage finished")
	}
	return nil
}

// NewSummaryPipeline is the standard run: load the three sources, aggregate,
// merge, then write.
func NewSummaryPipeline() *Pipeline {
	return New(
		&LoadTransactionsStep{},
		&LoadGDPStep{},
		&LoadInclusionStep{},
		&AggregateStep{},
		&MergeStep{},
		&WriteStep{},
	)
}

// NewLoadPipeline loads and aggregates the sources without merging or
// writing anything.
func NewLoadPipeline() *Pipeline {
	return New(
		&LoadTransactionsStep{},
		&LoadGDPStep{},
		&LoadInclusionStep{},
		&AggregateStep{},
	)
}

// LoadTransactionsStep reads and normalizes the transaction statistics.
type LoadTransactionsStep struct{}

func (s *LoadTransactionsStep) Name() string { return "load-transactions" }

func (s *LoadTransactionsStep) Execute(ctx context.Context, state *State) error {
	t, err := table.Load(state.Config.TransactionsPath)
	if err != nil {
		return err
	}
	records, st, err := transactions.Normalize(t)
	if err != nil {
		return err
	}
	state.Transactions, state.TransactionStats = records, st
	log := logger.FromContext(ctx)
	log.Info().Int("rows", st.Rows).Msg("transactions loaded")
	if st.ParseFailures > 0 {
		log.Warn().Int("parse_failures", st.ParseFailures).Msg("transactions: unreadable metrics set to null")
	}
	return nil
}

// LoadGDPStep reads and melts the GDP table.
type LoadGDPStep struct{}

func (s *LoadGDPStep) Name() string { return "load-gdp" }

func (s *LoadGDPStep) Execute(ctx context.Context, state *State) error {
	t, err := table.Load(state.Config.GDPPath)
	if err != nil {
		return err
	}
	records, st, err := gdp.Normalize(t)
	if err != nil {
		return err
	}
	state.GDP, state.GDPStats = records, st
	log := logger.FromContext(ctx)
	log.Info().Int("records", len(records)).Int("dropped_cells", st.DroppedCells).Msg("gdp loaded")
	if st.ParseFailures > 0 {
		log.Warn().Int("parse_failures", st.ParseFailures).Msg("gdp: non-numeric values set to null")
	}
	return nil
}

// LoadInclusionStep reads and melts the financial-inclusion table.
type LoadInclusionStep struct{}

func (s *LoadInclusionStep) Name() string { return "load-inclusion" }

func (s *LoadInclusionStep) Execute(ctx context.Context, state *State) error {
	t, err := table.Load(state.Config.InclusionPath)
	if err != nil {
		return err
	}
	indicators, records, st, err := inclusion.Normalize(t, state.Config.InclusionYears, state.Config.LabelPrefix)
	if err != nil {
		return err
	}
	state.Indicators, state.Inclusion, state.InclusionStats = indicators, records, st
	log := logger.FromContext(ctx)
	log.Info().Int("rows", st.Rows).Int("dropped_rows", st.DroppedRows).Msg("inclusion loaded")
	if st.ParseFailures > 0 {
		log.Warn().Int("parse_failures", st.ParseFailures).Msg("inclusion: non-numeric values set to null")
	}
	return nil
}

// AggregateStep sums transactions per year and pivots them per month.
type AggregateStep struct{}

func (s *AggregateStep) Name() string { return "aggregate" }

func (s *AggregateStep) Execute(ctx context.Context, state *State) error {
	state.Yearly = transactions.AggregateByYear(state.Transactions)
	state.VolumePivot = transactions.MonthlyPivot(state.Transactions, transactions.Volume, state.Config.MonthOrder)
	state.ValuePivot = transactions.MonthlyPivot(state.Transactions, transactions.Value, state.Config.MonthOrder)
	return nil
}

// MergeStep joins the sources, then filters and orders the summary.
type MergeStep struct{}

func (s *MergeStep) Name() string { return "merge" }

func (s *MergeStep) Execute(ctx context.Context, state *State) error {
	rows := merge.Summarize(state.Yearly, state.GDP, state.Inclusion)
	joined := len(rows)
	rows = merge.FilterYears(rows, state.Config.FromYear, state.Config.ToYear)
	merge.SortDescending(rows)
	state.Summary = rows
	log := logger.FromContext(ctx)
	log.Info().Int("joined", joined).Int("kept", len(rows)).Msg("summary merged")
	return nil
}

// WriteStep writes the summary to every configured sink.
type WriteStep struct{}

func (s *WriteStep) Name() string { return "write" }

func (s *WriteStep) Execute(ctx context.Context, state *State) error {
	out := state.Config.Outputs
	if err := sink.WriteCSV(out.CSVPath, state.Summary); err != nil {
		return err
	}
	state.WrittenPaths = append(state.WrittenPaths, out.CSVPath)
	if out.SQLitePath != "" {
		if err := sink.WriteSQLite(out.SQLitePath, state.Summary); err != nil {
			return err
		}
		state.WrittenPaths = append(state.WrittenPaths, out.SQLitePath)
	}
	if out.XLSXPath != "" {
		if err := sink.WriteXLSX(out.XLSXPath, state.Summary, state.VolumePivot, state.ValuePivot); err != nil {
			return err
		}
		state.WrittenPaths = append(state.WrittenPaths, out.XLSXPath)
	}
	if out.ParquetPath != "" {
		if err := sink.WriteParquet(out.ParquetPath, state.Summary); err != nil {
			return err
		}
		state.WrittenPaths = append(state.WrittenPaths, out.ParquetPath)
	}
	log := logger.FromContext(ctx)
	log.Info().Strs("paths", state.WrittenPaths).Int("rows", len(state.Summary)).Msg("summary written")
	return nil
}
