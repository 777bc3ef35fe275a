package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/startup-analyst/internal/config"
	"github.com/sells-group/startup-analyst/internal/model"
	"github.com/sells-group/startup-analyst/internal/ocr"
	"github.com/sells-group/startup-analyst/internal/store"
	"github.com/sells-group/startup-analyst/pkg/llm"
)

// Orchestrator drives a full evaluation: document extraction, company
// record decoding, parallel analysis units, and report synthesis.
type Orchestrator struct {
	cfg       *config.Config
	store     store.Store
	llm       llm.Client
	extractor ocr.Extractor
	units     []Unit

	// initErr is set when the orchestrator was constructed without a
	// working generative client. Runs still execute and terminate in a
	// failed state with a failure report rather than erroring upfront,
	// so callers always get a run record to inspect.
	initErr string
}

// New wires an orchestrator. A nil llm client is tolerated: runs will
// fail with a recorded cause instead of panicking mid-flight.
func New(cfg *config.Config, st store.Store, client llm.Client, extractor ocr.Extractor) *Orchestrator {
	o := &Orchestrator{
		cfg:       cfg,
		store:     st,
		llm:       client,
		extractor: extractor,
		units: []Unit{
			NewFinancialUnit(client),
			NewRiskUnit(client),
			NewMarketUnit(client),
		},
	}
	if client == nil {
		o.initErr = "generative service credentials not configured"
	}
	return o
}

// Run executes an evaluation synchronously. It always returns a
// structurally complete report, even when the run could not execute.
func (o *Orchestrator) Run(ctx context.Context, req model.AnalysisRequest) *model.Report {
	run := o.createRun(ctx, req)
	return o.execute(ctx, run, req)
}

// Launch starts an evaluation in the background and returns the run ID
// immediately. Progress is observable through the store.
func (o *Orchestrator) Launch(ctx context.Context, req model.AnalysisRequest) string {
	run := o.createRun(ctx, req)

	go func() {
		// Detached from the request context so an HTTP disconnect
		// doesn't abort the run.
		o.execute(context.Background(), run, req)
	}()

	return run.ID
}

// createRun persists the run record. Store failures are logged, not
// fatal: the run proceeds unpersisted under a locally generated ID so
// the caller still gets a report.
func (o *Orchestrator) createRun(ctx context.Context, req model.AnalysisRequest) *model.Run {
	run, err := o.store.CreateRun(ctx, req)
	if err != nil {
		zap.L().Warn("pipeline: failed to create run record", zap.Error(err))
		now := time.Now().UTC()
		run = &model.Run{
			ID:        uuid.NewString(),
			Request:   req,
			Status:    model.RunStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	return run
}

func (o *Orchestrator) execute(ctx context.Context, run *model.Run, req model.AnalysisRequest) *model.Report {
	log := zap.L().With(zap.String("run_id", run.ID), zap.String("company", req.CompanyName))

	setStatus := func(status model.RunStatus) {
		if statusErr := o.store.UpdateRunStatus(ctx, run.ID, status); statusErr != nil {
			log.Warn("pipeline: failed to update status", zap.Error(statusErr))
		}
	}

	if o.initErr != "" {
		log.Error("pipeline: run cannot start", zap.String("cause", o.initErr))
		report := FailureReport(req, run.ID, o.initErr)
		if saveErr := o.store.SaveReport(ctx, run.ID, report, model.RunStatusFailed); saveErr != nil {
			log.Warn("pipeline: failed to persist failure report", zap.Error(saveErr))
		}
		if failErr := o.store.FailRun(ctx, run.ID, o.initErr); failErr != nil {
			log.Warn("pipeline: failed to record failure", zap.Error(failErr))
		}
		return report
	}

	log.Info("pipeline: starting analysis", zap.Int("documents", len(req.Documents)))

	// Phase 1: pull text out of every document. Unreadable files
	// contribute nothing rather than aborting the run.
	setStatus(model.RunStatusExtracting)
	texts := make([]string, 0, len(req.Documents))
	for _, path := range req.Documents {
		if text := o.extractor.Extract(ctx, path); text != "" {
			texts = append(texts, text)
		}
	}
	corpus := BuildCorpus(texts, req.Writeup, o.cfg.Analysis.MaxCorpusChars)
	record := DecodeCompanyRecord(ctx, o.llm, corpus, req.CompanyName)
	log.Info("pipeline: company record decoded",
		zap.Int("documents_read", len(texts)),
		zap.Float64("extraction_confidence", record.ExtractionConfidence["overall"]))

	// Phase 2: run all analysis units in parallel. Units never return
	// errors; a unit that panics is captured as a degraded result.
	setStatus(model.RunStatusAnalyzing)
	results := o.runUnits(ctx, record)

	// Phase 3: synthesis.
	setStatus(model.RunStatusSynthesizing)
	report := Synthesize(req, record, results, run.ID)

	if saveErr := o.store.SaveReport(ctx, run.ID, report, model.RunStatusCompleted); saveErr != nil {
		log.Warn("pipeline: failed to persist report", zap.Error(saveErr))
	}

	log.Info("pipeline: analysis complete",
		zap.Float64("score", report.ExecutiveSummary.OverallScore),
		zap.String("recommendation", report.ExecutiveSummary.Recommendation))
	return report
}

// runUnits fans the units out with a shared deadline per unit. The
// result slice preserves unit registration order.
func (o *Orchestrator) runUnits(ctx context.Context, record model.CompanyRecord) []model.UnitResult {
	results := make([]model.UnitResult, len(o.units))

	g, gctx := errgroup.WithContext(ctx)
	for i, unit := range o.units {
		g.Go(func() error {
			unitCtx, cancel := context.WithTimeout(gctx, o.cfg.Analysis.UnitTimeout())
			defer cancel()
			results[i] = o.runUnit(unitCtx, unit, record)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// runUnit is the isolation boundary: a panicking unit costs only its
// own slot in the result set.
func (o *Orchestrator) runUnit(ctx context.Context, unit Unit, record model.CompanyRecord) (result model.UnitResult) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("pipeline: unit panicked",
				zap.String("unit", unit.Name()), zap.Any("panic", r))
			result = degradedResult(unit.Name(), r)
		}
	}()
	return unit.Process(ctx, record)
}

// Health reports readiness per component for the health endpoint.
func (o *Orchestrator) Health() map[string]string {
	status := map[string]string{}
	for _, u := range o.units {
		if o.initErr != "" {
			status[u.Name()] = "error"
		} else {
			status[u.Name()] = "ready"
		}
	}
	return status
}
