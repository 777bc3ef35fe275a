package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/startup-analyst/internal/ocr"
	"github.com/sells-group/startup-analyst/internal/pipeline"
	"github.com/sells-group/startup-analyst/internal/resilience"
	"github.com/sells-group/startup-analyst/internal/store"
	"github.com/sells-group/startup-analyst/pkg/llm"
)

// analystEnv holds the initialized store, clients, and orchestrator
// shared by the analyze/runs/serve commands.
type analystEnv struct {
	Store        store.Store
	Orchestrator *pipeline.Orchestrator
}

// Close releases resources held by the environment.
func (e *analystEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv sets up the store, the generative client, and the
// orchestrator. A missing API key is not fatal here: the orchestrator
// records the failure on each run so status endpoints keep working.
// Callers should defer env.Close().
func initEnv(ctx context.Context) (*analystEnv, error) {
	st, err := store.New(ctx, cfg.Store)
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	var client llm.Client
	base, err := llm.New(ctx, llm.Options{
		Provider:  cfg.LLM.Provider,
		APIKey:    cfg.LLM.Key,
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
	})
	if err != nil {
		zap.L().Warn("generative client unavailable, runs will fail until configured", zap.Error(err))
	} else {
		client = llm.NewResilient(base, cfg.LLM.RequestsPerSecond, cfg.LLM.Burst, resilience.RetryConfig{
			MaxAttempts: cfg.LLM.MaxAttempts,
		})
	}

	extractor := ocr.NewExtractor(cfg.OCR.PdfToTextPath)

	return &analystEnv{
		Store:        st,
		Orchestrator: pipeline.New(cfg, st, client, extractor),
	}, nil
}
