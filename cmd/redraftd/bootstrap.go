package main

import (
	"log/slog"

	"redraft/internal/config"
	"redraft/internal/publish"
	"redraft/internal/queue"
	"redraft/internal/services/rewrite"
	"redraft/internal/transform"
	"redraft/internal/workflow"
)

func buildStages(cfg *config.Config, store *queue.Store, logger *slog.Logger) workflow.StageSet {
	return workflow.StageSet{
		Transformer: transform.New(cfg, store, logger, rewrite.NewClient(cfg.Rewrite)),
		Publisher:   publish.New(cfg, store, logger),
	}
}
