package main

import (
	"github.com/hibiken/asynq"

	importerJob "bookquote-backend/internal/domains/importer/job"
	"bookquote-backend/internal/shared"
	"bookquote-backend/pkg/container"
)

// HandlerRegistry holds all job handlers.
type HandlerRegistry struct {
	pruneArtifacts *importerJob.PruneArtifactsHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		pruneArtifacts: importerJob.NewPruneArtifactsHandler(c.Storage, c.Config.Import),
	}
}

func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypePruneImportArtifacts, h.pruneArtifacts.ProcessTask)
}
