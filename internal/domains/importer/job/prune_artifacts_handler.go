package job

import (
	"context"
	"time"

	"bookquote-backend/internal/config"
	"bookquote-backend/internal/infrastructure/storage"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// PruneArtifactsPayload is empty for now; retention settings come from
// config, not the task.
type PruneArtifactsPayload struct{}

// PruneArtifactsHandler deletes import audit artifacts older than the
// configured retention window.
type PruneArtifactsHandler struct {
	storage *storage.MinIOStorage
	cfg     config.ImportConfig
}

func NewPruneArtifactsHandler(store *storage.MinIOStorage, cfg config.ImportConfig) *PruneArtifactsHandler {
	return &PruneArtifactsHandler{
		storage: store,
		cfg:     cfg,
	}
}

func (h *PruneArtifactsHandler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -h.cfg.ArtifactTTLDays)

	deleted, err := h.storage.DeleteOlderThan(ctx, h.cfg.ArtifactPrefix+"/", cutoff)
	if err != nil {
		log.Error().Err(err).Msg("Artifact prune failed")
		return err
	}

	log.Info().
		Int("deleted", deleted).
		Time("cutoff", cutoff).
		Msg("Pruned import artifacts")
	return nil
}
