package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"bookquote-backend/internal/domains/importer/model"
	"bookquote-backend/internal/domains/importer/service"
	"bookquote-backend/internal/infrastructure/storage"
	"bookquote-backend/internal/shared/middleware"
	"bookquote-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type ImportHandler struct {
	service *service.ImportService
	storage *storage.MinIOStorage
	prefix  string
}

func NewImportHandler(svc *service.ImportService, store *storage.MinIOStorage, artifactPrefix string) *ImportHandler {
	return &ImportHandler{
		service: svc,
		storage: store,
		prefix:  artifactPrefix,
	}
}

// ValidateUpload - POST /v1/imports/validate
// Dry run: parses the uploaded file, suggests a mapping and reports
// whether a saved template matches. Never touches the catalog.
func (h *ImportHandler) ValidateUpload(c *gin.Context) {
	tenantID, ok := middleware.TenantFromContext(c)
	if !ok {
		response.Unauthorized(c, "tenant not found in context")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required (multipart/form-data)")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		response.InternalError(c, "failed to read uploaded file")
		return
	}
	defer file.Close()

	result, err := h.service.ValidateUpload(c.Request.Context(), tenantID, fileHeader.Filename, file)
	if err != nil {
		response.UnprocessableEntity(c, "upload validation failed", err.Error())
		return
	}

	response.Success(c, http.StatusOK, result)
}

// RunImport - POST /v1/imports
// Multipart form: "file" plus either a "mapping" JSON object or a
// "template_id". Runs synchronously and returns the full report.
func (h *ImportHandler) RunImport(c *gin.Context) {
	tenantID, ok := middleware.TenantFromContext(c)
	if !ok {
		response.Unauthorized(c, "tenant not found in context")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required (multipart/form-data)")
		return
	}

	req, err := parseRunRequest(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		response.UnprocessableEntity(c, "invalid import request", err.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		response.InternalError(c, "failed to read uploaded file")
		return
	}
	defer file.Close()

	log.Info().
		Str("tenant_id", tenantID.String()).
		Str("file_name", fileHeader.Filename).
		Int64("file_size", fileHeader.Size).
		Msg("Received import request")

	report, err := h.service.Run(c.Request.Context(), tenantID, fileHeader.Filename, file, req)
	if err != nil {
		// Fatal input problems only; row-level failures live in the report.
		response.UnprocessableEntity(c, "import failed", err.Error())
		return
	}

	response.Success(c, http.StatusOK, report)
}

// DownloadArtifact - GET /v1/imports/artifacts/*key
// Streams a stored audit artifact. The key is tenant-checked: artifacts
// live under <prefix>/<tenant_id>/... and cross-tenant keys are rejected.
func (h *ImportHandler) DownloadArtifact(c *gin.Context) {
	tenantID, ok := middleware.TenantFromContext(c)
	if !ok {
		response.Unauthorized(c, "tenant not found in context")
		return
	}

	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" {
		response.BadRequest(c, "artifact key is required")
		return
	}
	if !strings.HasPrefix(key, h.prefix+"/"+tenantID.String()+"/") {
		response.Forbidden(c, "artifact does not belong to this tenant")
		return
	}

	data, err := h.storage.Download(c.Request.Context(), key)
	if err != nil {
		response.NotFound(c, "artifact not found")
		return
	}

	c.Data(http.StatusOK, "application/json", data)
}

func parseRunRequest(c *gin.Context) (model.RunImportRequest, error) {
	var req model.RunImportRequest

	if raw := c.PostForm("mapping"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Mapping); err != nil {
			return req, fmt.Errorf("mapping must be a JSON object of header to field")
		}
	}
	if raw := c.PostForm("template_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return req, fmt.Errorf("template_id must be a valid UUID")
		}
		req.TemplateID = &id
	}
	req.SourceLabel = c.PostForm("source_label")
	req.Kind = model.ImportKind(c.PostForm("kind"))

	return req, nil
}
