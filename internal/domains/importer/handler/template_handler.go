package handler

import (
	"net/http"

	"bookquote-backend/internal/domains/importer/model"
	"bookquote-backend/internal/domains/importer/service"
	"bookquote-backend/internal/shared/middleware"
	"bookquote-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TemplateHandler struct {
	service *service.TemplateService
}

func NewTemplateHandler(svc *service.TemplateService) *TemplateHandler {
	return &TemplateHandler{service: svc}
}

// CreateTemplate - POST /v1/import-templates
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	tenantID, ok := middleware.TenantFromContext(c)
	if !ok {
		response.Unauthorized(c, "tenant not found in context")
		return
	}

	var req model.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	tpl, err := h.service.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		response.UnprocessableEntity(c, "failed to create template", err.Error())
		return
	}

	response.Success(c, http.StatusCreated, tpl)
}

// ListTemplates - GET /v1/import-templates
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	tenantID, ok := middleware.TenantFromContext(c)
	if !ok {
		response.Unauthorized(c, "tenant not found in context")
		return
	}

	templates, err := h.service.List(c.Request.Context(), tenantID)
	if err != nil {
		response.InternalError(c, "failed to list templates")
		return
	}

	response.Success(c, http.StatusOK, templates)
}

// GetTemplate - GET /v1/import-templates/:id
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	tenantID, ok := middleware.TenantFromContext(c)
	if !ok {
		response.Unauthorized(c, "tenant not found in context")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "id must be a valid UUID")
		return
	}

	tpl, err := h.service.Get(c.Request.Context(), tenantID, id)
	if err != nil {
		response.NotFound(c, err.Error())
		return
	}

	response.Success(c, http.StatusOK, tpl)
}

// DeleteTemplate - DELETE /v1/import-templates/:id
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	tenantID, ok := middleware.TenantFromContext(c)
	if !ok {
		response.Unauthorized(c, "tenant not found in context")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "id must be a valid UUID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), tenantID, id); err != nil {
		response.NotFound(c, err.Error())
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
