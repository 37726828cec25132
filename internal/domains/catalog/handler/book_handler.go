package handler

import (
	"net/http"

	"bookquote-backend/internal/domains/catalog/model"
	"bookquote-backend/internal/domains/catalog/service"
	"bookquote-backend/internal/shared/middleware"
	"bookquote-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookHandler struct {
	service *service.CatalogService
}

func NewBookHandler(svc *service.CatalogService) *BookHandler {
	return &BookHandler{service: svc}
}

// GetBook - GET /v1/books/:id
func (h *BookHandler) GetBook(c *gin.Context) {
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

	book, err := h.service.GetBook(c.Request.Context(), tenantID, id)
	if err == model.ErrBookNotFound {
		response.NotFound(c, "book not found")
		return
	}
	if err != nil {
		response.InternalError(c, "failed to fetch book")
		return
	}

	response.Success(c, http.StatusOK, book)
}

// LookupByISBN - GET /v1/books/lookup?isbn=...
func (h *BookHandler) LookupByISBN(c *gin.Context) {
	tenantID, ok := middleware.TenantFromContext(c)
	if !ok {
		response.Unauthorized(c, "tenant not found in context")
		return
	}

	raw := c.Query("isbn")
	if raw == "" {
		response.BadRequest(c, "isbn query parameter is required")
		return
	}

	book, err := h.service.LookupByISBN(c.Request.Context(), tenantID, raw)
	if err == model.ErrBookNotFound {
		response.NotFound(c, "book not found")
		return
	}
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, http.StatusOK, book)
}

// ListPricing - GET /v1/books/:id/pricing
func (h *BookHandler) ListPricing(c *gin.Context) {
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

	records, err := h.service.ListPricing(c.Request.Context(), tenantID, id)
	if err == model.ErrBookNotFound {
		response.NotFound(c, "book not found")
		return
	}
	if err != nil {
		response.InternalError(c, "failed to fetch pricing")
		return
	}

	response.Success(c, http.StatusOK, records)
}
