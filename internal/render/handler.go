package render

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mathmend-backend/internal/shared/server/middleware"
	"mathmend-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the render route to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/render-latex-pdf", h.render)
}

type renderLatexRequest struct {
	LaTeXCode  string `json:"latexCode"`
	DocumentID string `json:"documentId"`
}

type renderLatexResponse struct {
	Success bool   `json:"success"`
	PDFURL  string `json:"pdfUrl"`
}

func (h *Handler) render(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req renderLatexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.LaTeXCode = strings.TrimSpace(req.LaTeXCode)
	req.DocumentID = strings.TrimSpace(req.DocumentID)
	if req.LaTeXCode == "" || req.DocumentID == "" {
		respond.Error(c, http.StatusBadRequest, "Missing data")
		return
	}

	pdfURL, err := h.Svc.RenderAndStore(c.Request.Context(), userID, req.DocumentID, req.LaTeXCode)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "PDF generation failed")
		return
	}

	respond.OK(c, renderLatexResponse{Success: true, PDFURL: pdfURL})
}
