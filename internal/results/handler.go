package results

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mathmend-backend/internal/documents"
	"mathmend-backend/internal/ocr"
	"mathmend-backend/internal/shared/server/respond"
)

const previewLength = 200

// Handler wires HTTP handlers to the pipeline.
type Handler struct {
	Pipeline *Pipeline
}

// NewHandler constructs a Handler.
func NewHandler(p *Pipeline) *Handler {
	return &Handler{Pipeline: p}
}

// RegisterRoutes attaches processing and fetch routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/process-ocr", h.process)
	rg.GET("/ocr-results/:documentId", h.fetch)
}

type processRequest struct {
	DocumentID string `json:"documentId"`
}

type processResultPreview struct {
	OriginalText     string  `json:"originalText"`
	Confidence       float64 `json:"confidence"`
	LaTeXCodePreview string  `json:"latexCodePreview"`
}

type processResponse struct {
	Success    bool                 `json:"success"`
	DocumentID string               `json:"documentId"`
	Result     processResultPreview `json:"result"`
}

func (h *Handler) process(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.DocumentID = strings.TrimSpace(req.DocumentID)
	if req.DocumentID == "" {
		respond.Error(c, http.StatusBadRequest, "documentId is required")
		return
	}
	c.Set("documentId", req.DocumentID)

	doc, res, err := h.Pipeline.Process(c.Request.Context(), req.DocumentID)
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "Document not found")
		case errors.Is(err, documents.ErrInvalidTransition):
			respond.Error(c, http.StatusConflict, err.Error())
		case errors.Is(err, ocr.ErrPDFTooLarge):
			respond.Error(c, http.StatusBadRequest, ocr.MsgPDFTooLarge)
		default:
			respond.Error(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	c.Set("statusTransition", string(documents.StatusProcessing)+"->"+string(doc.Status))
	respond.OK(c, processResponse{
		Success:    true,
		DocumentID: doc.ID,
		Result: processResultPreview{
			OriginalText:     preview(res.OriginalText),
			Confidence:       res.Confidence,
			LaTeXCodePreview: preview(res.LaTeXCode),
		},
	})
}

type fetchResponse struct {
	Success bool       `json:"success"`
	Results ResultView `json:"results"`
}

func (h *Handler) fetch(c *gin.Context) {
	documentID := c.Param("documentId")
	c.Set("documentId", documentID)

	view, err := h.Pipeline.Fetch(c.Request.Context(), documentID)
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "Document not found")
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "No OCR results found for this document")
		default:
			respond.Error(c, http.StatusInternalServerError, "Failed to fetch OCR results")
		}
		return
	}

	respond.OK(c, fetchResponse{Success: true, Results: view})
}

func preview(s string) string {
	if len(s) <= previewLength {
		return s
	}
	return s[:previewLength] + "..."
}
