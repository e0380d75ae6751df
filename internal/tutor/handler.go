package tutor

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

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

// RegisterRoutes attaches the question route to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/ask-question", h.ask)
}

type askRequest struct {
	Question   string `json:"question"`
	MathType   string `json:"mathType"`
	DocumentID string `json:"documentId"`
}

type askResponse struct {
	Success  bool   `json:"success"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	MathType string `json:"mathType"`
}

func (h *Handler) ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		respond.Error(c, http.StatusBadRequest, "question is required")
		return
	}

	answer, err := h.Svc.Ask(c.Request.Context(), req.Question, req.MathType, req.DocumentID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "Error processing question")
		return
	}

	respond.OK(c, askResponse{
		Success:  true,
		Question: answer.Question,
		Answer:   answer.Answer,
		MathType: answer.MathType,
	})
}
