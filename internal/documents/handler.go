package documents

import (
	"errors"
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

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/upload-document", h.upload)
}

type uploadResponse struct {
	Success    bool   `json:"success"`
	DocumentID string `json:"documentId"`
	FileName   string `json:"fileName"`
	FilePath   string `json:"filePath"`
	UserID     string `json:"userId"`
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "No file uploaded")
		return
	}
	if fileHeader.Size > MaxUploadSize {
		respond.Error(c, http.StatusBadRequest, "File exceeds the 10MB limit")
		return
	}

	mathType := strings.TrimSpace(c.PostForm("mathType"))
	if mathType == "" {
		mathType = "Other"
	}
	prompt := strings.TrimSpace(c.PostForm("prompt"))

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "Unable to read uploaded file")
		return
	}
	defer file.Close()

	doc, err := h.Svc.Upload(c.Request.Context(), userID, UploadInput{
		FileName: fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
		MathType: mathType,
		Prompt:   prompt,
		Size:     fileHeader.Size,
		File:     file,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, err.Error())
		default:
			respond.Error(c, http.StatusInternalServerError, "Failed to upload document")
		}
		return
	}

	respond.JSON(c, http.StatusOK, uploadResponse{
		Success:    true,
		DocumentID: doc.ID,
		FileName:   doc.FileName,
		FilePath:   doc.FileURL,
		UserID:     doc.UserID,
	})
}
