package auth

import (
	"errors"
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

// RegisterRoutes attaches the account routes. They sit outside the
// authenticated /api group.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/register", h.register)
	r.POST("/login", h.login)
	r.POST("/verify", h.verify)
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	err := h.Svc.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailNotAllowed):
			respond.Error(c, http.StatusBadRequest, MsgEmailNotAllowed)
		default:
			var perr *ProviderError
			if errors.As(err, &perr) {
				respond.Error(c, http.StatusInternalServerError, perr.Message)
				return
			}
			respond.Error(c, http.StatusInternalServerError, "Error registering user")
		}
		return
	}

	respond.OK(c, messageResponse{
		Success: true,
		Message: "Registration successful. Check your email for verification.",
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	User    User   `json:"user"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.Svc.Login(c.Request.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		respond.Error(c, http.StatusUnauthorized, MsgInvalidCredentials)
		return
	}

	respond.OK(c, loginResponse{
		Success: true,
		Message: "Login successful",
		User:    session.User,
	})
}

type verifyRequestBody struct {
	Email            string `json:"email"`
	VerificationCode string `json:"verificationCode"`
}

func (h *Handler) verify(c *gin.Context) {
	var req verifyRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	_, err := h.Svc.Verify(c.Request.Context(), strings.TrimSpace(req.Email), req.VerificationCode)
	if err != nil {
		if errors.Is(err, ErrInvalidCode) {
			respond.Error(c, http.StatusBadRequest, "Invalid verification code.")
			return
		}
		respond.Error(c, http.StatusInternalServerError, "Error verifying email")
		return
	}

	respond.OK(c, messageResponse{
		Success: true,
		Message: "Email verified successfully",
	})
}
