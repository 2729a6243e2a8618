package handlers

import (
	"net/http"

	"parking/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GET /api/auth/status
func (h *Handler) AuthStatus(c *gin.Context) {
	configured, err := h.Auth.HasCredentials(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	who, authed := middleware.GetAdmin(c)
	c.JSON(http.StatusOK, gin.H{
		"configured":    configured,
		"authenticated": authed,
		"email":         who.Email,
	})
}

// POST /api/auth/setup creates the first admin and logs it in.
func (h *Handler) SetupAdmin(c *gin.Context) {
	var req credentialsRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := h.Auth.Setup(c.Request.Context(), req.Email, req.Password); err != nil {
		RespondDomainError(c, err)
		return
	}
	h.issueToken(c, http.StatusCreated, req)
}

// POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req credentialsRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	h.issueToken(c, http.StatusOK, req)
}

func (h *Handler) issueToken(c *gin.Context, status int, req credentialsRequest) {
	token, exp, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(status, gin.H{"token": token, "expires_at": exp})
}

// POST /api/auth/logout
func (h *Handler) Logout(c *gin.Context) {
	h.Auth.Logout(middleware.BearerToken(c))
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// PUT /api/auth/credentials
func (h *Handler) UpdateCredentials(c *gin.Context) {
	var req credentialsRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := h.Auth.SetCredentials(c.Request.Context(), req.Email, req.Password); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "credentials updated"})
}

type resetRequest struct {
	Confirmation string `json:"confirmation"`
}

// POST /api/admin/reset deletes every ticket.
func (h *Handler) ResetData(c *gin.Context) {
	var req resetRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := h.tickets(c).Reset(c.Request.Context(), req.Confirmation); err != nil {
		RespondDomainError(c, err)
		return
	}
	if h.Poller != nil {
		_ = h.Poller.Refresh(c.Request.Context())
	}
	c.JSON(http.StatusOK, gin.H{"message": "all tickets deleted"})
}
