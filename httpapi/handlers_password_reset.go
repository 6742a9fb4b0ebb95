package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uglydojo/q63"
)

const (
	resetRequestedMessage = "If an account exists with that email, a reset link has been sent."
	resetConfirmedMessage = "Password has been reset. You can now log in."
)

type resetRequest struct {
	Email string `json:"email"`
}

type resetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (s *Server) handleResetRequest(c *gin.Context) {
	const generic = "Request failed. Please try again."

	var req resetRequest
	if err := decodeBody(c, &req, q63.ErrEmailRequired); err != nil {
		s.fail(c, err, generic)
		return
	}

	if err := s.engine.RequestPasswordReset(c.Request.Context(), requestOrigin(c.Request), req.Email); err != nil {
		s.fail(c, err, generic)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": resetRequestedMessage})
}

func (s *Server) handleResetConfirm(c *gin.Context) {
	const generic = "Password reset failed. Please try again."

	var req resetConfirmRequest
	if err := decodeBody(c, &req, q63.ErrResetFieldsRequired); err != nil {
		s.fail(c, err, generic)
		return
	}

	if err := s.engine.ConfirmPasswordReset(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		s.fail(c, err, generic)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": resetConfirmedMessage})
}
