package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uglydojo/q63"
)

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Success bool     `json:"success"`
	Token   string   `json:"token"`
	User    q63.User `json:"user"`
}

func (s *Server) handleRegister(c *gin.Context) {
	const generic = "Registration failed. Please try again."

	var req registerRequest
	if err := decodeBody(c, &req, q63.ErrRegisterFieldsRequired); err != nil {
		s.fail(c, err, generic)
		return
	}

	res, err := s.engine.Register(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		s.fail(c, err, generic)
		return
	}
	c.JSON(http.StatusOK, authResponse{Success: true, Token: res.Token, User: res.User})
}

func (s *Server) handleLogin(c *gin.Context) {
	const generic = "Login failed. Please try again."

	var req loginRequest
	if err := decodeBody(c, &req, q63.ErrLoginFieldsRequired); err != nil {
		s.fail(c, err, generic)
		return
	}

	res, err := s.engine.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(c, err, generic)
		return
	}
	c.JSON(http.StatusOK, authResponse{Success: true, Token: res.Token, User: res.User})
}
