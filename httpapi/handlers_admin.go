package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uglydojo/q63/middleware"
)

func (s *Server) handleExportEmails(c *gin.Context) {
	const generic = "Export failed. Please try again."

	key := middleware.AdminKey(c.GetHeader("Authorization"))
	export, err := s.engine.ExportEmails(c.Request.Context(), key)
	if err != nil {
		s.fail(c, err, generic)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   export.Count,
		"emails":  export.Emails,
	})
}
