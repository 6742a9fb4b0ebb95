package httpapi

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uglydojo/q63"
	"github.com/uglydojo/q63/middleware"
)

type updateProgressRequest struct {
	Day       json.RawMessage `json:"day"`
	Practices json.RawMessage `json:"practices"`
}

func (s *Server) handleGetProgress(c *gin.Context) {
	const generic = "Failed to load progress."

	session, ok := middleware.SessionFromContext(c)
	if !ok {
		s.fail(c, q63.ErrUnauthorized, generic)
		return
	}

	view, err := s.engine.Progress(c.Request.Context(), session.Email)
	if err != nil {
		s.fail(c, err, generic)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"startDate": view.StartDate,
		"name":      view.Name,
		"progress":  view.Progress,
	})
}

func (s *Server) handlePutProgress(c *gin.Context) {
	const generic = "Failed to save progress."

	session, ok := middleware.SessionFromContext(c)
	if !ok {
		s.fail(c, q63.ErrUnauthorized, generic)
		return
	}

	var req updateProgressRequest
	if err := decodeBody(c, &req, q63.ErrInvalidDay); err != nil {
		s.fail(c, err, generic)
		return
	}

	res, err := s.engine.UpdateProgress(c.Request.Context(), session.Email, parseDay(req.Day), parsePractices(req.Practices))
	if err != nil {
		s.fail(c, err, generic)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"day":       res.Day,
		"score":     res.Score,
		"practices": res.Practices,
	})
}

// parseDay accepts a JSON number with no fractional part. Anything else maps
// to 0, which the engine rejects as out of range.
func parseDay(raw json.RawMessage) int {
	var f float64
	if len(raw) == 0 || json.Unmarshal(raw, &f) != nil {
		return 0
	}
	if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}

// parsePractices returns nil unless raw is a JSON object. Arrays, strings,
// numbers and null all count as "no practices supplied".
func parsePractices(raw json.RawMessage) map[string]any {
	var practices map[string]any
	if len(raw) == 0 || json.Unmarshal(raw, &practices) != nil {
		return nil
	}
	return practices
}
