package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/facturador/internal/audit/domain"
)

func (s *Server) ListSubmissions(c *gin.Context) {
	var query struct {
		SessionID      string `form:"session_id"`
		DocumentNumber string `form:"document_number"`
		Outcome        string `form:"outcome"`
		Limit          int    `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, newValidationError("limit", "invalid_limit", "invalid limit"))
		return
	}

	logs, err := s.submissions.List(c.Request.Context(), auditdomain.ListRequest{
		SessionID:      strings.TrimSpace(query.SessionID),
		DocumentNumber: strings.ToUpper(strings.TrimSpace(query.DocumentNumber)),
		Outcome:        query.Outcome,
		Limit:          query.Limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": logs})
}
