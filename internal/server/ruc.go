package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/facturador/internal/taxpayer"
)

type validateRUCRequest struct {
	RUC string `json:"ruc"`
}

type validateRUCResponse struct {
	RUC     string `json:"ruc"`
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// ValidateRUC reports the check result in the body; an invalid RUC is not
// a request error.
func (s *Server) ValidateRUC(c *gin.Context) {
	var req validateRUCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ruc := strings.TrimSpace(req.RUC)
	err := taxpayer.ValidateRUC(ruc)

	c.JSON(http.StatusOK, gin.H{"data": validateRUCResponse{
		RUC:     ruc,
		Valid:   err == nil,
		Message: taxpayer.Describe(err),
	}})
}
