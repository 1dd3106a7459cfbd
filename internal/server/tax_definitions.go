package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	taxdomain "github.com/smallbiznis/facturador/internal/tax/domain"
)

type createTaxDefinitionRequest struct {
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Rate        json.RawMessage `json:"rate"`
	Description *string         `json:"description"`
	IsEnabled   *bool           `json:"is_enabled"`
}

type updateTaxDefinitionRequest struct {
	Name        *string         `json:"name,omitempty"`
	Rate        json.RawMessage `json:"rate,omitempty"`
	Description *string         `json:"description,omitempty"`
}

func (s *Server) CreateTaxDefinition(c *gin.Context) {
	var req createTaxDefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	rate, err := parseRate(req.Rate)
	if err != nil || rate == nil {
		AbortWithError(c, taxdomain.ErrInvalidTaxRate)
		return
	}

	resp, err := s.taxSvc.Create(c.Request.Context(), taxdomain.CreateRequest{
		Code:        strings.TrimSpace(req.Code),
		Name:        strings.TrimSpace(req.Name),
		Rate:        *rate,
		Description: trimTaxString(req.Description),
		IsEnabled:   req.IsEnabled,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListTaxDefinitions(c *gin.Context) {
	var query struct {
		Name      string `form:"name"`
		Code      string `form:"code"`
		IsEnabled string `form:"is_enabled"`
		SortBy    string `form:"sort_by"`
		OrderBy   string `form:"order_by"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	isEnabled, err := parseOptionalBool(query.IsEnabled)
	if err != nil {
		AbortWithError(c, newValidationError("is_enabled", "invalid_is_enabled", "invalid is_enabled"))
		return
	}

	resp, err := s.taxSvc.List(c.Request.Context(), taxdomain.ListRequest{
		Name:      strings.TrimSpace(query.Name),
		Code:      strings.TrimSpace(query.Code),
		IsEnabled: isEnabled,
		SortBy:    strings.TrimSpace(query.SortBy),
		OrderBy:   strings.TrimSpace(query.OrderBy),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateTaxDefinition(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req updateTaxDefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	rate, err := parseRate(req.Rate)
	if err != nil {
		AbortWithError(c, taxdomain.ErrInvalidTaxRate)
		return
	}

	resp, err := s.taxSvc.Update(c.Request.Context(), taxdomain.UpdateRequest{
		ID:          id,
		Name:        trimTaxString(req.Name),
		Rate:        rate,
		Description: trimTaxString(req.Description),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DisableTaxDefinition(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.taxSvc.Disable(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// parseRate reads a rate given as a JSON number or string. Unlike item
// amounts, a malformed rate is rejected rather than coerced.
func parseRate(raw json.RawMessage) (*decimal.Decimal, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var rate decimal.Decimal
	if err := json.Unmarshal(raw, &rate); err != nil {
		return nil, err
	}
	return &rate, nil
}

func trimTaxString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}
