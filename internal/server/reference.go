package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/facturador/internal/invoice/domain"
	"github.com/smallbiznis/facturador/internal/invoice/format"
)

type currencyResponse struct {
	invoicedomain.CatalogEntry
	Symbol string `json:"symbol"`
}

func (s *Server) ListTaxTreatments(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": invoicedomain.TaxTreatmentCatalog})
}

func (s *Server) ListUnitsOfMeasure(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": invoicedomain.UnitOfMeasureCatalog})
}

func (s *Server) ListDocumentTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": invoicedomain.DocumentTypeCatalog})
}

func (s *Server) ListCurrencies(c *gin.Context) {
	currencies := make([]currencyResponse, 0, len(invoicedomain.CurrencyCatalog))
	for _, entry := range invoicedomain.CurrencyCatalog {
		currencies = append(currencies, currencyResponse{
			CatalogEntry: entry,
			Symbol:       format.CurrencySymbol(invoicedomain.Currency(entry.Code)),
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": currencies})
}
