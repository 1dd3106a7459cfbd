package domain

// CatalogEntry is a code/description pair exposed to form selects.
type CatalogEntry struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Accepted    bool   `json:"accepted"`
}

// TaxTreatmentCatalog lists SUNAT catalog 07. Only the four base codes are
// accepted as line input; the rest are listed for reference.
var TaxTreatmentCatalog = []CatalogEntry{
	{Code: "10", Description: "Gravado - Operación Onerosa", Accepted: true},
	{Code: "11", Description: "Gravado - Retiro por premio"},
	{Code: "12", Description: "Gravado - Retiro por donación"},
	{Code: "13", Description: "Gravado - Retiro"},
	{Code: "14", Description: "Gravado - Retiro por publicidad"},
	{Code: "15", Description: "Gravado - Bonificaciones"},
	{Code: "16", Description: "Gravado - Retiro por entrega a trabajadores"},
	{Code: "17", Description: "Gravado - IVAP"},
	{Code: "20", Description: "Exonerado - Operación Onerosa", Accepted: true},
	{Code: "21", Description: "Exonerado - Transferencia gratuita"},
	{Code: "30", Description: "Inafecto - Operación Onerosa", Accepted: true},
	{Code: "31", Description: "Inafecto - Retiro por bonificación"},
	{Code: "32", Description: "Inafecto - Retiro"},
	{Code: "33", Description: "Inafecto - Retiro por muestras médicas"},
	{Code: "34", Description: "Inafecto - Retiro por convenio colectivo"},
	{Code: "35", Description: "Inafecto - Retiro por premio"},
	{Code: "36", Description: "Inafecto - Retiro por publicidad"},
	{Code: "40", Description: "Exportación", Accepted: true},
}

var UnitOfMeasureCatalog = []CatalogEntry{
	{Code: string(UnitOfMeasureUnit), Description: "Unidad", Accepted: true},
	{Code: string(UnitOfMeasureService), Description: "Servicios", Accepted: true},
	{Code: string(UnitOfMeasureKilogram), Description: "Kilogramo", Accepted: true},
	{Code: string(UnitOfMeasureMeter), Description: "Metro", Accepted: true},
	{Code: string(UnitOfMeasureLiter), Description: "Litro", Accepted: true},
	{Code: string(UnitOfMeasureSet), Description: "Juego", Accepted: true},
	{Code: string(UnitOfMeasureDay), Description: "Día", Accepted: true},
	{Code: string(UnitOfMeasureHour), Description: "Hora", Accepted: true},
}

var DocumentTypeCatalog = []CatalogEntry{
	{Code: string(DocumentTypeFactura), Description: "Factura", Accepted: true},
	{Code: string(DocumentTypeBoleta), Description: "Boleta de Venta", Accepted: true},
}

var CurrencyCatalog = []CatalogEntry{
	{Code: string(CurrencyPEN), Description: "Soles", Accepted: true},
	{Code: string(CurrencyUSD), Description: "Dólares americanos", Accepted: true},
	{Code: string(CurrencyEUR), Description: "Euros", Accepted: true},
}
