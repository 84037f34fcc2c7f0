package domain

import "time"

// SalesFilters são os filtros opcionais das agregações; nil significa filtro não informado
type SalesFilters struct {
	StartDate *time.Time
	EndDate   *time.Time
	Region    *string
	ProductID *string
}

// MonthlySummary é a projeção mensal calculada sob demanda
type MonthlySummary struct {
	Month         string  `json:"month"` // Formato YYYY-MM
	TotalRevenue  float64 `json:"total_revenue"`
	TotalQuantity int64   `json:"total_quantity"`
	AvgUnitPrice  float64 `json:"avg_unit_price"`
}

// TopProduct é a projeção de produto por receita
type TopProduct struct {
	ProductID     string  `json:"product_id"`
	ProductName   string  `json:"product_name"`
	TotalRevenue  float64 `json:"total_revenue"`
	TotalQuantity int64   `json:"total_quantity"`
}
