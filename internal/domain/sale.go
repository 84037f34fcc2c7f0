// Package domain contém as estruturas de dados do domínio da aplicação
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale representa uma linha da tabela de fatos de vendas
type Sale struct {
	ID           int64           `json:"id"`
	Date         time.Time       `json:"date"`
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Region       string          `json:"region"`
	Quantity     int64           `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// Revenue calcula quantity × unit_price
func Revenue(quantity int64, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(quantity))
}
