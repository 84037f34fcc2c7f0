// Package repository contém as implementações dos repositórios para acesso aos dados
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/vfg2006/sales-analytics-api/infrastructure/database"
	"github.com/vfg2006/sales-analytics-api/internal/domain"
)

// Máximo de linhas por INSERT multi-valores; mantém o número de parâmetros abaixo dos limites do sqlite e do postgres
const maxRowsPerStatement = 500

var salesColumns = []string{
	"date",
	"product_id",
	"product_name",
	"region",
	"quantity",
	"unit_price",
	"total_revenue",
}

type SalesRepository interface {
	// InsertBatch grava todas as vendas usando q; retorna o número de linhas inseridas
	InsertBatch(ctx context.Context, q database.Queryer, sales []*domain.Sale) (int64, error)
	MonthlySummary(ctx context.Context, q database.Queryer, filters domain.SalesFilters) ([]*domain.MonthlySummary, error)
	// TopProducts ignora filters.ProductID
	TopProducts(ctx context.Context, q database.Queryer, filters domain.SalesFilters, limit int) ([]*domain.TopProduct, error)
}

type salesRepository struct {
	dialect database.Dialect
}

func NewSalesRepository(dialect database.Dialect) SalesRepository {
	return &salesRepository{
		dialect: dialect,
	}
}

func (r *salesRepository) InsertBatch(ctx context.Context, q database.Queryer, sales []*domain.Sale) (int64, error) {
	var inserted int64

	for start := 0; start < len(sales); start += maxRowsPerStatement {
		end := min(start+maxRowsPerStatement, len(sales))

		query := r.dialect.StatementBuilder().
			Insert(database.SalesTable).
			Columns(salesColumns...)

		for _, sale := range sales[start:end] {
			query = query.Values(
				sale.Date.Format(time.DateOnly),
				sale.ProductID,
				sale.ProductName,
				sale.Region,
				sale.Quantity,
				sale.UnitPrice,
				sale.TotalRevenue,
			)
		}

		sqlQuery, args, err := query.ToSql()
		if err != nil {
			return inserted, fmt.Errorf("erro ao construir query de inserção: %w", err)
		}

		result, err := q.Exec(ctx, sqlQuery, args...)
		if err != nil {
			return inserted, wrapStoreError("erro ao executar query de inserção", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("erro ao obter número de linhas afetadas: %w", err)
		}
		inserted += affected
	}

	return inserted, nil
}

func (r *salesRepository) MonthlySummary(ctx context.Context, q database.Queryer, filters domain.SalesFilters) ([]*domain.MonthlySummary, error) {
	sqlQuery, args, err := r.monthlySummaryQuery(filters).ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := q.Query(ctx, sqlQuery, args...)
	if err != nil {
		return nil, wrapStoreError("erro ao executar a query", err)
	}
	defer rows.Close()

	summaries := make([]*domain.MonthlySummary, 0)
	for rows.Next() {
		summary, err := scanMonthlySummary(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear resumo mensal: %w", err)
		}
		summaries = append(summaries, summary)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return summaries, nil
}

func (r *salesRepository) TopProducts(ctx context.Context, q database.Queryer, filters domain.SalesFilters, limit int) ([]*domain.TopProduct, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limite inválido: %d", limit)
	}

	sqlQuery, args, err := r.topProductsQuery(filters, limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := q.Query(ctx, sqlQuery, args...)
	if err != nil {
		return nil, wrapStoreError("erro ao executar a query", err)
	}
	defer rows.Close()

	products := make([]*domain.TopProduct, 0, limit)
	for rows.Next() {
		product, err := scanTopProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear produto: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return products, nil
}

// monthlySummaryQuery monta a consulta base e acrescenta apenas os filtros informados
func (r *salesRepository) monthlySummaryQuery(filters domain.SalesFilters) squirrel.SelectBuilder {
	month := r.dialect.MonthExpr("date")

	query := r.dialect.StatementBuilder().
		Select(
			month+" AS month",
			"SUM("+r.dialect.MoneyExpr("total_revenue")+") AS total_revenue",
			"SUM(quantity) AS total_quantity",
			"AVG("+r.dialect.MoneyExpr("unit_price")+") AS avg_unit_price",
		).
		From(database.SalesTable)

	query = applyDateAndRegion(query, filters)
	if filters.ProductID != nil {
		query = query.Where(squirrel.Eq{"product_id": *filters.ProductID})
	}

	return query.
		GroupBy(month).
		OrderBy("month ASC")
}

func (r *salesRepository) topProductsQuery(filters domain.SalesFilters, limit int) squirrel.SelectBuilder {
	query := r.dialect.StatementBuilder().
		Select(
			"product_id",
			"product_name",
			"SUM("+r.dialect.MoneyExpr("total_revenue")+") AS total_revenue",
			"SUM(quantity) AS total_quantity",
		).
		From(database.SalesTable)

	query = applyDateAndRegion(query, filters)

	return query.
		GroupBy("product_id", "product_name").
		OrderBy("total_revenue DESC", "product_id ASC").
		Limit(uint64(limit))
}

func applyDateAndRegion(query squirrel.SelectBuilder, filters domain.SalesFilters) squirrel.SelectBuilder {
	if filters.StartDate != nil {
		query = query.Where(squirrel.GtOrEq{"date": filters.StartDate.Format(time.DateOnly)})
	}
	if filters.EndDate != nil {
		query = query.Where(squirrel.LtOrEq{"date": filters.EndDate.Format(time.DateOnly)})
	}
	if filters.Region != nil {
		query = query.Where(squirrel.Eq{"region": *filters.Region})
	}
	return query
}

func scanMonthlySummary(rows *sql.Rows) (*domain.MonthlySummary, error) {
	summary := &domain.MonthlySummary{}
	var totalRevenue, avgUnitPrice decimal.Decimal

	err := rows.Scan(
		&summary.Month,
		&totalRevenue,
		&summary.TotalQuantity,
		&avgUnitPrice,
	)
	if err != nil {
		return nil, err
	}

	summary.TotalRevenue = totalRevenue.InexactFloat64()
	summary.AvgUnitPrice = avgUnitPrice.InexactFloat64()

	return summary, nil
}

func scanTopProduct(rows *sql.Rows) (*domain.TopProduct, error) {
	product := &domain.TopProduct{}
	var totalRevenue decimal.Decimal

	err := rows.Scan(
		&product.ProductID,
		&product.ProductName,
		&totalRevenue,
		&product.TotalQuantity,
	)
	if err != nil {
		return nil, err
	}

	product.TotalRevenue = totalRevenue.InexactFloat64()

	return product, nil
}

func wrapStoreError(msg string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("%s: %w (código: %s)", msg, pqErr, pqErr.Code)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
