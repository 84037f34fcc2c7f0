package database

import "fmt"

const SalesTable = "sales"

// Index descreve um índice de apoio da tabela de fatos
type Index struct {
	Name    string
	Columns string
}

// SalesIndexes cobre todos os filtros das agregações (data, produto, região) e o agrupamento por data+produto
var SalesIndexes = []Index{
	{Name: "idx_date", Columns: "date"},
	{Name: "idx_product_id", Columns: "product_id"},
	{Name: "idx_region", Columns: "region"},
	{Name: "idx_date_product", Columns: "date, product_id"},
}

// Limites de largura das colunas de texto
const (
	ProductIDMaxLength   = 50
	ProductNameMaxLength = 100
	RegionMaxLength      = 50
)

func (d Dialect) createSalesTable() string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id %s,
			date DATE NOT NULL,
			product_id VARCHAR(%d) NOT NULL,
			product_name VARCHAR(%d) NOT NULL,
			region VARCHAR(%d) NOT NULL,
			quantity %s NOT NULL CHECK (quantity >= 0),
			unit_price %s NOT NULL CHECK (%s >= 0),
			total_revenue %s NOT NULL
		)`,
		SalesTable,
		d.idColumn,
		ProductIDMaxLength,
		ProductNameMaxLength,
		RegionMaxLength,
		d.integerType,
		d.moneyType,
		d.MoneyExpr("unit_price"),
		d.moneyType,
	)
}

func (d Dialect) createIndex(index Index) string {
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)", index.Name, SalesTable, index.Columns)
}

// SchemaStatements retorna o DDL idempotente da tabela de vendas e seus índices
func (d Dialect) SchemaStatements() []string {
	statements := []string{d.createSalesTable()}
	for _, index := range SalesIndexes {
		statements = append(statements, d.createIndex(index))
	}
	return statements
}
