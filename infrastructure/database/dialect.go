package database

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/sales-analytics-api/internal/config"
)

// Dialect agrupa as diferenças de SQL entre os bancos suportados
type Dialect struct {
	Name        string
	DriverName  string
	Placeholder squirrel.PlaceholderFormat

	idColumn    string
	moneyType   string
	moneyFormat string
	integerType string
	monthFormat string
}

var (
	SQLite = Dialect{
		Name:        config.DriverSQLite,
		DriverName:  "sqlite",
		Placeholder: squirrel.Question,
		// AUTOINCREMENT impede a reutilização de ids de linhas removidas
		idColumn:    "INTEGER PRIMARY KEY AUTOINCREMENT",
		// Valores monetários ficam como texto decimal exato; a afinidade NUMERIC os converteria em REAL
		moneyType:   "TEXT",
		moneyFormat: "CAST(%s AS REAL)",
		integerType: "INTEGER",
		monthFormat: "strftime('%%Y-%%m', %s)",
	}

	Postgres = Dialect{
		Name:        config.DriverPostgres,
		DriverName:  "postgres",
		Placeholder: squirrel.Dollar,
		idColumn:    "BIGSERIAL PRIMARY KEY",
		moneyType:   "NUMERIC",
		moneyFormat: "%s",
		integerType: "BIGINT",
		monthFormat: "to_char(%s, 'YYYY-MM')",
	}
)

// DialectFor retorna o dialeto correspondente ao driver configurado
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case config.DriverSQLite, "sqlite3":
		return SQLite, nil
	case config.DriverPostgres, "postgresql":
		return Postgres, nil
	default:
		return Dialect{}, fmt.Errorf("database: driver não suportado: %q", driver)
	}
}

// MonthExpr formata uma coluna de data como "YYYY-MM"
func (d Dialect) MonthExpr(column string) string {
	return fmt.Sprintf(d.monthFormat, column)
}

// MoneyExpr expõe uma coluna monetária como número para comparações e agregações
func (d Dialect) MoneyExpr(column string) string {
	return fmt.Sprintf(d.moneyFormat, column)
}

// StatementBuilder retorna um builder do squirrel com o placeholder do dialeto
func (d Dialect) StatementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(d.Placeholder)
}
