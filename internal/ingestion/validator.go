package ingestion

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vfg2006/sales-analytics-api/pkg/log"
	"github.com/vfg2006/sales-analytics-api/pkg/utils"
)

var RequiredColumns = []string{
	"date",
	"product_id",
	"product_name",
	"region",
	"quantity",
	"unit_price",
}

var dateLayouts = []string{
	time.DateOnly,
	"2006/01/02",
	time.DateTime,
	time.RFC3339,
	"01/02/2006",
}

// Row é uma linha já tipada, na mesma ordem do arquivo
type Row struct {
	Date         time.Time
	ProductID    string
	ProductName  string
	Region       string
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	TotalRevenue *decimal.Decimal
}

// Frame é o resultado tipado de uma validação bem-sucedida
type Frame struct {
	Rows []Row
}

func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Rows)
}

// Validator faz a checagem estrutural do arquivo inteiro antes de qualquer gravação
type Validator struct {
	logger log.Logger
}

func NewValidator(logger log.Logger) *Validator {
	if logger == nil {
		logger = log.L
	}
	return &Validator{logger: logger}
}

// Validate aplica, nesta ordem, colunas obrigatórias, conversão de tipos e valores não negativos.
// Qualquer falha rejeita o arquivo todo e o motivo vai para o log.
func (v *Validator) Validate(ds *Dataset) (*Frame, bool) {
	if ds == nil {
		v.logger.Warn("Validação: dataset ausente")
		return nil, false
	}

	var missing []string
	for _, column := range RequiredColumns {
		if _, ok := ds.Column(column); !ok {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		v.logger.WithField("ingest_missing_columns", missing).
			Warnf("Validação: colunas obrigatórias ausentes: %s", strings.Join(missing, ", "))
		return nil, false
	}

	idx := func(name string) int {
		i, _ := ds.Column(name)
		return i
	}
	dateCol, productIDCol, productNameCol := idx("date"), idx("product_id"), idx("product_name")
	regionCol, quantityCol, unitPriceCol := idx("region"), idx("quantity"), idx("unit_price")

	frame := &Frame{Rows: make([]Row, 0, ds.Len())}
	for i, record := range ds.Records {
		position := i + 1

		date, err := parseDate(field(record, dateCol))
		if err != nil {
			v.logParseFailure(position, "date", field(record, dateCol), err)
			return nil, false
		}

		quantity, err := parseNumber(field(record, quantityCol))
		if err != nil {
			v.logParseFailure(position, "quantity", field(record, quantityCol), err)
			return nil, false
		}

		unitPrice, err := parseNumber(field(record, unitPriceCol))
		if err != nil {
			v.logParseFailure(position, "unit_price", field(record, unitPriceCol), err)
			return nil, false
		}

		frame.Rows = append(frame.Rows, Row{
			Date:        date,
			ProductID:   field(record, productIDCol),
			ProductName: field(record, productNameCol),
			Region:      field(record, regionCol),
			Quantity:    quantity,
			UnitPrice:   unitPrice,
		})
	}

	for i, row := range frame.Rows {
		if row.Quantity.IsNegative() || row.UnitPrice.IsNegative() {
			v.logger.WithFields(log.Fields{
				"ingest_row":        i + 1,
				"ingest_quantity":   row.Quantity.String(),
				"ingest_unit_price": row.UnitPrice.String(),
			}).Warnf("Validação: valores negativos encontrados, primeira ocorrência na linha %d", i+1)
			return nil, false
		}
	}

	return frame, true
}

func (v *Validator) logParseFailure(position int, column, value string, err error) {
	v.logger.WithFields(log.Fields{
		"ingest_row":    position,
		"ingest_column": column,
		"ingest_value":  value,
	}).WithError(err).Warnf("Validação: valor inválido na linha %d, coluna %s", position, column)
}

// field devolve "" para colunas ausentes em linhas mais curtas que o cabeçalho
func field(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)

	var err error
	for _, layout := range dateLayouts {
		var date time.Time
		date, err = time.Parse(layout, value)
		if err == nil {
			return utils.TruncateToDay(date), nil
		}
	}

	return time.Time{}, err
}

func parseNumber(value string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(value))
}
