// Comando seeder gera um CSV de vendas de exemplo para testar o upload
package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	var (
		records = flag.IntP("records", "n", 1000, "quantidade de vendas geradas")
		output  = flag.StringP("output", "o", "data/sample_sales_data.csv", "arquivo CSV de saída")
		seed    = flag.Uint64("seed", 42, "semente do gerador aleatório")
	)
	flag.Parse()

	if *records <= 0 {
		logrus.Fatalf("Quantidade de registros inválida: %d", *records)
	}

	generated := generate(*records, *seed, time.Now())

	if err := os.MkdirAll(filepath.Dir(*output), 0o755); err != nil {
		logrus.WithError(err).Fatal("Erro ao criar diretório de saída")
	}

	file, err := os.Create(*output)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao criar arquivo de saída")
	}

	if err := writeCSV(file, generated); err != nil {
		_ = file.Close()
		logrus.WithError(err).Fatal("Erro ao escrever CSV")
	}

	if err := file.Close(); err != nil {
		logrus.WithError(err).Fatal("Erro ao fechar arquivo de saída")
	}

	logSummary(generated, *output)
}

func logSummary(records []record, output string) {
	products := map[string]struct{}{}
	regionSet := map[string]struct{}{}
	totalQuantity := 0
	priceSum := decimal.Zero

	for _, r := range records {
		products[r.ProductID] = struct{}{}
		regionSet[r.Region] = struct{}{}
		totalQuantity += r.Quantity
		priceSum = priceSum.Add(r.UnitPrice)
	}

	logrus.WithFields(logrus.Fields{
		"records":        len(records),
		"output":         output,
		"first_date":     records[0].Date.Format(time.DateOnly),
		"last_date":      records[len(records)-1].Date.Format(time.DateOnly),
		"products":       len(products),
		"regions":        len(regionSet),
		"total_quantity": totalQuantity,
		"avg_unit_price": priceSum.Div(decimal.NewFromInt(int64(len(records)))).StringFixed(2),
	}).Info("CSV de exemplo gerado")
}
