package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand/v2"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const (
	productCount = 20
	historyDays  = 365
	minQuantity  = 1
	maxQuantity  = 100
)

var (
	regions  = []string{"North", "South", "East", "West", "Central"}
	minPrice = decimal.NewFromInt(10)
	maxPrice = decimal.NewFromInt(1000)
)

type product struct {
	ID   string
	Name string
}

type record struct {
	Date        time.Time
	ProductID   string
	ProductName string
	Region      string
	Quantity    int
	UnitPrice   decimal.Decimal
}

func catalog() []product {
	products := make([]product, productCount)
	for i := range products {
		products[i] = product{
			ID:   fmt.Sprintf("PROD%03d", i+1),
			Name: fmt.Sprintf("Product %d", i+1),
		}
	}
	return products
}

// generate cria n vendas aleatórias entre now-365 dias e now, ordenadas por data
func generate(n int, seed uint64, now time.Time) []record {
	rng := rand.New(rand.NewPCG(seed, seed))
	products := catalog()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	priceRange := maxPrice.Sub(minPrice)

	records := make([]record, n)
	for i := range records {
		p := products[rng.IntN(len(products))]
		records[i] = record{
			Date:        end.AddDate(0, 0, -rng.IntN(historyDays+1)),
			ProductID:   p.ID,
			ProductName: p.Name,
			Region:      regions[rng.IntN(len(regions))],
			Quantity:    minQuantity + rng.IntN(maxQuantity-minQuantity+1),
			UnitPrice:   minPrice.Add(priceRange.Mul(decimal.NewFromFloat(rng.Float64()))).Round(2),
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})

	return records
}

func writeCSV(w io.Writer, records []record) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"date", "product_id", "product_name", "region", "quantity", "unit_price"}); err != nil {
		return err
	}

	for _, r := range records {
		err := writer.Write([]string{
			r.Date.Format(time.DateOnly),
			r.ProductID,
			r.ProductName,
			r.Region,
			strconv.Itoa(r.Quantity),
			r.UnitPrice.StringFixed(2),
		})
		if err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
