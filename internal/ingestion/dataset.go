// Package ingestion contém o pipeline de carga de vendas: leitura do CSV,
// validação estrutural, cálculo da receita e gravação em lotes.
package ingestion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	ErrEmptyFile    = errors.New("arquivo CSV vazio")
	ErrMalformedCSV = errors.New("CSV malformado")
)

// Dataset é a planilha recebida, ainda sem tipos: cabeçalho e linhas como texto
type Dataset struct {
	Header  []string
	Records [][]string

	columns map[string]int
}

// NewDataset monta um Dataset a partir de cabeçalho e linhas já separados
func NewDataset(header []string, records [][]string) *Dataset {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		header[i] = name
		if _, exists := columns[name]; !exists {
			columns[name] = i
		}
	}

	return &Dataset{
		Header:  header,
		Records: records,
		columns: columns,
	}
}

func (d *Dataset) Len() int {
	return len(d.Records)
}

// Column retorna a posição da coluna no cabeçalho
func (d *Dataset) Column(name string) (int, bool) {
	i, ok := d.columns[name]
	return i, ok
}

// ReadDataset lê um CSV com cabeçalho; um BOM UTF-8 inicial é descartado
func ReadDataset(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(transform.Nop)))
	reader.TrimLeadingSpace = true
	// Linhas curtas seguem para o validador, que as reprova como valores ausentes
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
	}

	for i, record := range records {
		if len(record) > len(header) {
			return nil, fmt.Errorf("%w: linha %d tem %d campos, cabeçalho tem %d",
				ErrMalformedCSV, i+2, len(record), len(header))
		}
	}

	return NewDataset(header, records), nil
}
