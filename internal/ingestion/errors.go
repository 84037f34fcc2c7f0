package ingestion

import "fmt"

// RowError identifica uma linha descartada na ingestão; Row é 1-based e não conta o cabeçalho
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("Error processing row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
