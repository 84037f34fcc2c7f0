package utils

import (
	"strings"
	"time"
)

// ParseOptionalDate interpreta uma data YYYY-MM-DD; string vazia significa filtro não informado
func ParseOptionalDate(dateStr string) (*time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return nil, nil
	}

	date, err := time.Parse(time.DateOnly, dateStr)
	if err != nil {
		return nil, err
	}

	return &date, nil
}

// TruncateToDay descarta hora e fuso, mantendo apenas a data de calendário
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
