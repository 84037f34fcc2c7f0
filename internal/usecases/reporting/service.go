package reporting

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vfg2006/sales-analytics-api/infrastructure/database"
	"github.com/vfg2006/sales-analytics-api/infrastructure/repository"
	"github.com/vfg2006/sales-analytics-api/internal/domain"
	"github.com/vfg2006/sales-analytics-api/pkg/utils"
)

const (
	DefaultTopProductsLimit = 5
	MaxTopProductsLimit     = 100
)

var (
	ErrInvalidLimit = fmt.Errorf("limit must be an integer between 1 and %d", MaxTopProductsLimit)
	ErrInvalidDate  = errors.New("dates must use the YYYY-MM-DD format")
)

// Reporter calcula os relatórios de vendas sob demanda
type Reporter interface {
	MonthlySummary(ctx context.Context, filters domain.SalesFilters) ([]*domain.MonthlySummary, error)
	TopProducts(ctx context.Context, filters domain.SalesFilters, limit int) ([]*domain.TopProduct, error)
}

type Service struct {
	provider database.SessionProvider
	repo     repository.SalesRepository
}

func NewService(provider database.SessionProvider, repo repository.SalesRepository) Reporter {
	return &Service{
		provider: provider,
		repo:     repo,
	}
}

// MonthlySummary devolve um item por mês presente nos dados filtrados, em ordem crescente
func (s *Service) MonthlySummary(ctx context.Context, filters domain.SalesFilters) ([]*domain.MonthlySummary, error) {
	var summaries []*domain.MonthlySummary

	err := s.provider.WithSession(ctx, func(sess database.Session) error {
		var err error
		summaries, err = s.repo.MonthlySummary(ctx, sess, filters)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("erro ao calcular resumo mensal: %w", err)
	}

	if summaries == nil {
		summaries = []*domain.MonthlySummary{}
	}
	return summaries, nil
}

// TopProducts devolve os produtos com maior receita; o filtro de produto não se aplica aqui
func (s *Service) TopProducts(ctx context.Context, filters domain.SalesFilters, limit int) ([]*domain.TopProduct, error) {
	if limit < 1 || limit > MaxTopProductsLimit {
		return nil, ErrInvalidLimit
	}
	filters.ProductID = nil

	var products []*domain.TopProduct

	err := s.provider.WithSession(ctx, func(sess database.Session) error {
		var err error
		products, err = s.repo.TopProducts(ctx, sess, filters, limit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("erro ao calcular top produtos: %w", err)
	}

	if products == nil {
		products = []*domain.TopProduct{}
	}
	return products, nil
}

// ParseFilters converte os parâmetros de consulta; valores vazios são filtros não informados
func ParseFilters(startDate, endDate, region, productID string) (domain.SalesFilters, error) {
	var filters domain.SalesFilters

	start, err := utils.ParseOptionalDate(startDate)
	if err != nil {
		return filters, fmt.Errorf("%w: start_date %q", ErrInvalidDate, startDate)
	}
	end, err := utils.ParseOptionalDate(endDate)
	if err != nil {
		return filters, fmt.Errorf("%w: end_date %q", ErrInvalidDate, endDate)
	}

	filters.StartDate = start
	filters.EndDate = end
	filters.Region = optionalString(region)
	filters.ProductID = optionalString(productID)

	return filters, nil
}

// ParseLimit aplica o padrão de 5 quando o parâmetro não é informado
func ParseLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultTopProductsLimit, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > MaxTopProductsLimit {
		return 0, ErrInvalidLimit
	}
	return limit, nil
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
