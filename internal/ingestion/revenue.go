package ingestion

// DeriveRevenue preenche (ou sobrescreve) total_revenue = quantity × unit_price em todas as linhas.
// Não valida nada: espera um Frame vindo do Validator.
func DeriveRevenue(frame *Frame) *Frame {
	if frame == nil {
		return nil
	}

	for i := range frame.Rows {
		row := &frame.Rows[i]
		revenue := row.UnitPrice.Mul(row.Quantity)
		row.TotalRevenue = &revenue
	}

	return frame
}
