package domain

// UploadResponse é o envelope de resposta do upload de CSV
type UploadResponse struct {
	Success          bool     `json:"success"`
	Message          string   `json:"message"`
	RecordsProcessed *int     `json:"records_processed,omitempty"`
	Errors           []string `json:"errors,omitempty"`
}
