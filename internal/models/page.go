package models

// Page is the envelope used by the admin dashboard listing.
type Page[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// PagedItems is the envelope used by the /forms, /content, /media, /email
// and /seo admin listings.
type PagedItems[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
	PageNumber int `json:"pageNumber"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

// Items re-wraps a Page in the PagedItems envelope.
func Items[T any](p Page[T]) PagedItems[T] {
	return PagedItems[T]{
		Items:      p.Data,
		TotalCount: p.Total,
		PageNumber: p.Page,
		PageSize:   p.Limit,
		TotalPages: p.TotalPages,
	}
}

// Blob is an opaque downloadable body such as an export file.
type Blob struct {
	Data        []byte
	ContentType string
	FileName    string
}

type ExportFormat string

const (
	ExportCSV   ExportFormat = "csv"
	ExportExcel ExportFormat = "excel"
)

func (f ExportFormat) Valid() bool { return f == ExportCSV || f == ExportExcel }
