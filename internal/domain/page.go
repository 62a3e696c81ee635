package domain

// Page describes one slice of a paginated collection.
type Page struct {
	Number     int `json:"page"`
	Size       int `json:"size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Paginate returns the 1-based page of all. A page past the end is empty,
// never an error.
func Paginate[T any](all []T, page, size int) ([]T, Page) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 1
	}

	p := Page{
		Number:     page,
		Size:       size,
		Total:      len(all),
		TotalPages: (len(all) + size - 1) / size,
	}

	if page > p.TotalPages {
		return []T{}, p
	}
	start := (page - 1) * size
	end := min(start+size, len(all))
	return all[start:end], p
}
