package shared

// Filter describes common list-query parameters
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string

	// Conditions holds field -> value equality filters
	Conditions map[string]interface{}
}

// NewFilter creates a filter with sane pagination defaults
func NewFilter() Filter {
	return Filter{
		Page:       1,
		PageSize:   20,
		OrderBy:    "created_at",
		OrderDir:   "desc",
		Conditions: make(map[string]interface{}),
	}
}

// Offset returns the row offset for the current page
func (f Filter) Offset() int {
	page := f.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * f.Limit()
}

// Limit returns the page size, bounded to a sensible range
func (f Filter) Limit() int {
	if f.PageSize < 1 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}
