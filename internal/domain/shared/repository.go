package shared

const (
	// DefaultLimit is applied when a filter carries no limit
	DefaultLimit = 100
	// MaxLimit caps the page size of any list query
	MaxLimit = 1000
)

// Filter represents query filter options using offset pagination
type Filter struct {
	Limit    int
	Offset   int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]any
}

// DefaultFilter returns a filter with default values
func DefaultFilter() Filter {
	return Filter{
		Limit:    DefaultLimit,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  make(map[string]any),
	}
}

// Normalized clamps limit and offset into their allowed ranges
func (f Filter) Normalized() Filter {
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
