package util

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Calculate converts 1-based page/size query values into offset and
// limit, clamping out-of-range input to the defaults.
func Calculate(page, size int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return (page - 1) * size, size
}
