package services

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// normalizePage clamps a client supplied window to sane bounds. Callers may
// ask for one row past a full page to learn whether another page exists.
func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize+1 {
		limit = maxPageSize + 1
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
