package service

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// normalisePage applies the listing defaults to out-of-range paging parameters.
func normalisePage(page, limit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func totalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
