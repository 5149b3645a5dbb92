package http

import (
	"net/http"
	"strconv"

	"github.com/azmiruddin-143/Local-Guide-Server/pkg/config"
	apperrors "github.com/azmiruddin-143/Local-Guide-Server/pkg/errors"
)

// ExtractPageLimit reads ?page and ?limit, applying platform defaults and
// clamps.
func ExtractPageLimit(r *http.Request) (int, int, error) {
	query := r.URL.Query()

	page := 1
	if s := query.Get("page"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid page parameter: " + s)
		}
		page = v
	}

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	return config.NormalizePage(page), config.NormalizePaginationLimit(limit), nil
}

// Offset converts a 1-based page into a document skip count.
func Offset(page, limit int) int64 {
	return int64(page-1) * int64(limit)
}
