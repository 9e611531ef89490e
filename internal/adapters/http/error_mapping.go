package httpadapter

import (
	"net/http"

	"github.com/byroteam/byro/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrIntakeItemNotFound),
		domain.IsKind(err, domain.ErrMatterNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrStateConflict):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
