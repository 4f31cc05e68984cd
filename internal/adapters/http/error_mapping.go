package httpadapter

import (
	"net/http"

	"github.com/huson-app/huson/internal/core/domain"
)

var statusByKind = map[error]int{
	domain.ErrInvalidInput: http.StatusBadRequest,
	domain.ErrUnauthorized: http.StatusUnauthorized,
	domain.ErrNotFound:     http.StatusNotFound,
	domain.ErrConflict:     http.StatusConflict,
	domain.ErrTemporary:    http.StatusServiceUnavailable,
	domain.ErrUpstream:     http.StatusBadGateway,
}

func mapErrorToHTTPStatus(err error) int {
	if status, ok := statusByKind[domain.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}
