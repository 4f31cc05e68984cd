package remote

import (
	"context"
	"errors"
	"net"

	"github.com/huson-app/huson/internal/core/domain"
	"github.com/huson-app/huson/internal/infrastructure/resilience"
)

func classifyRemoteError(err error) resilience.ErrorClassification {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		if resilience.IsRetryableHTTPStatus(statusErr.StatusCode) {
			return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
		}
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	return resilience.ClassifyTransport(err)
}

// toDomainError maps a failed call to ErrTemporary when trying again later
// may help (timeouts, overload, open circuit) and to ErrUpstream otherwise.
func toDomainError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	wrapped := resilience.WrapTemporary(operation, err, classifyRemoteError)
	if domain.IsKind(wrapped, domain.ErrTemporary) || domain.IsKind(wrapped, domain.ErrUpstream) {
		return wrapped
	}
	return domain.WrapError(domain.ErrUpstream, operation, err)
}
