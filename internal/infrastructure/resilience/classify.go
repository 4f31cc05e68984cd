package resilience

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/huson-app/huson/internal/core/domain"
)

var (
	notRecorded = ErrorClassification{Retryable: false, RecordFailure: false}
	transient   = ErrorClassification{Retryable: true, RecordFailure: true}
	permanent   = ErrorClassification{Retryable: false, RecordFailure: true}
)

// ClassifyTransport is the shared baseline for outbound calls: cancellation
// is not a dependency failure, open circuits and network errors are
// transient, and everything else is a recorded permanent failure.
func ClassifyTransport(err error) ErrorClassification {
	switch {
	case err == nil:
		return ErrorClassification{}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return notRecorded
	case IsCircuitOpen(err):
		return transient
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return transient
	}
	return permanent
}

func IsRetryableHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// WrapTemporary marks err as domain.ErrTemporary when the classifier deems
// it retryable or the circuit is open.
func WrapTemporary(operation string, err error, classifier ErrorClassifier) error {
	if err == nil {
		return nil
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifier == nil {
		classifier = ClassifyTransport
	}
	if classifier(err).Retryable || IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}
