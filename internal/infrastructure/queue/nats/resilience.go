package nats

import (
	"errors"

	"github.com/nats-io/nats.go"

	"github.com/huson-app/huson/internal/infrastructure/resilience"
)

// Broker connectivity problems; a publish may succeed once the client
// reconnects.
var connectivityErrors = []error{
	nats.ErrNoServers,
	nats.ErrTimeout,
	nats.ErrConnectionClosed,
	nats.ErrConnectionReconnecting,
	nats.ErrDisconnected,
	nats.ErrStaleConnection,
}

// Mistakes on our side: retrying cannot help and they say nothing about
// broker health.
var callerErrors = []error{
	nats.ErrBadSubject,
	nats.ErrMaxPayload,
	nats.ErrInvalidMsg,
}

func classifyNATSError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if matchesAny(err, connectivityErrors) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	if matchesAny(err, callerErrors) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	return resilience.ClassifyTransport(err)
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
