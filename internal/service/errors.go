package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Persistence failure taxonomy. Callers must treat ErrPermissionDenied and
// ErrUnavailable as distinct from ErrNotFound: the first usually means a
// misconfigured deployment or an identity mismatch, the second a transient
// connectivity problem.
var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrUnavailable      = errors.New("service unavailable")
	ErrNotFound         = errors.New("not found")
)

// classifyDBError maps a raw database error onto the failure taxonomy,
// wrapping the original message for everything it does not recognize.
func classifyDBError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "42501": // insufficient_privilege
			return fmt.Errorf("%w: %s", ErrPermissionDenied, pqErr.Message)
		case "57P03", "53300": // cannot_connect_now, too_many_connections
			return fmt.Errorf("%w: %s", ErrUnavailable, pqErr.Message)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "permission denied") {
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	if strings.Contains(msg, "connection refused") || strings.Contains(msg, "timeout") {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return fmt.Errorf("database error: %w", err)
}
