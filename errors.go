package tenantmap

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

var (
	// ErrNotFound is returned when a tenant or context entry is not in the table.
	ErrNotFound = errors.New("item not found")

	// ErrStoreUnavailable wraps transient store failures such as throttling,
	// timeouts and service errors. Callers may retry these; they are never
	// reported as ErrNotFound.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidKeyScheme is returned when a record's keys do not follow the
	// table layout, for example an unknown sort key prefix or an entity
	// discriminator that disagrees with the sort key.
	ErrInvalidKeyScheme = errors.New("invalid key scheme")

	// ErrInvalidCursor is returned when a pagination cursor cannot be decoded
	// or belongs to another tenant.
	ErrInvalidCursor = errors.New("invalid pagination cursor")
)

// transientErrorCodes are DynamoDB error codes that indicate the store could
// not serve the request right now.
var transientErrorCodes = map[string]struct{}{
	"ProvisionedThroughputExceededException": {},
	"ThrottlingException":                    {},
	"RequestLimitExceeded":                   {},
	"InternalServerError":                    {},
	"ServiceUnavailable":                     {},
	"ResourceNotFoundException":              {},
	"LimitExceededException":                 {},
	"TransactionInProgressException":         {},
}

// IsUnavailable reports whether err is, or wraps, ErrStoreUnavailable.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// wrapStoreError annotates err with the failed operation and marks transient
// failures with ErrStoreUnavailable.
func wrapStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsTransient(err) {
		return fmt.Errorf("failed to %s: %w: %w", op, ErrStoreUnavailable, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// IsTransient reports whether a raw client error is worth retrying:
// throttling, service side faults, timeouts and connection failures.
func IsTransient(err error) bool {
	if errors.Is(err, ErrStoreUnavailable) {
		return true
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		_, ok := transientErrorCodes[apiErr.ErrorCode()]
		return ok
	}

	var sendErr *smithyhttp.RequestSendError
	if errors.As(err, &sendErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return false
}
