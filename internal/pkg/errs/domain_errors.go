package errs

import "errors"

// Domain-specific sentinel errors for the delivery and scheduling layers
var (
	// Retry classification marks. A job handler error marked ErrPermanent is
	// never retried; anything else goes back to the queue until attempts run
	// out. ErrTransient exists so provider adapters can be explicit about
	// timeouts and rate limits.
	ErrPermanent = errors.New("permanent failure")
	ErrTransient = errors.New("transient failure")

	// Recipient errors
	ErrRecipientNotFound = errors.New("recipient not found")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")

	// Payload errors
	ErrMalformedPayload = errors.New("malformed job payload")
	ErrNoChannels       = errors.New("notification payload has no channels")
	ErrUnknownAction    = errors.New("unknown scheduled action kind")

	// Queue errors
	ErrJobNotFound = errors.New("job not found")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
