package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnauthenticated marks requests with a missing, malformed, tampered,
	// or expired bearer token.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden marks a valid principal lacking the required role.
	ErrForbidden = errors.New("forbidden")

	// ErrBrokerUnavailable marks a failure to establish a broker connection
	// within the configured timeout. Connection-level; retrying the request
	// will not help until the broker recovers.
	ErrBrokerUnavailable = errors.New("broker unavailable")

	// ErrPublishFailed marks a send that did not complete on an established
	// connection. Transient; the message may have been partially transmitted.
	ErrPublishFailed = errors.New("publish failed")
)

// InvalidEventPayloadError rejects an event before any broker interaction and
// names the offending fields.
type InvalidEventPayloadError struct {
	Topic  string
	Fields []string
}

func (e *InvalidEventPayloadError) Error() string {
	return fmt.Sprintf("invalid payload for topic %s: %s", e.Topic, strings.Join(e.Fields, ", "))
}

// IsInvalidEventPayload reports whether err is an InvalidEventPayloadError.
func IsInvalidEventPayload(err error) bool {
	return AsInvalidEventPayload(err) != nil
}

// AsInvalidEventPayload unwraps err into an InvalidEventPayloadError, or nil.
func AsInvalidEventPayload(err error) *InvalidEventPayloadError {
	var target *InvalidEventPayloadError
	if errors.As(err, &target) {
		return target
	}
	return nil
}

// PublishError reports a fan-out that stopped partway through a multi-event
// submission. Delivered counts the envelopes already handed to the broker;
// the caller decides whether that is partial success or total failure.
type PublishError struct {
	Delivered int
	Err       error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish aborted after %d delivered: %v", e.Delivered, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }
