package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tgienger/taskboard/internal/graphql"
)

// TransportError means the operation never produced a structured GraphQL
// answer: the network failed, the server replied non-2xx without an errors
// list, or the body could not be decoded.
type TransportError struct {
	Operation  string
	StatusCode int    // 0 when no response was received
	Body       string // bounded excerpt of the response body
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("%s: transport: status %d: %v", e.Operation, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: transport: %v", e.Operation, e.Err)
	default:
		return fmt.Sprintf("%s: transport: unexpected status %d: %s", e.Operation, e.StatusCode, e.Body)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// OperationError carries the structured errors the server reported for an
// operation, whether or not data came with them.
type OperationError struct {
	Operation string
	Errors    []graphql.Error
}

func (e *OperationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ge := range e.Errors {
		msgs[i] = ge.Message
	}
	return fmt.Sprintf("%s: %s", e.Operation, strings.Join(msgs, "; "))
}

// Generic messages shown to the user. Structured server detail never
// reaches the screen; it only goes to the log.
const (
	MsgNetwork   = "Could not reach the server. Please try again."
	MsgOperation = "The server could not complete the request."
	MsgUnknown   = "Something went wrong."
)

// UserMessage converts any error returned by the client into a message
// safe to show in a view
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var te *TransportError
	if errors.As(err, &te) {
		return MsgNetwork
	}
	var oe *OperationError
	if errors.As(err, &oe) {
		return MsgOperation
	}
	return MsgUnknown
}
