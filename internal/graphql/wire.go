package graphql

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Request is the JSON body POSTed to the endpoint
type Request struct {
	OperationName string         `json:"operationName"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
}

// NewRequest builds the request envelope for op
func NewRequest(op Operation) Request {
	vars := op.Variables
	if vars == nil {
		vars = map[string]any{}
	}
	return Request{OperationName: op.Name, Query: op.Document, Variables: vars}
}

// Response is the JSON body returned by the endpoint. Data and Errors may
// both be present.
type Response struct {
	Data   json.RawMessage `json:"data,omitempty"`
	Errors []Error         `json:"errors,omitempty"`
}

// Location points into the query document
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Error is one entry of a response's errors list
type Error struct {
	Message   string     `json:"message"`
	Locations []Location `json:"locations,omitempty"`
	Path      []any      `json:"path,omitempty"`
}

func (e Error) Error() string {
	return e.Message
}

// LocationString renders locations as "line:col" pairs
func (e Error) LocationString() string {
	parts := make([]string, len(e.Locations))
	for i, l := range e.Locations {
		parts[i] = fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return strings.Join(parts, ",")
}

// PathString renders the response path, e.g. "tasks.0.project"
func (e Error) PathString() string {
	parts := make([]string, len(e.Path))
	for i, p := range e.Path {
		switch v := p.(type) {
		case float64:
			parts[i] = fmt.Sprintf("%d", int(v))
		default:
			parts[i] = fmt.Sprint(v)
		}
	}
	return strings.Join(parts, ".")
}
