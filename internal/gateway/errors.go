package gateway

import "fmt"

// RetrievalError marks a per-service fetch failure: the external source
// was unreachable or the API call failed. The failure stays isolated to
// one service; its fields remain absent in the snapshot while the other
// services are collected normally.
type RetrievalError struct {
	Service string
	Query   string
	Err     error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed for %s (query %q): %v", e.Service, e.Query, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// FormatError marks a response whose shape did not match the search API
// contract. Retrying cannot help, so the affected field is marked
// absent immediately.
type FormatError struct {
	Query string
	Err   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed search response for query %q: %v", e.Query, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }
