package remote

import (
	"fmt"
	"strings"
)

// TransportError means the request never produced an HTTP response
// (DNS, refused connection, cancelled context, ...).
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// maxErrorBody caps how many runes of a response body go into an error message.
const maxErrorBody = 200

// ServerError is a non-2xx response.
type ServerError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *ServerError) Error() string {
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		return fmt.Sprintf("%s: server returned %d", e.Op, e.StatusCode)
	}
	if r := []rune(msg); len(r) > maxErrorBody {
		msg = string(r[:maxErrorBody-3]) + "..."
	}
	return fmt.Sprintf("%s: server returned %d: %s", e.Op, e.StatusCode, msg)
}
