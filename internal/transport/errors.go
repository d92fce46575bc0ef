package transport

import (
	"errors"
	"fmt"
)

// ErrOffline is returned without touching the network when the client has
// been marked offline.
var ErrOffline = errors.New("no connectivity")

// ServerError is a request that reached the backend and was rejected there.
type ServerError struct {
	Status  int
	Code    string
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server rejected request (%d %s): %s", e.Status, e.Code, e.Message)
}

// IsConnectivity reports whether err should be treated as a connectivity
// failure. Only a ServerError proves the request reached the backend; every
// other failure (offline flag, dial/timeout errors, open circuit breaker) is
// indistinguishable from connectivity loss and is classified as such.
func IsConnectivity(err error) bool {
	if err == nil {
		return false
	}
	var se *ServerError
	return !errors.As(err, &se)
}
