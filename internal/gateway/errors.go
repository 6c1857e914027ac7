package gateway

import (
	"errors"
	"fmt"
)

// Op names a backend call.
type Op string

const (
	OpLogin          Op = "login"
	OpRegister       Op = "register"
	OpLogout         Op = "logout"
	OpRecentActivity Op = "fetch_activity"
	OpLogActivity    Op = "log_activity"
	OpRecommend      Op = "recommend"
)

// genericMessages is used when a failed response carries no "error" field.
var genericMessages = map[Op]string{
	OpLogin:          "Invalid credentials",
	OpRegister:       "Registration failed",
	OpLogout:         "Error logging out",
	OpRecentActivity: "Failed to load recent activity",
	OpLogActivity:    "Failed to log activity",
	OpRecommend:      "No recommendations available",
}

// GenericMessage returns the fallback user-facing message for op.
func GenericMessage(op Op) string {
	if msg, ok := genericMessages[op]; ok {
		return msg
	}
	return "Request failed"
}

// NetworkError is a transport failure: connection error, timeout or an open
// circuit breaker. No response was received.
type NetworkError struct {
	Op  Op
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is a non-success response. Message is the body's "error" field,
// or the generic message for Op.
type ServerError struct {
	Op      Op
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: server returned %d: %s", e.Op, e.Status, e.Message)
}

// IsNetwork reports whether err is a NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// ServerMessage returns the message of a ServerError in err's chain.
func ServerMessage(err error) (string, bool) {
	var se *ServerError
	if errors.As(err, &se) {
		return se.Message, true
	}
	return "", false
}
