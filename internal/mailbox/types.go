package mailbox

import (
	"errors"
	"fmt"
)

// Credentials holds the login for a single mailbox session. They are
// supplied per fetch and never persisted by this package.
type Credentials struct {
	Username string
	Password string
}

// RawMessage is the undecoded form of one fetched message: the
// server-assigned UID and the full raw RFC 5322 bytes. It is owned
// transiently by the fetch and discarded after decoding.
type RawMessage struct {
	UID  uint32
	Body []byte
}

// AuthError indicates that the server rejected the supplied credentials.
type AuthError struct {
	Username string
	Err      error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed for %s: %v", e.Username, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// ConnectError indicates the server could not be reached at all
// (DNS, TCP, or TLS failure).
type ConnectError struct {
	Addr string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connecting to IMAP %s: %v", e.Addr, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// IsConnectError reports whether err (or any error in its chain) is a
// ConnectError.
func IsConnectError(err error) bool {
	var connErr *ConnectError
	return errors.As(err, &connErr)
}
