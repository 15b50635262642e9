// internal/common/apperr/apperr.go
// Typed error kinds shared across services. Handlers map kinds to HTTP
// status codes in one place instead of switching on sentinel errors.

package apperr

import (
    "errors"
    "fmt"
    "net/http"
)

type Kind int

const (
    KindUnknown Kind = iota
    KindNotFound
    KindForbidden
    KindConflict
    KindQuotaExceeded
    KindPreconditionFailed
    KindPremiumRequired
    KindExpired
    KindUnavailable
)

// Error carries a kind alongside a human-readable message. It supports
// errors.Is/As so services can still export sentinel values.
type Error struct {
    Kind Kind
    Msg  string
    Err  error
}

func (e *Error) Error() string {
    if e.Err != nil {
        return fmt.Sprintf("%s: %v", e.Msg, e.Err)
    }
    return e.Msg
}

func (e *Error) Unwrap() error {
    return e.Err
}

// Is treats two apperr values with the same kind and message as equal,
// which makes package-level sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
    var t *Error
    if !errors.As(target, &t) {
        return false
    }
    return e.Kind == t.Kind && e.Msg == t.Msg
}

// New creates a typed error.
func New(kind Kind, msg string) *Error {
    return &Error{Kind: kind, Msg: msg}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, msg string, err error) *Error {
    return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the kind from any error in the chain.
func KindOf(err error) Kind {
    var e *Error
    if errors.As(err, &e) {
        return e.Kind
    }
    return KindUnknown
}

// HTTPStatus maps an error kind to the status code the API layer should
// respond with. Unknown kinds are treated as internal errors.
func HTTPStatus(err error) int {
    switch KindOf(err) {
    case KindNotFound:
        return http.StatusNotFound
    case KindForbidden:
        return http.StatusForbidden
    case KindConflict:
        return http.StatusConflict
    case KindQuotaExceeded:
        return http.StatusTooManyRequests
    case KindPreconditionFailed:
        return http.StatusBadRequest
    case KindPremiumRequired:
        return http.StatusPaymentRequired
    case KindExpired:
        return http.StatusGone
    case KindUnavailable:
        return http.StatusServiceUnavailable
    default:
        return http.StatusInternalServerError
    }
}
