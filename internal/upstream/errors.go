package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind clasifica la falla de un proveedor externo.
type Kind string

const (
	KindUnavailable Kind = "unavailable"
	KindTimeout     Kind = "timeout"
	KindRejected    Kind = "rejected"
)

var (
	// ErrUnavailable cubre errores de red y timeouts.
	ErrUnavailable = errors.New("upstream unavailable")
	// ErrTimeout se cumple solo cuando la llamada expiro.
	ErrTimeout = errors.New("upstream timeout")
	// ErrRejected indica que el proveedor devolvio un error estructurado.
	ErrRejected = errors.New("upstream rejected request")
)

// Error describe la falla de una llamada a un proveedor externo.
type Error struct {
	Provider   string
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s %s (status %d): %s", e.Provider, e.Kind, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s %s: %s", e.Provider, e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is permite errors.Is contra los sentinels del paquete. Un timeout tambien es ErrUnavailable.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnavailable:
		return e.Kind == KindUnavailable || e.Kind == KindTimeout
	case ErrTimeout:
		return e.Kind == KindTimeout
	case ErrRejected:
		return e.Kind == KindRejected
	}
	return false
}

// Rejected construye un error de rechazo con el mensaje del proveedor.
func Rejected(provider string, status int, message string) *Error {
	if message == "" {
		message = fmt.Sprintf("%s API error (status %d)", provider, status)
	}
	return &Error{Provider: provider, Kind: KindRejected, StatusCode: status, Message: message}
}

// Unavailable construye un error de disponibilidad con causa opcional.
func Unavailable(provider, message string, err error) *Error {
	return &Error{Provider: provider, Kind: KindUnavailable, Message: message, Err: err}
}

// FromTransport clasifica un error de transporte HTTP en timeout o no disponible.
func FromTransport(provider string, err error) *Error {
	if IsTimeout(err) {
		return &Error{Provider: provider, Kind: KindTimeout, Message: "request to " + provider + " timed out", Err: err}
	}
	return &Error{Provider: provider, Kind: KindUnavailable, Message: "network error", Err: err}
}

// IsTimeout detecta deadlines de contexto y timeouts de red.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// As extrae el *Error de una cadena de errores.
func As(err error) (*Error, bool) {
	var ue *Error
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
