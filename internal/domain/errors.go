package domain

import (
	"errors"
	"fmt"
)

// Errores centinela (sin dependencias externas). Se comparan con errors.Is
// contra cualquier *Error gracias a Error.Is.
var (
	ErrUnreachable       = errors.New("no se pudo contactar la API")
	ErrTimeout           = errors.New("la API no respondió a tiempo")
	ErrMalformedResponse = errors.New("respuesta de la API ilegible")
	ErrAuthMissing       = errors.New("sesión no iniciada")
	ErrAuthExpired       = errors.New("sesión expirada")
	ErrRejected          = errors.New("la API rechazó la operación")
	ErrAlreadyInProgress = errors.New("ya hay una operación en curso para este registro")
	ErrNotConfirmed      = errors.New("la eliminación no fue confirmada")
	ErrInvalidInput      = errors.New("entrada inválida")
)

// ErrorKind clasifica los fallos que la consola presenta al usuario.
type ErrorKind string

const (
	KindUnreachable       ErrorKind = "transport.unreachable"
	KindTimeout           ErrorKind = "transport.timeout"
	KindMalformed         ErrorKind = "transport.malformed"
	KindAuthMissing       ErrorKind = "auth.missing"
	KindAuthExpired       ErrorKind = "auth.expired"
	KindDomain            ErrorKind = "domain"
	KindAlreadyInProgress ErrorKind = "already_in_progress"
	KindValidation        ErrorKind = "validation"
)

var kindSentinel = map[ErrorKind]error{
	KindUnreachable:       ErrUnreachable,
	KindTimeout:           ErrTimeout,
	KindMalformed:         ErrMalformedResponse,
	KindAuthMissing:       ErrAuthMissing,
	KindAuthExpired:       ErrAuthExpired,
	KindDomain:            ErrRejected,
	KindAlreadyInProgress: ErrAlreadyInProgress,
	KindValidation:        ErrInvalidInput,
}

// IsTransport indica fallos de red o de formato (TransportError).
func (k ErrorKind) IsTransport() bool {
	return k == KindUnreachable || k == KindTimeout || k == KindMalformed
}

// IsAuth indica credencial ausente o invalidada (AuthError).
func (k ErrorKind) IsAuth() bool {
	return k == KindAuthMissing || k == KindAuthExpired
}

// Error es el valor tipado que reciben las páginas ante cualquier fallo.
// Text() nunca queda vacío: si la API no envió mensaje se usa el genérico del tipo.
type Error struct {
	Kind    ErrorKind
	Message string
	Status  int   // código HTTP de la API, 0 si no hubo respuesta
	Err     error // causa original, opcional
}

// NewError construye un *Error.
func NewError(kind ErrorKind, message string, status int, cause error) *Error {
	return &Error{Kind: kind, Message: message, Status: status, Err: cause}
}

// Error implementa error.
func (e *Error) Error() string {
	if e.Err != nil && e.Err.Error() != e.Text() {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Text(), e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Text())
}

// Text devuelve el mensaje a mostrar, con fallback genérico por tipo.
func (e *Error) Text() string {
	if e.Message != "" {
		return e.Message
	}
	if s, ok := kindSentinel[e.Kind]; ok {
		return s.Error()
	}
	return "ocurrió un error inesperado"
}

// Unwrap expone la causa original.
func (e *Error) Unwrap() error { return e.Err }

// Is permite errors.Is(err, domain.ErrAuthExpired) y similares.
func (e *Error) Is(target error) bool {
	if s, ok := kindSentinel[e.Kind]; ok && s == target {
		return true
	}
	return false
}

// AsError extrae el *Error de una cadena de errores. Un error ajeno se
// envuelve como fallo de transporte para no perder el mensaje.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return NewError(KindUnreachable, err.Error(), 0, err)
}

// KindOf devuelve el tipo del error o "" si err es nil.
func KindOf(err error) ErrorKind {
	if de := AsError(err); de != nil {
		return de.Kind
	}
	return ""
}
