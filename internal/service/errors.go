package service

import (
	"errors"

	"github.com/noah-isme/essay-auditor-api/internal/auditor"
)

// User-facing audit messages.
const (
	MessageAuthenticationRequired = "Você precisa estar logado para usar o auditor."
	MessageAuditFailed            = "Falha na auditoria. Tente novamente."
	MessagePersistenceFailed      = "Falha ao salvar correção. Tente novamente."
	MessageInvalidCredentials     = "Email ou senha inválidos"
	MessageSessionUnavailable     = "Não foi possível verificar sua sessão. Tente novamente."
)

var (
	// ErrAuthentication marks audits rejected because no user is signed in.
	ErrAuthentication = errors.New("authentication required")
	// ErrValidation marks essays rejected before inference.
	ErrValidation = errors.New("essay validation failed")
	// ErrSessionUnavailable marks audits whose session could not be resolved
	// because the account store failed.
	ErrSessionUnavailable = errors.New("session lookup failed")
	// ErrPersistence marks audits whose result could not be stored.
	ErrPersistence = errors.New("correction persistence failed")

	// ErrInferenceTransport and ErrInferenceContract are re-exported so
	// callers only need this package to classify audit failures.
	ErrInferenceTransport = auditor.ErrInferenceTransport
	ErrInferenceContract  = auditor.ErrInferenceContract

	// ErrUserNotFound indicates the requested account does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials indicates a failed sign-in.
	ErrInvalidCredentials = errors.New(MessageInvalidCredentials)
)

// AuditError is returned by every failed audit. Message is safe to show to
// the user; Cause is for logs only. errors.Is matches both the kind sentinel
// and anything in the cause chain.
type AuditError struct {
	Kind    error
	Message string
	Cause   error
}

func (e *AuditError) Error() string {
	return e.Message
}

func (e *AuditError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func newAuditError(kind error, message string, cause error) *AuditError {
	return &AuditError{Kind: kind, Message: message, Cause: cause}
}
