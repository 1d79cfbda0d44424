// Package apperror is the error taxonomy shared by services and controllers.
// Services return *Error (possibly wrapped); controllers map the Kind to a status.
package apperror

import (
	stderrors "errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindStateConflict
	KindReference
	KindPermission
	KindNotFound
	KindIntegrity
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindStateConflict:
		return "state_conflict"
	case KindReference:
		return "reference"
	case KindPermission:
		return "permission"
	case KindNotFound:
		return "not_found"
	case KindIntegrity:
		return "integrity"
	default:
		return "internal"
	}
}

type Error struct {
	Kind    Kind
	Message string

	// Validation: field -> messages
	Fields map[string][]string
	// StateConflict: status of the row at the time of the check
	CurrentStatus string
	// Reference: ids that did not resolve
	Missing []string
	// Integrity: number of rows blocking the operation
	Blocking int64

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Format prints the wrapped cause with its stack trace for %+v.
func (e *Error) Format(s fmt.State, verb rune) {
	switch {
	case verb == 'v' && s.Flag('+') && e.cause != nil:
		fmt.Fprintf(s, "%s: %s: %+v", e.Kind, e.Message, e.cause)
	case verb == 'q':
		fmt.Fprintf(s, "%q", e.Error())
	default:
		io.WriteString(s, e.Error())
	}
}

/* ===============================
   Constructors
=================================*/

func Validation(msg string, fields map[string][]string) *Error {
	if msg == "" {
		msg = "validation failed"
	}
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

// FieldError builds a validation error for a single field.
func FieldError(field, msg string) *Error {
	return Validation(msg, map[string][]string{field: {msg}})
}

func StateConflict(msg string, current string) *Error {
	return &Error{Kind: KindStateConflict, Message: msg, CurrentStatus: current}
}

func Reference(msg string, missing []string) *Error {
	cp := append([]string(nil), missing...)
	sort.Strings(cp)
	if msg == "" {
		msg = "unknown references"
	}
	return &Error{Kind: KindReference, Message: fmt.Sprintf("%s: %s", msg, strings.Join(cp, ", ")), Missing: cp}
}

func Permission(msg string) *Error {
	return &Error{Kind: KindPermission, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Integrity(msg string, blocking int64) *Error {
	return &Error{Kind: KindIntegrity, Message: msg, Blocking: blocking}
}

// Internal wraps an unexpected error with a stack trace.
func Internal(err error, msg string) *Error {
	if msg == "" {
		msg = "internal error"
	}
	return &Error{Kind: KindInternal, Message: msg, cause: errors.WithStack(err)}
}

/* ===============================
   Inspection
=================================*/

func As(err error) (*Error, bool) {
	var ae *Error
	if stderrors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

func KindOf(err error) Kind {
	if ae, ok := As(err); ok {
		return ae.Kind
	}
	return KindInternal
}

func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

/* ===============================
   Database error mapping
=================================*/

// FromDB maps driver/gorm errors into the taxonomy. notFound is the message used
// for gorm.ErrRecordNotFound; pass "" to treat it as internal.
func FromDB(err error, notFound string) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}
	if stderrors.Is(err, gorm.ErrRecordNotFound) && notFound != "" {
		return NotFound(notFound)
	}
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return Validation("duplicate value", nil)
	}
	if stderrors.Is(err, gorm.ErrForeignKeyViolated) {
		return Integrity("referenced by other records", 0)
	}

	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return Validation("duplicate value", map[string][]string{pgErr.ConstraintName: {"already exists"}})
		case "23503":
			return Integrity("referenced by other records", 0)
		}
	}
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return Validation("duplicate value", map[string][]string{pqErr.Constraint: {"already exists"}})
		case "23503":
			return Integrity("referenced by other records", 0)
		}
	}
	return Internal(err, "")
}
