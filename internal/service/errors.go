package service

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/repository"
)

var (
	// ErrNoAvailability means the request was valid but every table is
	// taken for the slot.  Returned wrapped in *NoAvailabilityError.
	ErrNoAvailability = errors.New("no table available")
	// ErrTableNoLongerAvailable means a concurrent booking took the table
	// between assignment and insert.  Booking retries once before turning
	// it into ErrNoAvailability; admin edits surface it directly.
	ErrTableNoLongerAvailable = errors.New("table no longer available")
	ErrNotFound               = errors.New("not found")
	ErrForbidden              = errors.New("forbidden")
	ErrAlreadyCancelled       = model.ErrAlreadyCancelled
	ErrInvalidTransition      = model.ErrInvalidTransition
	ErrEmailExists            = errors.New("email already exists")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidRefresh         = errors.New("invalid refresh token")
)

// ValidationError is a user-correctable input problem.  Its message is
// shown to the caller verbatim.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NoAvailabilityError carries the slots on the same day that still have a
// free table.
type NoAvailabilityError struct {
	Date         model.Date
	Time         model.Slot
	Alternatives []model.Slot
}

func (e *NoAvailabilityError) Error() string {
	msg := fmt.Sprintf("no table available on %s at %s", e.Date, e.Time)
	if len(e.Alternatives) > 0 {
		alts := make([]string, len(e.Alternatives))
		for i, a := range e.Alternatives {
			alts[i] = string(a)
		}
		msg += "; try " + strings.Join(alts, ", ")
	}
	return msg
}

func (e *NoAvailabilityError) Is(target error) bool { return target == ErrNoAvailability }

// PersistenceError wraps a storage failure.  It is fatal to the request and
// is reported to callers without detail.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }

// persistence wraps err unless it already is a domain error.
func persistence(op string, err error) error {
	var (
		ve *ValidationError
		pe *PersistenceError
	)
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ve), errors.As(err, &pe),
		errors.Is(err, ErrNoAvailability), errors.Is(err, ErrTableNoLongerAvailable),
		errors.Is(err, ErrNotFound), errors.Is(err, ErrForbidden),
		errors.Is(err, ErrAlreadyCancelled), errors.Is(err, ErrInvalidTransition):
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// notFound translates repository.ErrNotFound into a named ErrNotFound.
func notFound(what string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s %w", what, ErrNotFound)
	}
	return err
}

// ErrorStatus maps an error from this package onto an HTTP status and the
// message callers may see.  Handlers and in-process clients both use it so
// that every surface reports a failure the same way.
func ErrorStatus(err error) (int, string) {
	var (
		ve *ValidationError
		na *NoAvailabilityError
	)
	switch {
	case err == nil:
		return http.StatusOK, ""
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Error()
	case errors.As(err, &na):
		return http.StatusConflict, na.Error()
	case errors.Is(err, ErrNoAvailability), errors.Is(err, ErrTableNoLongerAvailable):
		return http.StatusConflict, err.Error()
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, ErrAlreadyCancelled):
		return http.StatusConflict, err.Error()
	case errors.Is(err, ErrInvalidTransition):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, ErrEmailExists):
		return http.StatusConflict, err.Error()
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidRefresh):
		return http.StatusUnauthorized, err.Error()
	}
	return http.StatusInternalServerError, "internal error"
}
