// Package dberr normalizes store driver errors.
//
// Repositories wrap every driver failure with Wrap so the rest of the
// application sees one *Error type whatever the backend (MongoDB or
// Postgres). HandleError turns those, and the parcel sentinels, into the
// errs.HTTPError envelope.
package dberr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/parcelhub/parcel-server/internal/errs"
	"github.com/parcelhub/parcel-server/internal/model"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Code classifies a storage failure.
type Code int

const (
	Other Code = iota
	UniqueViolation
	NotNullViolation
	CheckViolation
	InvalidDocument
	Timeout
	Unavailable
	Canceled
)

func (c Code) String() string {
	switch c {
	case UniqueViolation:
		return "unique_violation"
	case NotNullViolation:
		return "not_null_violation"
	case CheckViolation:
		return "check_violation"
	case InvalidDocument:
		return "invalid_document"
	case Timeout:
		return "timeout"
	case Unavailable:
		return "unavailable"
	case Canceled:
		return "canceled"
	default:
		return "other"
	}
}

// MapCode maps a Postgres SQLSTATE to a Code.
func MapCode(sqlstate string) Code {
	switch sqlstate {
	case "23505":
		return UniqueViolation
	case "23502":
		return NotNullViolation
	case "23514":
		return CheckViolation
	case "22P02", "22032":
		// invalid_text_representation, invalid_json_text
		return InvalidDocument
	case "57014":
		return Canceled
	}

	switch {
	case strings.HasPrefix(sqlstate, "08"), strings.HasPrefix(sqlstate, "57P"):
		return Unavailable
	}
	return Other
}

// Error is a storage failure tagged with the operation that caused it.
type Error struct {
	Op   string
	Code Code

	// Column is the offending column/field when the driver reports one.
	Column string

	err error
}

func (e *Error) Error() string {
	return e.err.Error()
}

func (e *Error) Unwrap() error {
	return e.err
}

// Wrap classifies err and tags it with op. Nil stays nil; parcel sentinels
// and already wrapped errors pass through unchanged.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, model.ErrParcelNotFound) || errors.Is(err, model.ErrInvalidParcelID) {
		return err
	}
	var dbErr *Error
	if errors.As(err, &dbErr) {
		return err
	}

	out := &Error{Op: op, Code: Other, err: err}

	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr):
		out.Code = MapCode(pgErr.Code)
		out.Column = pgErr.ColumnName
		if out.Column == "" {
			out.Column = extractColumnForUniqueViolation(pgErr.ConstraintName)
		}
	case mongo.IsDuplicateKeyError(err):
		out.Code = UniqueViolation
	case errors.Is(err, context.Canceled):
		out.Code = Canceled
	case mongo.IsTimeout(err), errors.Is(err, context.DeadlineExceeded):
		out.Code = Timeout
	case mongo.IsNetworkError(err), errors.Is(err, mongo.ErrClientDisconnected):
		out.Code = Unavailable
	}

	return out
}

// ErrCode reports the Code of a wrapped storage error, or Other.
func ErrCode(err error) Code {
	var dbErr *Error
	if errors.As(err, &dbErr) {
		return dbErr.Code
	}
	return Other
}

// HandleError converts a service error into the HTTP envelope.
//
//   - *errs.HTTPError: returned unchanged
//   - model.ErrParcelNotFound: 404 "Parcel not found"
//   - model.ErrInvalidParcelID: 400
//   - unique/not-null/check violations: 400 with a humanized message
//   - anything else: 500 with fallback as message and err's text as detail
func HandleError(err error, fallback string) *errs.HTTPError {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	switch {
	case errors.Is(err, model.ErrParcelNotFound):
		code := generateErrorCode("parcels", Other, http.StatusNotFound)
		return errs.NewNotFoundError("Parcel not found", true, &code)
	case errors.Is(err, model.ErrInvalidParcelID):
		code := generateErrorCode("parcels", InvalidDocument, http.StatusBadRequest)
		return errs.NewBadRequestError("Invalid parcel id", true, &code, []errs.FieldError{
			{Field: "id", Error: "must be a 24 character hex string"},
		}, nil)
	}

	var dbErr *Error
	if errors.As(err, &dbErr) {
		code := generateErrorCode("parcels", dbErr.Code, http.StatusBadRequest)
		switch dbErr.Code {
		case UniqueViolation:
			return errs.NewBadRequestError(formatUserFriendlyMessage(dbErr), true, &code, nil, nil)
		case NotNullViolation:
			fieldErrors := []errs.FieldError{{Field: strings.ToLower(dbErr.Column), Error: "is required"}}
			return errs.NewBadRequestError(formatUserFriendlyMessage(dbErr), true, &code, fieldErrors, nil)
		case CheckViolation, InvalidDocument:
			return errs.NewBadRequestError(formatUserFriendlyMessage(dbErr), true, &code, nil, nil)
		}
	}

	return errs.NewOperationError(fallback, err.Error())
}

// generateErrorCode builds <DOMAIN>_<ACTION> codes, e.g. PARCEL_NOT_FOUND.
func generateErrorCode(collection string, code Code, status int) string {
	if collection == "" {
		collection = "RECORD"
	}

	domain := strings.ToUpper(collection)
	if strings.HasSuffix(domain, "S") && len(domain) > 1 {
		domain = domain[:len(domain)-1]
	}

	action := "ERROR"
	switch {
	case status == http.StatusNotFound:
		action = "NOT_FOUND"
	case code == UniqueViolation:
		action = "ALREADY_EXISTS"
	case code == NotNullViolation:
		action = "REQUIRED"
	case code == CheckViolation, code == InvalidDocument:
		action = "INVALID"
	}

	return fmt.Sprintf("%s_%s", domain, action)
}

func formatUserFriendlyMessage(e *Error) string {
	field := humanizeText(e.Column)

	switch e.Code {
	case UniqueViolation:
		if field == "" {
			field = "identifier"
		}
		return fmt.Sprintf("A parcel with this %s already exists", field)
	case NotNullViolation:
		if field == "" {
			field = "field"
		}
		return fmt.Sprintf("The %s is required", field)
	case CheckViolation, InvalidDocument:
		if field != "" {
			return fmt.Sprintf("The %s value does not meet required conditions", field)
		}
		return "One or more values do not meet required conditions"
	default:
		return "An error occurred while processing your request"
	}
}

// humanizeText turns "created_by" into "Created By".
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

var constraintSuffix = regexp.MustCompile(`_([^_]+)_(?:key|ukey|pkey)$`)

// extractColumnForUniqueViolation reads the column out of constraint names
// shaped "unique_<table>_<column>" or "<table>_<column>_key".
func extractColumnForUniqueViolation(constraintName string) string {
	if constraintName == "" {
		return ""
	}

	if strings.HasPrefix(constraintName, "unique_") {
		parts := strings.Split(constraintName, "_")
		if len(parts) >= 3 {
			return parts[len(parts)-1]
		}
	}

	if m := constraintSuffix.FindStringSubmatch(constraintName); len(m) > 1 {
		return m[1]
	}
	return ""
}
