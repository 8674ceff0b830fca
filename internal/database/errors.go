package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/lib/pq"
)

// Sentinel classes for lower-level storage failures. The gateway branches on
// these with errors.Is instead of matching error text.
var (
	ErrInvalidCredentials = errors.New("invalid database credentials")
	ErrPermissionDenied   = errors.New("insufficient database permissions")
	ErrSchemaMissing      = errors.New("watch_list table not found")
	ErrConnection         = errors.New("database connection failed")

	// ErrVerification marks any failure from the post-connect checks, as
	// opposed to the connect itself.
	ErrVerification = errors.New("connection verification failed")
)

// Classify maps a driver-level error onto one of the sentinel classes using
// the SQLSTATE code carried by *pq.Error. Errors that fit no class are
// returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		code := string(pqErr.Code)
		switch {
		case strings.HasPrefix(code, "28"): // invalid_authorization_specification
			return fmt.Errorf("%w (SQLSTATE %s)", ErrInvalidCredentials, code)
		case code == "42501": // insufficient_privilege
			return fmt.Errorf("%w (SQLSTATE %s)", ErrPermissionDenied, code)
		case code == "42P01": // undefined_table
			return fmt.Errorf("%w (SQLSTATE %s)", ErrSchemaMissing, code)
		case strings.HasPrefix(code, "08"): // connection_exception
			return fmt.Errorf("%w (SQLSTATE %s)", ErrConnection, code)
		}
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	return err
}
