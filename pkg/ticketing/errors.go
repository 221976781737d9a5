package ticketing

import (
	"errors"
	"fmt"
)

// Domain-level error values returned by the ticketing service.
var (
	ErrMissingVehicleType   = errors.New("missing vehicle type")
	ErrUnknownVehicleType   = errors.New("unknown vehicle type")
	ErrInvalidTicketID      = errors.New("invalid ticket id")
	ErrInvalidToken         = errors.New("invalid token")
	ErrInvalidTokenPrefix   = errors.New("invalid token prefix")
	ErrInvalidServiceConfig = errors.New("invalid service config")
	ErrUnknownTicket        = errors.New("unknown ticket")
	ErrEmptyFilename        = errors.New("empty filename")
)

// OperationError wraps a failure with a stable operation code.
type OperationError struct {
	operation string
	subject   string
	code      string
	err       error
}

// Error returns the formatted error message.
func (operationError OperationError) Error() string {
	return fmt.Sprintf("%s.%s.%s: %v", operationError.operation, operationError.subject, operationError.code, operationError.err)
}

// Unwrap returns the underlying error.
func (operationError OperationError) Unwrap() error {
	return operationError.err
}

// Operation returns the operation segment.
func (operationError OperationError) Operation() string {
	return operationError.operation
}

// Subject returns the subject segment.
func (operationError OperationError) Subject() string {
	return operationError.subject
}

// Code returns the stable error code segment.
func (operationError OperationError) Code() string {
	return operationError.code
}

// WrapError wraps an error with operation, subject, and code metadata.
func WrapError(operation string, subject string, code string, err error) error {
	if err == nil {
		return nil
	}
	return OperationError{
		operation: operation,
		subject:   subject,
		code:      code,
		err:       err,
	}
}

// IsValidation reports whether err is an operator input problem rather than a
// storage or rendering failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingVehicleType) || errors.Is(err, ErrUnknownVehicleType)
}
