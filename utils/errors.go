package utils

import "fmt"

// ValidationError -> field wajib hilang atau format salah (400)
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError -> resource dengan id tersebut tidak ada (404)
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

func NewNotFoundError(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ForbiddenError -> caller bukan pemilik resource (403)
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

func NewForbiddenError(format string, args ...interface{}) *ForbiddenError {
	return &ForbiddenError{Message: fmt.Sprintf(format, args...)}
}

// DispatchError -> kegagalan resolve recipient / insert saat fan-out.
// Di jalur request dikembalikan ke caller, di jalur scheduler hanya dilog.
type DispatchError struct {
	Message string
	Err     error
}

func (e *DispatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DispatchError) Unwrap() error { return e.Err }

func NewDispatchError(err error, format string, args ...interface{}) *DispatchError {
	return &DispatchError{Message: fmt.Sprintf(format, args...), Err: err}
}
