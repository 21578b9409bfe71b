package error

import "github.com/go-errors/errors"

type ErrorType int

const (
	SetError ErrorType = iota
	CountOverflowError
	LoggerError
	IoError
	LineNumZeroError
	LineNumTooLargeError
	ConditionError
	EnvError
)

type Error struct {
	Message string
	Type    ErrorType
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error { return nil }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	if !ok {
		return false
	}

	return (e.Type == t.Type) && (e.Message == t.Message)
}

func New(errorType ErrorType, reason string) *Error {
	error := &Error{}

	switch errorType {
	case SetError:
		error.Message = "text-search-go: Set error: " + reason
	case CountOverflowError:
		error.Message = "text-search-go: Count overflow: " + reason
	case LoggerError:
		error.Message = "text-search-go: Logger error: " + reason
	case IoError:
		error.Message = "text-search-go: IO error: " + reason
	case LineNumTooLargeError:
		error.Message = "text-search-go: Line number too large: " + reason
	case LineNumZeroError:
		error.Message = "text-search-go: Line number is zero or negative: " + reason
	case ConditionError:
		error.Message = "text-search-go: Condition not met: " + reason
	case EnvError:
		error.Message = "text-search-go: Environment: " + reason
	default:
		error.Message = "text-search-go: Unknown error: " + reason
	}

	error.Type = errorType

	return error
}

// IsType reports whether err, or any error it wraps, is an *Error of the
// given type.
func IsType(err error, errorType ErrorType) bool {
	var t *Error

	return errors.As(err, &t) && t.Type == errorType
}
