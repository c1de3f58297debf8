package serrors

import "fmt"

// Base is a coded error value. Code is stable and machine-readable;
// Message is for humans; Details is optional free-form context.
type Base struct {
	Code    string
	Message string
	Details string
}

func (e *Base) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Base) Is(target error) bool {
	other, ok := target.(*Base)
	if !ok {
		return false
	}
	return other.Code == e.Code
}

func NewError(code, message, details string) *Base {
	return &Base{Code: code, Message: message, Details: details}
}

// WithDetails returns a copy of the error carrying extra context.
// The copy still matches the original via errors.Is (same code).
func (e *Base) WithDetails(format string, args ...any) *Base {
	return &Base{Code: e.Code, Message: e.Message, Details: fmt.Sprintf(format, args...)}
}
