package pdf

import "fmt"

// DecodeError reports input bytes that are not a valid document or image.
// Subject is "document" or "logo".
type DecodeError struct {
	Subject string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s: %v", e.Subject, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// InvalidParameterError reports a caller supplied value outside its domain.
type InvalidParameterError struct {
	Param  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Reason)
}

// PageProcessingError reports a page that could not be read or drawn to.
// Page is the 1-indexed page ordinal.
type PageProcessingError struct {
	Page int
	Err  error
}

func (e *PageProcessingError) Error() string {
	return fmt.Sprintf("failed to process page %d: %v", e.Page, e.Err)
}

func (e *PageProcessingError) Unwrap() error { return e.Err }

// SerializationError reports a failure writing the mutated document.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("failed to serialize document: %v", e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// BackgroundRemovalError reports a failure of the background remover.
type BackgroundRemovalError struct {
	Err error
}

func (e *BackgroundRemovalError) Error() string {
	return fmt.Sprintf("background removal failed: %v", e.Err)
}

func (e *BackgroundRemovalError) Unwrap() error { return e.Err }

func invalidParam(param, format string, args ...interface{}) error {
	return &InvalidParameterError{Param: param, Reason: fmt.Sprintf(format, args...)}
}
