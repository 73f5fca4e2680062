package logger

import (
	stderrors "errors"

	"github.com/lariat-data/lariat-go/core/shared/errors"
)

// codeTags maps SDK error codes to the logger tag of the layer that raises them
var codeTags = map[errors.ErrorCode]string{
	errors.ErrCodeValidationError:     "query",
	errors.ErrCodeConfigError:         "config",
	errors.ErrCodeAuthenticationError: "client:auth",
	errors.ErrCodeNotFound:            "client",
	errors.ErrCodeTransportError:      "client:http",
	errors.ErrCodeDecodeError:         "client:http",
	errors.ErrCodeIOError:             "sinks",
}

// TaggedError pins the logger tag used when err reaches the CLI boundary
type TaggedError struct {
	tag string
	err error
}

func (e *TaggedError) Error() string {
	if e == nil || e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e *TaggedError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// Tag returns the pinned tag
func (e *TaggedError) Tag() string {
	if e == nil {
		return ""
	}
	return e.tag
}

// WithTag pins tag on err. nil stays nil.
func WithTag(tag string, err error) error {
	if err == nil {
		return nil
	}
	return &TaggedError{tag: tag, err: err}
}

// ErrorTag returns the tag err should be logged under: an explicit WithTag
// tag first, then one derived from the SDK error code, else "".
func ErrorTag(err error) string {
	if err == nil {
		return ""
	}
	var tagged *TaggedError
	if stderrors.As(err, &tagged) && tagged != nil && tagged.tag != "" {
		return tagged.tag
	}
	return codeTags[errors.CodeOf(err)]
}
