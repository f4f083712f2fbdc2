// Package pdferr defines the error taxonomy shared by every package in the
// object and encoding core. Structural failures (xref, object identity,
// stream boundaries) are meant to propagate as fatal; parsing errors in
// optional subfields are expected to be recovered locally by the caller.
package pdferr

import "github.com/pkg/errors"

// Code identifies the class of failure so callers can branch on it with
// pdferr.Is instead of string matching.
type Code int

const (
	// InvalidDataType is returned by a typed accessor called on the wrong
	// Value variant, or by a parser that sees a mismatched token shape.
	InvalidDataType Code = iota
	// InvalidHandle marks a null/unset owner where one is required.
	InvalidHandle
	// InvalidName marks a non-PdfDocEncoding character in a name.
	InvalidName
	// NoObject marks a reference that resolves to nothing.
	NoObject
	// NoXRef marks a missing cross-reference section.
	NoXRef
	// InvalidXRefStream marks a malformed cross-reference stream.
	InvalidXRefStream
	// InvalidXRefType marks an unknown cross-reference entry type.
	InvalidXRefType
	// UnexpectedEOF marks a tokenizer hitting end-of-input mid-construct.
	UnexpectedEOF
	// NoNumber marks an expected integer token that is not numeric.
	NoNumber
	// InvalidStream marks broken CMap or content-stream syntax.
	InvalidStream
	// InvalidFontFile marks a ToUnicode map unable to map a required code point.
	InvalidFontFile
	// ValueOutOfRange marks object-count overflow, a negative /W field, or a
	// generation number at or above the retirement threshold.
	ValueOutOfRange
	// ChangeOnImmutable marks a mutation attempted on a sealed object.
	ChangeOnImmutable
	// InternalLogic marks a broken invariant, e.g. an xref stream written
	// before its offset was captured.
	InternalLogic
	// NotImplemented marks an export path deliberately left unsupported,
	// e.g. the dummy encoding map.
	NotImplemented
	// OutOfMemory marks a buffer growth failure.
	OutOfMemory
)

func (c Code) String() string {
	switch c {
	case InvalidDataType:
		return "InvalidDataType"
	case InvalidHandle:
		return "InvalidHandle"
	case InvalidName:
		return "InvalidName"
	case NoObject:
		return "NoObject"
	case NoXRef:
		return "NoXRef"
	case InvalidXRefStream:
		return "InvalidXRefStream"
	case InvalidXRefType:
		return "InvalidXRefType"
	case UnexpectedEOF:
		return "UnexpectedEOF"
	case NoNumber:
		return "NoNumber"
	case InvalidStream:
		return "InvalidStream"
	case InvalidFontFile:
		return "InvalidFontFile"
	case ValueOutOfRange:
		return "ValueOutOfRange"
	case ChangeOnImmutable:
		return "ChangeOnImmutable"
	case InternalLogic:
		return "InternalLogic"
	case NotImplemented:
		return "NotImplemented"
	case OutOfMemory:
		return "OutOfMemory"
	default:
		return "Unknown"
	}
}

// Error is a typed, wrapped error. Callers compare via errors.As and read
// .Code, rather than matching the formatted message.
type Error struct {
	Code Code
	msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Code.String() + ": " + e.msg + ": " + e.Err.Error()
	}
	return e.Code.String() + ": " + e.msg
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an Error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, msg: msg}
}

// Newf creates an Error with the given code and a formatted message.
func Newf(code Code, format string, args ...interface{}) error {
	return &Error{Code: code, msg: errors.Errorf(format, args...).Error()}
}

// Wrap attaches a code to an underlying error, preserving it for Unwrap.
func Wrap(code Code, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, msg: msg, Err: err}
}

// Is reports whether err is a *Error carrying the given code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
