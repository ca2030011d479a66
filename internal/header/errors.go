package header

import "errors"

// Sentinel errors for header parsing. Failure sites wrap these with
// positional context; callers match with errors.Is.
var (
	// ErrBadSignature is returned when the header magic does not match.
	ErrBadSignature = errors.New("iscab: bad cabinet signature")

	// ErrOutOfBounds is returned when a read extends past the header buffer.
	ErrOutOfBounds = errors.New("iscab: offset out of bounds")

	// ErrTruncatedString is returned when a string has no terminator
	// before the end of the buffer.
	ErrTruncatedString = errors.New("iscab: unterminated string")
)
