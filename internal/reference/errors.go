package reference

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// Sentinel errors returned by the loader; compare with errors.Is.
var (
	// ErrEmptySource indicates a source file without even a header line.
	ErrEmptySource = constError("reference source is empty")

	// ErrMalformedFactor indicates a factor cell that is present but not a number.
	ErrMalformedFactor = constError("malformed emission factor")

	// ErrUnknownEncoding indicates an unsupported source character encoding.
	ErrUnknownEncoding = constError("unknown source encoding")
)
