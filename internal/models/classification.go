package models

// ClassificationKind is the outcome of inspecting a file's content.
type ClassificationKind int

const (
	// KindText means the content is safe to concatenate.
	KindText ClassificationKind = iota
	// KindBinary means the content was skipped as non-text.
	KindBinary
	// KindReadError means the file could not be read.
	KindReadError
)

// String returns the string representation of ClassificationKind.
func (k ClassificationKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindBinary:
		return "binary"
	case KindReadError:
		return "read_error"
	default:
		return "unknown"
	}
}

// Classification is the result of classifying a single file.
// Content is only populated for KindText.
type Classification struct {
	Kind    ClassificationKind
	Content []byte
	Reason  string // Why the file was classified as binary
	Err     error  // Underlying error for KindReadError
}

// Text builds a text classification carrying the full content.
func Text(content []byte) Classification {
	return Classification{Kind: KindText, Content: content}
}

// Binary builds a binary classification with the detection reason.
func Binary(reason string) Classification {
	return Classification{Kind: KindBinary, Reason: reason}
}

// ReadError builds a read error classification.
func ReadError(err error) Classification {
	return Classification{Kind: KindReadError, Err: err}
}
