package classify

import (
	"fmt"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"

	"github.com/harrison/joinai/internal/fsys"
	"github.com/harrison/joinai/internal/models"
)

// sniffSize is the header length filetype needs to recognise every matcher.
const sniffSize = 262

// MIME classifies by magic number and defers unknown content to a fallback.
type MIME struct {
	fallback   Classifier
	prefixSize int
}

// NewMIME creates a MIME sniffing classifier. A nil fallback uses the
// default heuristic.
func NewMIME(fallback Classifier, prefixSize int) *MIME {
	if fallback == nil {
		fallback = NewHeuristic(DefaultOptions())
	}
	if prefixSize <= 0 || prefixSize > sniffSize {
		prefixSize = sniffSize
	}
	return &MIME{fallback: fallback, prefixSize: prefixSize}
}

// Classify reports any recognised signature as binary.
func (m *MIME) Classify(filesystem fsys.FS, path string) models.Classification {
	f, err := filesystem.Open(path)
	if err != nil {
		return models.ReadError(err)
	}
	head, _, err := readPrefix(f, m.prefixSize)
	f.Close()
	if err != nil {
		return models.ReadError(err)
	}

	if kind := sniff(head); kind != types.Unknown {
		return models.Binary(fmt.Sprintf("detected %s", kind.MIME.Value))
	}
	return m.fallback.Classify(filesystem, path)
}

func sniff(head []byte) types.Type {
	if len(head) == 0 {
		return types.Unknown
	}
	kind, err := filetype.Match(head)
	if err != nil {
		return types.Unknown
	}
	return kind
}
