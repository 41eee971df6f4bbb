package tabular

import (
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// NewDecodedReader wraps r so that source text always arrives as UTF-8.
//
// A leading UTF-8 byte-order mark (common in files saved by Excel on Windows)
// is dropped, a UTF-16 BOM switches decoding to that encoding, and invalid
// UTF-8 sequences are replaced with U+FFFD instead of failing the read.
func NewDecodedReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}
