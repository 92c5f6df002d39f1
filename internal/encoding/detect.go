package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const peekSize = 4096

// charsetDecoder maps a chardet charset name to a decoder. UTF-8 is handled
// before detection runs and is absent on purpose.
func charsetDecoder(charset string) transform.Transformer {
	switch charset {
	case "ISO-8859-1", "windows-1252":
		return charmap.Windows1252.NewDecoder().Transformer
	case "ISO-8859-9":
		return charmap.ISO8859_9.NewDecoder().Transformer
	default:
		return nil
	}
}

// NewUTF8Reader wraps r so that its content reads as UTF-8 regardless of the
// uploaded file's encoding. A BOM wins; otherwise valid UTF-8 passes through,
// then chardet guesses, and anything unrecognized is treated as Windows-1252,
// which spreadsheet exports on Windows commonly produce.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)

	head, err := br.Peek(peekSize)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("peeking input: %w", err)
	}

	if bytes.HasPrefix(head, []byte{0xEF, 0xBB, 0xBF}) {
		// UTF-8 BOM carries no information once stripped.
		_, _ = br.Discard(3)
		return br, nil
	}

	if bytes.HasPrefix(head, []byte{0xFF, 0xFE}) {
		return transform.NewReader(br, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()), nil
	}

	if bytes.HasPrefix(head, []byte{0xFE, 0xFF}) {
		return transform.NewReader(br, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()), nil
	}

	if utf8.Valid(head) {
		return br, nil
	}

	if result, err := chardet.NewTextDetector().DetectBest(head); err == nil {
		if result.Charset == "UTF-8" {
			return br, nil
		}

		if dec := charsetDecoder(result.Charset); dec != nil {
			return transform.NewReader(br, dec), nil
		}
	}

	return transform.NewReader(br, charmap.Windows1252.NewDecoder()), nil
}
