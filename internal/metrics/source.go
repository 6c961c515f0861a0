package metrics

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// ReadLines reads path as text and splits it into lines without terminators.
// A UTF-16 byte order mark selects that decoding, otherwise the bytes are
// taken as UTF-8 and invalid sequences are dropped. \r\n and lone \r end
// lines like \n. An empty file has no lines.
func ReadLines(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return DecodeLines(raw), nil
}

// DecodeLines is ReadLines for bytes already in memory.
func DecodeLines(raw []byte) []string {
	decoded := raw
	// A UTF-8 BOM is kept as U+FEFF on the first line; it is not whitespace,
	// so that line is measured and classified with it.
	if !bytes.HasPrefix(raw, utf8BOM) {
		var err error
		if decoded, _, err = transform.Bytes(unicode.BOMOverride(encoding.Nop.NewDecoder()), raw); err != nil {
			decoded = raw
		}
	}
	text := strings.ToValidUTF8(string(decoded), "")
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
