package core

// encoding.go normalizes raw upload bytes to UTF-8 text before parsing.
//
// Address files come from many places, and each leaves its own marks:
//
//   - Excel on Windows prefixes UTF-8 exports with a BOM (0xEF 0xBB 0xBF)
//   - "Unicode text" exports are UTF-16 with a BOM
//   - Older exports are Windows-1252, which is not valid UTF-8
//
// decodeText handles all three, then applies NFC so that "é" typed two
// different ways compares equal in headers and values.

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// decodeText returns data as NFC-normalized UTF-8 and the name of the
// source encoding it detected.
func decodeText(data []byte) ([]byte, string, error) {
	var (
		dec  *encoding.Decoder
		name string
	)

	switch {
	case bytes.HasPrefix(data, bomUTF8):
		data = data[len(bomUTF8):]
		name = "utf-8"
	case bytes.HasPrefix(data, bomUTF16LE):
		dec = unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		name = "utf-16le"
	case bytes.HasPrefix(data, bomUTF16BE):
		dec = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
		name = "utf-16be"
	case utf8.Valid(data):
		name = "utf-8"
	default:
		dec = charmap.Windows1252.NewDecoder()
		name = "windows-1252"
	}

	if dec != nil {
		out, _, err := transform.Bytes(dec, data)
		if err != nil {
			return nil, name, fmt.Errorf("decode %s: %w", name, err)
		}
		data = out
	}

	if bytes.IndexByte(data, 0) >= 0 {
		return nil, name, fmt.Errorf("decode %s: unexpected NUL byte", name)
	}

	return norm.NFC.Bytes(data), name, nil
}
