package source

import (
	"path/filepath"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decodeUTF16 converts UTF-16 buffers (detected by BOM) to UTF-8.
// UTF-8 buffers pass through untouched, including any UTF-8 BOM: the lexer
// is responsible for diagnosing those so that spans stay byte-accurate.
func decodeUTF16(content []byte) ([]byte, bool, error) {
	if len(content) < 2 {
		return content, false, nil
	}

	var enc unicode.Endianness
	switch {
	case content[0] == 0xFE && content[1] == 0xFF:
		enc = unicode.BigEndian
	case content[0] == 0xFF && content[1] == 0xFE:
		enc = unicode.LittleEndian
	default:
		return content, false, nil
	}

	dec := unicode.UTF16(enc, unicode.ExpectBOM).NewDecoder()
	out, _, err := transform.Bytes(dec, content)
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func buildLineIndex(content []byte) []uint32 {
	var out []uint32
	for i, b := range content {
		if b == '\n' {
			out = append(out, uint32(i)) //nolint:gosec // i < len(content) <= max uint32
		}
	}
	return out
}

func toLineCol(lineIdx []uint32, off uint32) LineCol {
	if len(lineIdx) == 0 {
		return LineCol{Line: 1, Col: off + 1}
	}

	// Binary search for the last newline at or before off.
	lo, hi := 0, len(lineIdx)-1
	for lo <= hi {
		mid := (lo + hi) >> 1
		if lineIdx[mid] <= off {
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	line := hi
	if line < 0 {
		return LineCol{Line: 1, Col: off + 1}
	}

	// off sits on the line after the newline at lineIdx[line].
	start := lineIdx[line] + 1
	return LineCol{Line: uint32(line + 2), Col: off - start + 1} //nolint:gosec // line bounded by file size
}

func normalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}
