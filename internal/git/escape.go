package git

import (
	"strings"
	"unicode/utf8"
)

// YAML rejects most control characters and treats \r, NEL, U+2028 and U+2029
// as line breaks, none of which git escapes inside a block scalar. Before
// decoding, every byte of such a character (and of invalid UTF-8) is replaced
// by escapeRune followed by byteRuneBase+byte. restoreText reverses it.
const (
	byteRuneBase rune = 0xe000
	escapeRune   rune = 0xe100
)

// yamlSafe reports whether r can appear verbatim inside a literal block.
func yamlSafe(r rune) bool {
	switch {
	case r == '\t' || r == '\n':
		return true
	case r >= 0x20 && r <= 0x7e:
		return true
	case r == 0x2028 || r == 0x2029 || r == 0xfeff || r == escapeRune:
		return false
	case r >= 0xa0 && r <= 0xd7ff:
		return true
	case r >= 0xe000 && r <= 0xfffd:
		return true
	default:
		return r >= 0x10000 && r <= utf8.MaxRune
	}
}

// escapeRecord rewrites one log record so that the YAML decoder accepts it.
func escapeRecord(rec []byte) []byte {
	out := make([]byte, 0, len(rec))
	for i := 0; i < len(rec); {
		r, size := utf8.DecodeRune(rec[i:])
		if (r != utf8.RuneError || size > 1) && yamlSafe(r) {
			out = append(out, rec[i:i+size]...)
			i += size
			continue
		}
		for _, b := range rec[i : i+size] {
			out = utf8.AppendRune(out, escapeRune)
			out = utf8.AppendRune(out, byteRuneBase+rune(b))
		}
		i += size
	}
	return out
}

// restoreText undoes escapeRecord on a decoded value.
func restoreText(s string) string {
	if !strings.ContainsRune(s, escapeRune) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	pending := false
	for _, r := range s {
		switch {
		case pending && r >= byteRuneBase && r <= byteRuneBase+0xff:
			b.WriteByte(byte(r - byteRuneBase))
			pending = false
		case r == escapeRune:
			pending = true
		default:
			b.WriteRune(r)
			pending = false
		}
	}
	return b.String()
}

func (r *logRecord) restore() {
	r.Hash = restoreText(r.Hash)
	r.Parents = restoreText(r.Parents)
	r.Subject = restoreText(r.Subject)
	r.Body = restoreText(r.Body)
	r.Trailers = restoreText(r.Trailers)
}
