package cuesheet

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// charsetAliases covers names common in cue tooling that the WHATWG index
// does not know.
var charsetAliases = map[string]encoding.Encoding{
	"sjis":   japanese.ShiftJIS,
	"cp932":  japanese.ShiftJIS,
	"cp1252": charmap.Windows1252,
	"cp1251": charmap.Windows1251,
	"cp437":  charmap.CodePage437,
	"cp850":  charmap.CodePage850,
}

// lookupCharset resolves a charset name. A nil encoding means UTF-8.
func lookupCharset(name string) (encoding.Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "", "utf-8", "utf8":
		return nil, nil
	}
	if enc, ok := charsetAliases[key]; ok {
		return enc, nil
	}
	enc, err := htmlindex.Get(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, name)
	}
	return enc, nil
}

// ValidCharset reports whether name is accepted by Decode.
func ValidCharset(name string) bool {
	_, err := lookupCharset(name)
	return err == nil
}

// Decode converts raw track list bytes to a UTF-8 string.
//
// With an empty charset the data is taken as UTF-8 when valid, and as
// Windows-1252 otherwise (the usual code page of cue sheets ripped on
// Windows). A named charset is always applied.
func Decode(data []byte, charset string) (string, error) {
	enc, err := lookupCharset(charset)
	if err != nil {
		return "", err
	}
	if enc == nil {
		if strings.TrimSpace(charset) != "" || utf8.Valid(data) {
			return string(data), nil
		}
		enc = charmap.Windows1252
	}

	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), enc.NewDecoder()))
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", charset, err)
	}
	return string(out), nil
}
