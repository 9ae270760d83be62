// Package decode turns raw bytes of CSV fields into valid UTF-8 text.
//
// Decoding is permissive: it never fails. Bytes that cannot be decoded
// under the source character set are either dropped or replaced with
// U+FFFD, depending on the Mode.
package decode

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gnames/gnlib"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// Mode determines what happens to undecodable bytes.
type Mode int

const (
	// Ignore drops undecodable bytes.
	Ignore Mode = iota
	// Replace substitutes every undecodable sequence with U+FFFD.
	Replace
)

// ParseMode converts "ignore" or "replace" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ignore", "":
		return Ignore, nil
	case "replace":
		return Replace, nil
	default:
		return Ignore, fmt.Errorf("unknown decode mode %q", s)
	}
}

func (m Mode) String() string {
	if m == Replace {
		return "replace"
	}
	return "ignore"
}

// Decoder converts strings from a source character set to UTF-8.
// It is safe for sequential use only.
type Decoder struct {
	charset string
	mode    Mode
	// dec is nil for UTF-8 sources.
	dec *encoding.Decoder
}

// New creates a Decoder for a WHATWG charset label such as "utf-8",
// "windows-1252" or "iso-8859-1".
func New(charset string, mode Mode) (*Decoder, error) {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unknown charset %q: %w", charset, err)
	}

	name, _ := htmlindex.Name(enc)
	res := &Decoder{charset: name, mode: mode}
	if enc != unicode.UTF8 {
		res.dec = enc.NewDecoder()
	}
	return res, nil
}

// Charset returns the canonical name of the source character set.
func (d *Decoder) Charset() string {
	return d.charset
}

// Mode returns how undecodable bytes are handled.
func (d *Decoder) Mode() Mode {
	return d.mode
}

// String decodes s. The result is always valid UTF-8.
func (d *Decoder) String(s string) string {
	if d.dec == nil {
		return d.fromUTF8(s)
	}

	res, err := d.dec.String(s)
	if err != nil {
		// x/text charmap decoders do not fail; keep the promise
		// of never failing anyway.
		return d.fromUTF8(s)
	}
	if d.mode == Ignore {
		res = strings.ReplaceAll(res, string(utf8.RuneError), "")
	}
	return res
}

// Fields decodes every field of a record in place and returns it.
func (d *Decoder) Fields(fields []string) []string {
	for i := range fields {
		fields[i] = d.String(fields[i])
	}
	return fields
}

func (d *Decoder) fromUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	if d.mode == Replace {
		return gnlib.FixUtf8(s)
	}
	return strings.ToValidUTF8(s, "")
}
