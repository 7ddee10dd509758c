// Package encoding converts input bytes to UTF-8 before decoding and CSV
// text to the requested output charset afterwards.
package encoding

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	xencoding "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	// sniffLen is the number of bytes used by http.DetectContentType
	sniffLen = 512
	// checkLen is a buffer size used for null byte checks.
	checkLen = 1024
	// Null byte threshold percentage to consider input binary.
	nullThreshold = 0.15
)

var (
	// ErrUnknownCharset indicates a charset name that cannot be resolved.
	ErrUnknownCharset = errors.New("unknown charset")
	// ErrBinaryInput indicates input that looks like binary data rather than a text document.
	ErrBinaryInput = errors.New("input appears to be binary")
)

// MIME types that http.DetectContentType reports for text documents.
var knownTextMIMETypes = map[string]bool{
	"application/json":         true,
	"application/xml":          true,
	"application/javascript":   true,
	"application/yaml":         true,
	"application/octet-stream": true, // undecided; the null check settles it
}

// EncodingHandler detects and converts input charsets and flags binary input.
type EncodingHandler interface {
	// DetectAndDecode converts content to UTF-8. It returns the UTF-8
	// bytes, the charset name used, and whether that charset was certain
	// (BOM, valid UTF-8, or a configured fallback).
	DetectAndDecode(content []byte) (utf8Content []byte, detectedEncoding string, certainty bool, err error)

	// DecodeAs converts content from the named charset to UTF-8.
	DecodeAs(content []byte, name string) ([]byte, error)

	// IsBinary reports whether content is likely binary data, based on
	// MIME sniffing and the share of null bytes.
	IsBinary(content []byte) bool
}

// goCharsetEncodingHandler implements EncodingHandler using
// golang.org/x/net/html/charset.
type goCharsetEncodingHandler struct {
	defaultEncoding string
}

// NewGoCharsetEncodingHandler creates a handler. defaultEncoding is used
// for input that is neither BOM-marked nor valid UTF-8; empty means guess.
func NewGoCharsetEncodingHandler(defaultEncoding string) EncodingHandler {
	return &goCharsetEncodingHandler{defaultEncoding: defaultEncoding}
}

// DetectAndDecode implements the EncodingHandler interface.
func (h *goCharsetEncodingHandler) DetectAndDecode(content []byte) ([]byte, string, bool, error) {
	enc, name, certain := charset.DetermineEncoding(content, "")
	if certain {
		out, err := decodeWith(enc, content)
		if err != nil {
			return content, name, certain, fmt.Errorf("failed to convert from '%s': %w", name, err)
		}
		return out, name, true, nil
	}

	if utf8.Valid(content) {
		return content, "utf-8", true, nil
	}

	if h.defaultEncoding != "" {
		if fallback, fallbackName := charset.Lookup(h.defaultEncoding); fallback != nil {
			enc, name, certain = fallback, fallbackName, true
		}
	}
	if name == "" {
		name = "unknown"
	}
	out, err := decodeWith(enc, content)
	if err != nil {
		return content, name, certain, fmt.Errorf("failed to convert from '%s': %w", name, err)
	}
	return out, name, certain, nil
}

// DecodeAs implements the EncodingHandler interface.
func (h *goCharsetEncodingHandler) DecodeAs(content []byte, name string) ([]byte, error) {
	enc, canonical := charset.Lookup(name)
	if enc == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, name)
	}
	out, err := decodeWith(enc, content)
	if err != nil {
		return nil, fmt.Errorf("failed to convert from '%s': %w", canonical, err)
	}
	return out, nil
}

// decodeWith runs content through enc's decoder and drops a leading BOM.
func decodeWith(enc xencoding.Encoding, content []byte) ([]byte, error) {
	if enc == nil {
		return content, nil
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), content)
	if err != nil {
		return nil, err
	}
	return bytes.TrimPrefix(out, []byte("\ufeff")), nil
}

// IsBinary implements the EncodingHandler interface.
func (h *goCharsetEncodingHandler) IsBinary(content []byte) bool {
	if len(content) == 0 {
		return false
	}

	contentType := http.DetectContentType(content[:min(len(content), sniffLen)])
	if !isMIMETextBased(contentType) {
		return true
	}

	window := content[:min(len(content), checkLen)]
	nullCount := bytes.Count(window, []byte{0x00})
	return float64(nullCount)/float64(len(window)) > nullThreshold
}

// isMIMETextBased checks if a detected MIME type is likely text-based.
func isMIMETextBased(contentType string) bool {
	mimeType := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	if strings.HasPrefix(mimeType, "text/") {
		return true
	}
	if knownTextMIMETypes[mimeType] {
		return true
	}
	return strings.HasSuffix(mimeType, "+xml") || strings.HasSuffix(mimeType, "+json")
}

// CanonicalName resolves a charset label such as "latin1" to its
// canonical name.
func CanonicalName(name string) (string, error) {
	enc, canonical := charset.Lookup(strings.TrimSpace(name))
	if enc == nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownCharset, name)
	}
	return canonical, nil
}

// --- Output ---

// NewOutputEncoder returns a transformer producing the named charset and its
// canonical name. bom prepends a byte order mark for UTF-8 and UTF-16
// output and is rejected for other charsets.
func NewOutputEncoder(name string, bom bool) (transform.Transformer, string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		if bom {
			return unicode.UTF8BOM.NewEncoder(), "utf-8", nil
		}
		return transform.Nop, "utf-8", nil
	case "utf-16le":
		return utf16Encoder(unicode.LittleEndian, bom), "utf-16le", nil
	case "utf-16be":
		return utf16Encoder(unicode.BigEndian, bom), "utf-16be", nil
	}

	enc, canonical := charset.Lookup(name)
	if enc == nil {
		return nil, "", fmt.Errorf("%w: %q", ErrUnknownCharset, name)
	}
	if bom {
		return nil, "", fmt.Errorf("%w: byte order mark is not defined for %q", ErrUnknownCharset, canonical)
	}
	// characters the charset cannot represent become its replacement byte
	return xencoding.ReplaceUnsupported(enc.NewEncoder()), canonical, nil
}

func utf16Encoder(order unicode.Endianness, bom bool) transform.Transformer {
	policy := unicode.IgnoreBOM
	if bom {
		policy = unicode.UseBOM
	}
	return unicode.UTF16(order, policy).NewEncoder()
}

// EncodeString converts UTF-8 text to the named output charset.
func EncodeString(text, name string, bom bool) ([]byte, string, error) {
	t, canonical, err := NewOutputEncoder(name, bom)
	if err != nil {
		return nil, "", err
	}
	out, _, err := transform.String(t, text)
	if err != nil {
		return nil, "", fmt.Errorf("failed to convert to '%s': %w", canonical, err)
	}
	return []byte(out), canonical, nil
}
