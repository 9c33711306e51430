// Package codec decodes the binary bits found in manifests: whitespace
// wrapped base64 text and ISO/IEC 23001-7 PSSH boxes.
package codec

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

var encodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// StripWhitespace removes every whitespace rune, PSSH text is
// often wrapped at a fixed column.
func StripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// DecodeBase64 accepts standard and url alphabets, padded or not.
func DecodeBase64(s string) ([]byte, error) {
	s = StripWhitespace(s)
	if s == "" {
		return nil, errors.New("empty base64 input")
	}
	for _, encoding := range encodings {
		if data, err := encoding.DecodeString(s); err == nil {
			return data, nil
		}
	}
	return nil, errors.Errorf("invalid base64 input of length %d", len(s))
}

// HexToBase64URL re-encodes hex as unpadded base64url.
func HexToBase64URL(hexStr string) (string, error) {
	data, err := hex.DecodeString(hexStr)
	if err != nil {
		return "", errors.Wrap(err, "invalid hex input")
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}
