package textnorm

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	apperrors "github.com/otherjamesbrown/moodsense/pkg/errors"
)

// Decode turns the raw bytes of an export into a string. A UTF-8 BOM is
// stripped and UTF-16 input with a BOM is transcoded; anything else must
// already be valid UTF-8. Failures wrap apperrors.ErrEncoding.
func Decode(b []byte) (string, error) {
	out, _, err := transform.Bytes(unicode.BOMOverride(encoding.Nop.NewDecoder()), b)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrEncoding, err)
	}
	if !utf8.Valid(out) {
		return "", fmt.Errorf("%w: not valid UTF-8", apperrors.ErrEncoding)
	}
	return string(out), nil
}
