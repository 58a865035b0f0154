package calibration

import (
	"encoding/base64"

	pkgerrors "github.com/pkg/errors"
)

const base64Pad = '='

var base64Values = func() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = 0xff
	}
	for i, c := range []byte(base64Alphabet) {
		t[c] = byte(i)
	}
	return t
}()

const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// decodeData decodes the base64 text of a <data> element the lenient way:
// bytes outside the alphabet are skipped, and decoding stops at the first
// group completed by padding, so excess padding and trailing data are
// ignored. Text must be ASCII. It fails when the data characters do not
// form whole groups, i.e. missing padding or a length of 4n+1.
func decodeData(text string) ([]byte, error) {
	out := make([]byte, 0, base64.StdEncoding.DecodedLen(len(text)))

	var (
		quad  int
		left  byte
		pads  int
		chars int
	)

	for i := 0; i < len(text); i++ {
		c := text[i]
		if c >= 0x80 {
			return nil, pkgerrors.Errorf("non-ASCII character at input byte %d", i)
		}

		if c == base64Pad {
			if quad >= 2 {
				pads++
				if quad+pads >= 4 {
					return out, nil
				}
			}
			continue
		}

		v := base64Values[c]
		if v == 0xff {
			continue
		}
		chars++
		pads = 0

		switch quad {
		case 0:
			left = v
		case 1:
			out = append(out, left<<2|v>>4)
			left = v & 0x0f
		case 2:
			out = append(out, left<<4|v>>2)
			left = v & 0x03
		case 3:
			out = append(out, left<<6|v)
		}
		quad = (quad + 1) % 4
	}

	switch quad {
	case 0:
		return out, nil
	case 1:
		return nil, pkgerrors.Errorf("number of data characters (%d) cannot be 1 more than a multiple of 4", chars)
	default:
		return nil, pkgerrors.New("incorrect padding")
	}
}
