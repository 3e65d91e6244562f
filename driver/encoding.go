package driver

import (
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// decodeSource returns data re-decoded as UTF-8 text. X-BASIC source
// files from the X68000 era are usually CP932 (a Shift-JIS variant); data
// that is already valid UTF-8 is returned unchanged, otherwise it's
// transcoded from CP932 as a fallback, matching the original tool's
// fileencoding() probe.
func decodeSource(data []byte) ([]byte, error) {
	if utf8.Valid(data) {
		return data, nil
	}
	out, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), data)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// encodeCP932 transcodes UTF-8 text to CP932, used for the -s flag's
// "write output as CP932" behavior.
func encodeCP932(w io.Writer, text string) error {
	enc := japanese.ShiftJIS.NewEncoder()
	tw := transform.NewWriter(w, enc)
	defer tw.Close()
	_, err := io.WriteString(tw, text)
	return err
}
