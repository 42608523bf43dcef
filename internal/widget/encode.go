package widget

import (
	"net/url"
	"strings"
)

// Sentinel is the option value that stands for "no valid selection". The
// encoder only ever emits '%' followed by two hex digits, so "%ERR%" can never
// be the encoding of a user value.
const Sentinel = "%ERR%"

// Encode percent-encodes raw for use in an option value, compatible with
// JavaScript's encodeURIComponent for everything except !'()* which are
// escaped as well. Spaces become %20, never '+'.
func Encode(raw string) string {
	return strings.ReplaceAll(url.QueryEscape(raw), "+", "%20")
}

// Decode reverses Encode. Malformed input is returned unchanged.
func Decode(enc string) string {
	raw, err := url.PathUnescape(enc)
	if err != nil {
		return enc
	}
	return raw
}
