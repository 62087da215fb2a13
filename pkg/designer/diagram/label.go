package diagram

import (
	"regexp"
	"strconv"
	"strings"
)

// reserved holds the characters that carry meaning in flowchart syntax.
// '#' and ';' are included so that encoded output always decodes back to
// the original label.
const reserved = ":&#;\"'`<>|()[]{}@%\n\r"

var entityCode = regexp.MustCompile(`#(\d+);`)

// SanitizeLabel encodes every reserved character as a Mermaid entity code
// (#<decimal>;). Characters outside ASCII are left untouched.
func SanitizeLabel(label string) string {
	if label == "" {
		return ""
	}
	var sb strings.Builder
	for _, r := range label {
		if strings.ContainsRune(reserved, r) {
			sb.WriteString("#")
			sb.WriteString(strconv.Itoa(int(r)))
			sb.WriteString(";")
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// DecodeLabel reverses SanitizeLabel the way the rendering engine does.
func DecodeLabel(encoded string) string {
	return entityCode.ReplaceAllStringFunc(encoded, func(m string) string {
		code, err := strconv.Atoi(m[1 : len(m)-1])
		if err != nil || code > 0x10FFFF {
			return m
		}
		return string(rune(code))
	})
}
