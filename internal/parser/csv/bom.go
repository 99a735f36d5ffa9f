package csv

import (
	"bufio"
	"strings"
)

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// StripHeaderBOM removes a UTF-8 BOM from the first header cell if present.
func StripHeaderBOM(headers []string) []string {
	if len(headers) == 0 {
		return headers
	}
	headers[0] = strings.TrimPrefix(headers[0], utf8BOM)
	return headers
}

// skipBOM discards a leading BOM so delimiter sniffing sees the first real
// header byte.
func skipBOM(br *bufio.Reader) {
	if r, _, err := br.ReadRune(); err == nil && r != '\uFEFF' {
		_ = br.UnreadRune()
	}
}
