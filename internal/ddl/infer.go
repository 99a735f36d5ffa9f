package ddl

import (
	"fmt"
	"regexp"
	"strings"

	"reportmerge/internal/schema"
)

var (
	nonIdent    = regexp.MustCompile(`[^a-z0-9_]+`)
	underscores = regexp.MustCompile(`_{2,}`)
)

// Identifier turns a column header into a lowercase SQL identifier. Headers
// that normalize to nothing become col_<n> (1-based position).
func Identifier(header string, pos int) string {
	id := nonIdent.ReplaceAllString(schema.Normalize(header), "_")
	id = strings.Trim(underscores.ReplaceAllString(id, "_"), "_")
	if id == "" {
		return fmt.Sprintf("col_%d", pos)
	}
	if id[0] >= '0' && id[0] <= '9' {
		id = "c_" + id
	}
	return id
}

// Identifiers maps headers to unique identifiers, appending _2, _3, ... to
// repeats.
func Identifiers(headers []string) []string {
	out := make([]string, len(headers))
	seen := make(map[string]int, len(headers))
	for i, h := range headers {
		id := Identifier(h, i+1)
		base := id
		for n := 2; seen[id] > 0; n++ {
			id = fmt.Sprintf("%s_%d", base, n)
		}
		seen[id]++
		out[i] = id
	}
	return out
}

// InferType returns Real when every non-empty value is numeric, Integer when
// every non-empty value is an integer type, and Text otherwise. A column with
// no values is Text.
func InferType(values []any) Type {
	typ, seen := Integer, false
	for _, v := range values {
		switch x := v.(type) {
		case nil:
			continue
		case string:
			if x == "" {
				continue
			}
			return Text
		case int, int64:
		case float64, float32:
			typ = Real
		default:
			return Text
		}
		seen = true
	}
	if !seen {
		return Text
	}
	return typ
}
