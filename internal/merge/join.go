package merge

import (
	"fmt"
	"strconv"
	"time"

	"reportmerge/internal/mapping"
	"reportmerge/internal/schema"
	"reportmerge/internal/table"
	"reportmerge/internal/validate"
)

// Join left-joins each secondary onto primary following joins in order.
//
// Every primary row survives. A primary row with several matching secondary
// rows fans out into one row per match, in secondary order, directly after
// one another. Unmatched rows get nil secondary cells. A join whose key
// cannot be resolved on either side is skipped and reported; the columns of
// that secondary are then simply absent.
//
// Key values are compared exactly. Numbers compare by value whatever their
// Go type; text never matches a number. Column labels that
// collide (under schema.Normalize) are suffixed with the owning source's tag
// on both sides so both stay addressable, e.g. "tags_xtm" and "tags_tos".
// A secondary key column that carries the same label as the primary key is
// folded into the primary key column.
//
// Inputs are not modified.
func Join(primary *table.Table, secondaries map[mapping.SourceID]*table.Table, primaryID mapping.SourceID, joins []mapping.JoinSpec) (*table.Table, []validate.Warning) {
	acc := primary.Clone()
	if acc == nil {
		acc = table.New("", nil)
	}
	acc.Name = "joined"
	origins := make([]mapping.SourceID, len(acc.Columns))
	for i := range origins {
		origins[i] = primaryID
	}

	var ws []validate.Warning
	for _, j := range joins {
		sec := secondaries[j.Secondary]

		pk, pok := resolveTagged(acc.Columns, j.PrimaryKey, primaryID)
		var (
			sk  string
			sok bool
		)
		if sec != nil {
			sk, sok = schema.Resolve(sec, j.SecondaryKey)
		}
		if !pok || !sok {
			if !pok {
				ws = validate.Append(ws, skippedJoin(primaryID, j, primaryID, j.PrimaryKey))
			}
			if !sok {
				ws = validate.Append(ws, skippedJoin(primaryID, j, j.Secondary, j.SecondaryKey))
			}
			continue
		}
		acc, origins = leftJoin(acc, origins, pk, sec, j.Secondary, sk)
	}
	return acc, ws
}

// skippedJoin reports the unresolved key of one side of a skipped join.
func skippedJoin(primaryID mapping.SourceID, j mapping.JoinSpec, src mapping.SourceID, key string) validate.Warning {
	return validate.Warning{
		Kind:   validate.KindJoinSkipped,
		Source: src,
		Column: key,
		Detail: fmt.Sprintf("Join %s -> %s skipped: %s key '%s' not found - rows may not align properly",
			primaryID.Label(), j.Secondary.Label(), src.Label(), key),
	}
}

// resolveTagged resolves desired in the joined column set. The source-tagged
// spelling produced by collision renaming ("tags_tos") wins over the plain
// label so a reference keeps pointing at its own source after a clash.
func resolveTagged(columns []string, desired string, src mapping.SourceID) (string, bool) {
	if src != "" {
		if c, ok := schema.ResolveColumns(columns, desired+"_"+src.Tag()); ok {
			return c, true
		}
	}
	return schema.ResolveColumns(columns, desired)
}

func leftJoin(
	acc *table.Table,
	origins []mapping.SourceID,
	pk string,
	sec *table.Table,
	secID mapping.SourceID,
	sk string,
) (*table.Table, []mapping.SourceID) {
	pkIdx := acc.Index(pk)
	skIdx := sec.Index(sk)

	// Secondary columns carried into the result.
	var carry []int
	for i := range sec.Columns {
		if i == skIdx && schema.Normalize(sk) == schema.Normalize(pk) {
			continue
		}
		carry = append(carry, i)
	}

	cols := append([]string(nil), acc.Columns...)
	taken := make(map[string]int, len(cols)) // normalized label -> acc position
	for i, c := range cols {
		if _, dup := taken[schema.Normalize(c)]; !dup {
			taken[schema.Normalize(c)] = i
		}
	}
	renamed := make(map[int]bool)
	secCols := make([]string, len(carry))
	for n, i := range carry {
		name := sec.Columns[i]
		if pos, clash := taken[schema.Normalize(name)]; clash {
			if !renamed[pos] {
				cols[pos] = cols[pos] + "_" + origins[pos].Tag()
				renamed[pos] = true
			}
			name = name + "_" + secID.Tag()
		}
		secCols[n] = name
	}
	cols = uniqueNames(append(cols, secCols...))

	index := make(map[cellKey][]int, len(sec.Rows))
	for r, row := range sec.Rows {
		k, ok := keyOf(row[skIdx])
		if !ok {
			continue
		}
		index[k] = append(index[k], r)
	}

	out := table.New(acc.Name, cols)
	out.Rows = make([][]any, 0, len(acc.Rows))
	width := len(cols)
	for _, row := range acc.Rows {
		var matches []int
		if k, ok := keyOf(row[pkIdx]); ok {
			matches = index[k]
		}
		if len(matches) == 0 {
			nr := make([]any, width)
			copy(nr, row)
			out.Rows = append(out.Rows, nr)
			continue
		}
		for _, m := range matches {
			nr := make([]any, width)
			copy(nr, row)
			for n, i := range carry {
				nr[len(row)+n] = sec.Rows[m][i]
			}
			out.Rows = append(out.Rows, nr)
		}
	}

	nextOrigins := append([]mapping.SourceID(nil), origins...)
	for range carry {
		nextOrigins = append(nextOrigins, secID)
	}
	return out, nextOrigins
}

// uniqueNames appends _2, _3, ... to exact duplicates left after tagging.
func uniqueNames(cols []string) []string {
	seen := make(map[string]int, len(cols))
	for i, c := range cols {
		seen[c]++
		if seen[c] == 1 {
			continue
		}
		for n := seen[c]; ; n++ {
			cand := c + "_" + strconv.Itoa(n)
			if _, dup := seen[cand]; !dup {
				cols[i] = cand
				seen[cand] = 1
				break
			}
		}
	}
	return cols
}

// cellKey is a hashable join key. Numbers of any Go kind share one type so
// int64(1) joins float64(1); numbers never join text.
type cellKey struct {
	typ string
	val string
}

// keyOf returns the join key of a cell. Empty cells never match.
func keyOf(v any) (cellKey, bool) {
	if table.IsEmpty(v) {
		return cellKey{}, false
	}
	switch x := v.(type) {
	case time.Time:
		return cellKey{typ: "time", val: x.UTC().Format(time.RFC3339Nano)}, true
	case float64:
		return numKey(x), true
	case float32:
		return numKey(float64(x)), true
	case int:
		return cellKey{typ: "num", val: strconv.Itoa(x)}, true
	case int64:
		return cellKey{typ: "num", val: strconv.FormatInt(x, 10)}, true
	case int32:
		return cellKey{typ: "num", val: strconv.FormatInt(int64(x), 10)}, true
	}
	return cellKey{typ: fmt.Sprintf("%T", v), val: fmt.Sprint(v)}, true
}

func numKey(f float64) cellKey {
	return cellKey{typ: "num", val: strconv.FormatFloat(f, 'g', -1, 64)}
}
