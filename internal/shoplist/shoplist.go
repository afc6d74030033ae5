// Package shoplist merges the ingredients of a user's cart into one shopping list.
package shoplist

import (
	"sort"
	"strconv"
	"strings"

	"github.com/and161185/foodgram/internal/model"
)

// Entry is the merged quantity of one ingredient name.
type Entry struct {
	Quantity int
	Unit     string
}

// Line is an Entry together with its ingredient name.
type Line struct {
	Name string
	Entry
}

// Aggregate sums amounts by ingredient name across every recipe in lines.
// Rows sharing a name but not a unit are summed too; the last unit seen wins.
// An empty cart yields an empty, non-nil map.
func Aggregate(lines []model.CartLine) map[string]Entry {
	out := make(map[string]Entry, len(lines))
	for _, l := range lines {
		e := out[l.Name]
		e.Quantity += l.Amount
		e.Unit = l.Unit
		out[l.Name] = e
	}
	return out
}

// Sorted returns the aggregate as lines ordered by name.
func Sorted(m map[string]Entry) []Line {
	out := make([]Line, 0, len(m))
	for name, e := range m {
		out = append(out, Line{Name: name, Entry: e})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Render formats the aggregate one newline-terminated line per ingredient,
// "<name> (<unit>) — <quantity>", ordered by name.
func Render(m map[string]Entry) string {
	var b strings.Builder
	for _, l := range Sorted(m) {
		b.WriteString(l.Name)
		b.WriteString(" (")
		b.WriteString(l.Unit)
		b.WriteString(") — ")
		b.WriteString(strconv.Itoa(l.Quantity))
		b.WriteByte('\n')
	}
	return b.String()
}
