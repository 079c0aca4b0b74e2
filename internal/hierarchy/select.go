package hierarchy

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fentz26/ganttline/internal/models"
)

// ParseIDList expands "21,22,30-35" into ids, keeping first-seen order and
// dropping repeats. Ranges may be written in either direction.
func ParseIDList(text string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}

	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		left, right, isRange := strings.Cut(part, "-")
		if !isRange {
			add(part)
			continue
		}
		lo, err1 := strconv.Atoi(strings.TrimSpace(left))
		hi, err2 := strconv.Atoi(strings.TrimSpace(right))
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("%w: id range %q", ErrInvalidOp, part)
		}
		if lo > hi {
			lo, hi = hi, lo
		}
		for n := lo; n <= hi; n++ {
			add(strconv.Itoa(n))
		}
	}
	return out, nil
}

// SelectByIDs picks records by id. A selected id with children brings its
// whole subtree; a leaf brings its ancestors and its siblings. With depth set,
// ids whose record sits at another depth are skipped.
//
// Problems are returned as warnings; the selection is still made from the ids
// that resolved. Output order is input order.
func SelectByIDs(records []models.TaskRecord, ids []string, depth *int) ([]models.TaskRecord, []string) {
	ix := BuildIndex(records)
	selected := make([]bool, len(records))
	var warnings, missing []string

	for _, id := range ids {
		pos, ok := ix.Position(id)
		if !ok {
			missing = append(missing, id)
			continue
		}
		if depth != nil && records[pos].Depth != *depth {
			warnings = append(warnings, fmt.Sprintf("id %s is not at depth %d", id, *depth))
			continue
		}

		selected[pos] = true
		if len(ix.ChildrenAt(pos)) > 0 {
			for _, d := range ix.DescendantPositions(pos) {
				selected[d] = true
			}
			continue
		}
		for _, a := range ix.AncestorPositions(pos) {
			selected[a] = true
		}
		if ix.ParentAt(pos) >= 0 {
			for _, s := range ix.SiblingPositions(pos) {
				selected[s] = true
			}
		}
	}
	if len(missing) > 0 {
		warnings = append([]string{"ids not found: " + strings.Join(missing, ", ")}, warnings...)
	}

	out := make([]models.TaskRecord, 0)
	for i, r := range records {
		if selected[i] {
			out = append(out, r)
		}
	}
	return out, warnings
}
