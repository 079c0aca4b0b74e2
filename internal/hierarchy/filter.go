package hierarchy

import "github.com/fentz26/ganttline/internal/models"

// FilterByDepth keeps every record whose depth is in depths together with its
// ancestor chain. Output order is input order restricted to the kept records.
// An empty depths list returns a copy of records. No match returns an empty,
// non-nil slice.
func FilterByDepth(records []models.TaskRecord, depths []int) []models.TaskRecord {
	if len(depths) == 0 {
		return clone(records)
	}
	targets := make(map[int]bool, len(depths))
	for _, d := range depths {
		targets[d] = true
	}

	emitted := make([]bool, len(records))
	var keep []int
	var st ancestorStack
	for i, r := range records {
		st.enter(i, r.Depth)
		if !targets[r.Depth] {
			continue
		}
		for _, pos := range st.chain() {
			if !emitted[pos] {
				emitted[pos] = true
				keep = append(keep, pos)
			}
		}
	}
	return pick(records, keep)
}

// FilterByID returns the ancestor chain of the first record with the given id,
// the record itself and its subtree: every following record deeper than it, up
// to the next record at or above its depth.
//
// With maxDepth set, subtree records more than *maxDepth levels below the target
// are skipped, but the scan continues to the end of the subtree.
// An unknown id returns an empty, non-nil slice.
func FilterByID(records []models.TaskRecord, id string, maxDepth *int) []models.TaskRecord {
	found := -1
	var chain []int
	var st ancestorStack
	for i, r := range records {
		st.enter(i, r.Depth)
		if r.ID == id {
			found = i
			chain = st.chain()
			break
		}
	}
	if found < 0 {
		return []models.TaskRecord{}
	}

	keep := chain
	d := records[found].Depth
	for i := found + 1; i < len(records); i++ {
		depth := records[i].Depth
		if depth <= d {
			break
		}
		if maxDepth != nil && depth > d+*maxDepth {
			continue
		}
		keep = append(keep, i)
	}
	return pick(records, keep)
}

func pick(records []models.TaskRecord, positions []int) []models.TaskRecord {
	out := make([]models.TaskRecord, 0, len(positions))
	for _, p := range positions {
		out = append(out, records[p])
	}
	return out
}

func clone(records []models.TaskRecord) []models.TaskRecord {
	out := make([]models.TaskRecord, len(records))
	copy(out, records)
	return out
}
