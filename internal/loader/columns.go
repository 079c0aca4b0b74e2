package loader

import "strings"

// columns holds zero-based column positions; -1 means absent.
type columns struct {
	id, depth, name, status, assignee, start, end, percent, duration, predecessors int
}

var columnAliases = map[string][]string{
	"id":           {"id", "uid"},
	"depth":        {"nivel", "level", "depth", "outline level"},
	"name":         {"nombre de la tarea", "nombre de tarea", "nombre", "task name", "name"},
	"status":       {"estado", "status"},
	"assignee":     {"asignado a", "asignado", "assigned", "assigned to"},
	"start":        {"fecha de inicio", "inicio", "start", "start date"},
	"end":          {"fecha de finalización", "fecha de finalizacion", "fin", "finish", "end", "end date"},
	"percent":      {"porcentaje completo", "% completo", "avance", "percent complete", "percentcomplete", "% complete"},
	"duration":     {"duración", "duracion", "duration"},
	"predecessors": {"predecesores", "predecessors", "pred"},
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
}

func matchColumns(header []string) columns {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, dup := pos[key]; key != "" && !dup {
			pos[key] = i
		}
	}
	find := func(field string) int {
		for _, alias := range columnAliases[field] {
			if i, ok := pos[alias]; ok {
				return i
			}
		}
		return -1
	}
	return columns{
		id:           find("id"),
		depth:        find("depth"),
		name:         find("name"),
		status:       find("status"),
		assignee:     find("assignee"),
		start:        find("start"),
		end:          find("end"),
		percent:      find("percent"),
		duration:     find("duration"),
		predecessors: find("predecessors"),
	}
}

// cell returns row[i] trimmed, or "" when the column is absent or the row short.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
