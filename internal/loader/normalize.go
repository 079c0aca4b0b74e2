package loader

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/fentz26/ganttline/internal/models"
)

var dateLayouts = []string{
	"02/01/06",
	"2/1/06",
	"02/01/2006",
	"2/1/2006",
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// NormalizeDate rewrites a date in any accepted layout as DD/MM/YY. Text that
// is not a date is returned trimmed but otherwise unchanged.
func NormalizeDate(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.Format(models.DateLayout)
		}
	}
	return text
}

// normalizeCellDate accepts raw spreadsheet values: Excel serial numbers as
// well as date text.
func normalizeCellDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f > 0 {
		if t, err := excelize.ExcelDateToTime(f, false); err == nil {
			return t.Format(models.DateLayout)
		}
	}
	return NormalizeDate(raw)
}

// ParsePercent reads "45%", "45", "0.45" or "1". Bare numbers between 0 and 1
// are fractions. The result is rounded and clamped to 0..100; nil means the
// text was empty or not a number.
func ParsePercent(text string) *int {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	explicit := strings.HasSuffix(text, "%")
	f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(text, "%")), 64)
	if err != nil {
		return nil
	}
	if !explicit && f >= 0 && f <= 1 {
		f *= 100
	}
	p := int(math.Round(f))
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	return &p
}

// ParseISODuration converts an MS Project duration such as PT40H0M0S into
// working days of eight hours: "5d", "1.5d". Zero or empty is "0"; anything
// unreadable is returned as is.
func ParseISODuration(text string) string {
	if text == "" || text == "PT0H0M0S" {
		return "0"
	}
	h, _, ok := strings.Cut(text, "H")
	if !ok {
		return text
	}
	hours, err := strconv.Atoi(strings.TrimPrefix(h, "PT"))
	if err != nil {
		return text
	}
	days := float64(hours) / 8
	if days == math.Trunc(days) {
		return fmt.Sprintf("%dd", int(days))
	}
	return fmt.Sprintf("%.1fd", days)
}

// normalizeID turns numeric ids stored as floats ("21.0") into their integer
// text.
func normalizeID(raw string) string {
	raw = strings.TrimSpace(raw)
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f == math.Trunc(f) && !strings.ContainsAny(raw, "eE") {
		return strconv.FormatInt(int64(f), 10)
	}
	return raw
}

func splitList(text string) []string {
	var out []string
	for _, part := range strings.Split(text, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
