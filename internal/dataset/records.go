package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// InferOptions controls how string records are typed.
type InferOptions struct {
	// DecimalSeparator for numeric cells. If 0, auto-detect per value.
	DecimalSeparator rune
	// ThousandsSeparator is optional; if 0, common separators are stripped.
	ThousandsSeparator rune
	// Categorical forces the named columns to stay categorical even when every
	// value parses as a number.
	Categorical []string
}

// FromRecords builds a dataset from a header and string rows. A column is
// numeric when every non-empty cell parses as a number; otherwise it is
// categorical. Either way the trimmed cell text is kept and rendered by
// Record, so "1,234" or "12.5%" are written back as read. Short rows are
// padded with missing cells; extra cells are ignored.
func FromRecords(header []string, rows [][]string, opt InferOptions) (*Dataset, error) {
	forced := make(map[string]bool, len(opt.Categorical))
	for _, name := range opt.Categorical {
		forced[strings.TrimSpace(name)] = true
	}
	cols := make([]*Column, 0, len(header))
	for j, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("column_%d", j+1)
		}
		cells := make([]string, len(rows))
		for i, rec := range rows {
			if j < len(rec) {
				cells[i] = strings.TrimSpace(rec[j])
			}
		}
		if !forced[name] {
			if nums, ok := parseColumn(cells, opt); ok {
				cols = append(cols, &Column{name: name, kind: Numeric, nums: nums, raw: cells})
				continue
			}
		}
		cols = append(cols, &Column{name: name, kind: Categorical, strs: cells})
	}
	return New(cols...)
}

// parseColumn returns the numeric rendering of cells when all non-empty
// cells are numbers and at least one is present.
func parseColumn(cells []string, opt InferOptions) ([]float64, bool) {
	nums := make([]float64, len(cells))
	seen := false
	for i, v := range cells {
		if v == "" {
			nums[i] = math.NaN()
			continue
		}
		x, ok := ParseNumeric(v, opt.DecimalSeparator, opt.ThousandsSeparator)
		if !ok {
			return nil, false
		}
		nums[i] = x
		seen = true
	}
	return nums, seen
}

// ParseNumeric parses a locale formatted number such as "1.000,5" or
// "12.5%". A zero dec auto-detects the decimal separator from the value.
func ParseNumeric(s string, dec, thou rune) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.ReplaceAll(raw, "%", "")
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0:
			if cpos > dpos {
				dec, thou = ',', '.'
			} else {
				dec, thou = '.', ','
			}
		case cpos >= 0:
			dec = ','
		default:
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
