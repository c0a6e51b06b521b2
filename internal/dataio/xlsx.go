package dataio

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/fairloom-cli/internal/dataset"
	"github.com/xuri/excelize/v2"
)

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(path string) bool {
	name := strings.ToLower(path)
	return strings.HasSuffix(name, ".xlsx") || strings.HasSuffix(name, ".xlsm")
}

func (xlsxLoader) Load(path string, opt Options) (*dataset.Dataset, error) {
	return LoadXLSX(path, opt)
}

// LoadXLSX reads one sheet of a workbook. The sheet is chosen by
// opt.SheetName, else by the 1-based opt.SheetIndex, else the first sheet.
// The first row is the header.
func LoadXLSX(path string, opt Options) (*dataset.Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet, err := pickSheet(f.GetSheetList(), opt, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	all, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(all) == 0 {
		return dataset.New()
	}
	header := all[0]
	var rows [][]string
	for _, rec := range all[1:] {
		if isBlank(rec) {
			continue
		}
		if opt.MaxRows > 0 && len(rows) >= opt.MaxRows {
			break
		}
		rows = append(rows, rec)
	}
	return dataset.FromRecords(header, rows, opt.Infer)
}

func pickSheet(sheets []string, opt Options, file string) (string, error) {
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook '%s' has no sheets", file)
	}
	if opt.SheetName != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, opt.SheetName) {
				return s, nil
			}
		}
		return "", fmt.Errorf("sheet '%s' not found in workbook '%s'.\nAvailable sheets: %s",
			opt.SheetName, file, strings.Join(sheets, ", "))
	}
	idx := opt.SheetIndex
	if idx <= 0 {
		idx = 1
	}
	if idx > len(sheets) {
		return "", fmt.Errorf("sheet index %d out of range: workbook '%s' has %d sheet(s)", idx, file, len(sheets))
	}
	return sheets[idx-1], nil
}
