package dataio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/KaramelBytes/fairloom-cli/internal/dataset"
)

type csvLoader struct{}

func (csvLoader) CanLoad(path string) bool {
	name := strings.ToLower(path)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".txt")
}

func (csvLoader) Load(path string, opt Options) (*dataset.Dataset, error) {
	return LoadCSV(path, opt)
}

// LoadCSV reads a delimited file with a header row.
func LoadCSV(path string, opt Options) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	return ReadCSV(f, delim, opt)
}

// ReadCSV reads delimited records from r. The first record is the header.
func ReadCSV(r io.Reader, delim rune, opt Options) (*dataset.Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comma = delim

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return dataset.New()
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	header = append([]string(nil), header...)
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
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

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

// ParseDelimiter maps a user supplied delimiter name to a rune.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case "\t", "tab":
		return '\t', nil
	case ";":
		return ';', nil
	case "|":
		return '|', nil
	default:
		return 0, fmt.Errorf("unsupported delimiter: %s", s)
	}
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
