package dataio

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/KaramelBytes/fairloom-cli/internal/dataset"
	"github.com/KaramelBytes/fairloom-cli/internal/utils"
)

// WriteCSV encodes ds as comma separated records with a header row.
func WriteCSV(w io.Writer, ds *dataset.Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ds.Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := 0; i < ds.Len(); i++ {
		if err := cw.Write(ds.Record(i)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV writes ds to path atomically.
func ExportCSV(path string, ds *dataset.Dataset) error {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, ds); err != nil {
		return err
	}
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("export csv: %w", err)
	}
	return nil
}
