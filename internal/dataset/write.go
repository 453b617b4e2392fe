package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/KaramelBytes/popstat-cli/internal/table"
	"github.com/KaramelBytes/popstat-cli/internal/utils"
)

// WriteCSV writes t with a header row. Missing cells are written empty and
// undefined cells as "undefined".
func WriteCSV(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)
	cols := t.Columns()
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(cols))
	for i := 0; i < t.NumRows(); i++ {
		for j, c := range cols {
			rec[j] = t.Value(i, c).String()
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes t to path atomically.
func SaveCSV(path string, t *table.Table) error {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, t); err != nil {
		return err
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}
