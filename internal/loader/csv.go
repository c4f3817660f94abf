package loader

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"
)

// readCSV reads a CSV file into a header row and data rows. Blank lines are
// skipped and ragged rows are tolerated; short rows surface later as empty
// cells.
func readCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, eris.Wrap(err, "csv: open file")
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	headers, err := r.Read()
	if err == io.EOF {
		return nil, nil, eris.New("loader: file has no headers")
	}
	if err != nil {
		return nil, nil, eris.Wrap(err, "csv: read headers")
	}

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, eris.Wrap(err, "csv: read row")
		}
		if isBlank(row) {
			continue
		}
		rows = append(rows, row)
	}

	return headers, rows, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
