package promptcsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// Row is one line of a processed batch: the original prompt and either
// the generated text or an error placeholder.
type Row struct {
	Prompt   string
	Response string
}

// ErrNoPromptColumn reports a well-formed CSV whose header has no
// "prompt" column.
var ErrNoPromptColumn = errors.New("csv has no prompt column")

// Parse reads an uploaded CSV and returns the values of the prompt
// column in file order. Values are taken verbatim; empty cells and
// duplicates are kept, and any other columns are ignored.
func Parse(r io.Reader) ([]string, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("read csv: empty file")
	}
	col := -1
	for i, name := range records[0] {
		if name == "prompt" {
			col = i
			break
		}
	}
	if col == -1 {
		return nil, ErrNoPromptColumn
	}
	prompts := make([]string, 0, len(records)-1)
	for _, record := range records[1:] {
		prompts = append(prompts, record[col])
	}
	return prompts, nil
}

// Render writes rows as a two-column CSV with a prompt,response header.
func Render(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"prompt", "response"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write([]string{row.Prompt, row.Response}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
