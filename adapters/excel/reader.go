package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"godisso/domain/profile"
	"godisso/internal/errors"
)

// ProfileReader reads dissolution tables from Excel workbooks or CSV files.
//
// Workbook layout: one sheet per group; the header row holds a batch label
// followed by the time points in minutes; every following row is one batch.
// CSV layout: columns group, batch, then one column per time point.
type ProfileReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewProfileReader creates a reader that handles both Excel and CSV files
func NewProfileReader(filePath string) *ProfileReader {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	return &ProfileReader{filePath: filePath, fileType: fileType}
}

// Read loads all profile groups from the file, keyed by group name.
func (r *ProfileReader) Read() (map[string]*profile.Set, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.IngestError(fmt.Sprintf("file not found: %s", r.filePath))
	}

	var (
		sets map[string]*profile.Set
		err  error
	)
	switch r.fileType {
	case "csv":
		sets, err = r.readCSV()
	case "xlsx":
		sets, err = r.readWorkbook()
	default:
		return nil, errors.IngestError(fmt.Sprintf("unsupported file type: %s", r.fileType))
	}
	if err != nil {
		return nil, err
	}

	for _, set := range sets {
		if verr := set.Validate(); verr != nil {
			return nil, errors.Wrapf(verr, "group %s in %s is not a usable dissolution table", set.Group, r.filePath)
		}
	}
	return sets, nil
}

func (r *ProfileReader) readWorkbook() (map[string]*profile.Set, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open workbook %s", r.filePath)
	}
	defer f.Close()

	sets := make(map[string]*profile.Set)
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read sheet %s", sheet)
		}
		set, err := parseSheet(sheet, rows)
		if err != nil {
			return nil, err
		}
		sets[sheet] = set
	}
	return sets, nil
}

func parseSheet(sheet string, rows [][]string) (*profile.Set, error) {
	if len(rows) < 2 {
		return nil, errors.IngestError(fmt.Sprintf("sheet %s needs a header row and at least one batch row", sheet))
	}
	header := rows[0]
	if len(header) < 2 {
		return nil, errors.IngestError(fmt.Sprintf("sheet %s header needs a batch column and at least one time point", sheet))
	}

	times := make([]float64, 0, len(header)-1)
	for col, cell := range header[1:] {
		t, err := parseCell(cell)
		if err != nil {
			return nil, errors.IngestError(fmt.Sprintf("sheet %s: header column %d is not a time point: %q", sheet, col+2, cell))
		}
		times = append(times, t)
	}

	set := &profile.Set{Group: sheet, Times: times}
	for rowIdx, row := range rows[1:] {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue // trailing blank rows are common in hand-edited workbooks
		}
		if len(row) != len(times)+1 {
			return nil, errors.IngestError(fmt.Sprintf("sheet %s row %d has %d cells, want %d", sheet, rowIdx+2, len(row), len(times)+1))
		}
		release := make([]float64, len(times))
		for i, cell := range row[1:] {
			v, err := parseCell(cell)
			if err != nil {
				return nil, errors.IngestError(fmt.Sprintf("sheet %s row %d column %d: %q is not numeric", sheet, rowIdx+2, i+2, cell))
			}
			release[i] = v
		}
		set.Profiles = append(set.Profiles, profile.Profile{Batch: strings.TrimSpace(row[0]), Release: release})
	}
	return set, nil
}

func (r *ProfileReader) readCSV() (map[string]*profile.Set, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", r.filePath)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", r.filePath)
	}
	if len(records) < 2 {
		return nil, errors.IngestError("CSV needs a header row and at least one batch row")
	}
	header := records[0]
	if len(header) < 3 {
		return nil, errors.IngestError("CSV header needs group, batch and at least one time-point column")
	}

	times := make([]float64, 0, len(header)-2)
	for col, cell := range header[2:] {
		t, err := parseCell(cell)
		if err != nil {
			return nil, errors.IngestError(fmt.Sprintf("header column %d is not a time point: %q", col+3, cell))
		}
		times = append(times, t)
	}

	sets := make(map[string]*profile.Set)
	for rowIdx, row := range records[1:] {
		if len(row) != len(times)+2 {
			return nil, errors.IngestError(fmt.Sprintf("row %d has %d cells, want %d", rowIdx+2, len(row), len(times)+2))
		}
		group := strings.TrimSpace(row[0])
		set, ok := sets[group]
		if !ok {
			set = &profile.Set{Group: group, Times: append([]float64(nil), times...)}
			sets[group] = set
		}
		release := make([]float64, len(times))
		for i, cell := range row[2:] {
			v, err := parseCell(cell)
			if err != nil {
				return nil, errors.IngestError(fmt.Sprintf("row %d column %d: %q is not numeric", rowIdx+2, i+3, cell))
			}
			release[i] = v
		}
		set.Profiles = append(set.Profiles, profile.Profile{Batch: strings.TrimSpace(row[1]), Release: release})
	}
	return sets, nil
}

func parseCell(cell string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(cell), 64)
}
