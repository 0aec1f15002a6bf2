package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"voice-sheet/internal/format"
)

// XLSX serves workbooks from a local directory. File ids are paths
// relative to Root; new workbooks are written to OutputDir.
type XLSX struct {
	Root      string
	OutputDir string
	log       *logrus.Entry
}

func NewXLSX(root, outputDir string, log *logrus.Entry) *XLSX {
	if outputDir == "" {
		outputDir = root
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &XLSX{Root: root, OutputDir: outputDir, log: log}
}

func (x *XLSX) resolve(fileID string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(fileID))
	if fileID == "" || !filepath.IsLocal(clean) {
		return "", ErrInvalidFileID
	}
	return filepath.Join(x.Root, clean), nil
}

func (x *XLSX) ReadSheet(ctx context.Context, fileID, sheetName string) (*SheetData, error) {
	path, err := x.resolve(fileID)
	if err != nil {
		return nil, &Error{Op: "read", File: fileID, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &Error{Op: "read", File: fileID, Err: err}
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &Error{Op: "read", File: fileID, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if sheetName == "" && len(sheets) > 0 {
		sheetName = sheets[0]
	}
	if !slices.Contains(sheets, sheetName) {
		return nil, &Error{Op: "read", File: fileID, Err: fmt.Errorf("%w: %q", ErrSheetNotFound, sheetName)}
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, &Error{Op: "read", File: fileID, Err: err}
	}
	formatting, err := readStyles(ctx, f, sheetName, rows)
	if err != nil {
		return nil, &Error{Op: "read", File: fileID, Err: err}
	}
	x.log.WithFields(logrus.Fields{
		"file":   fileID,
		"sheet":  sheetName,
		"rows":   len(rows),
		"styled": len(formatting),
	}).Debug("sheet read")

	return &SheetData{
		SheetName:  sheetName,
		Values:     rows,
		Formatting: formatting,
		Metadata: Metadata{
			Title:  strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
			Sheets: sheets,
		},
	}, nil
}

// readStyles collects the non-empty style of every cell GetRows returned.
func readStyles(ctx context.Context, f *excelize.File, sheet string, rows [][]string) ([]format.CellStyle, error) {
	cache := make(map[int]format.StyleRecord)
	var out []format.CellStyle
	for r, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for c := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			id, err := f.GetCellStyle(sheet, cell)
			if err != nil {
				return nil, err
			}
			if id == 0 {
				continue
			}
			rec, ok := cache[id]
			if !ok {
				st, err := f.GetStyle(id)
				if err != nil {
					return nil, err
				}
				rec = format.FromExcelStyle(st)
				cache[id] = rec
			}
			if !rec.IsZero() {
				out = append(out, format.CellStyle{Row: r, Col: c, Format: rec})
			}
		}
	}
	return out, nil
}

// CreateSheet writes sheets to a new workbook in OutputDir. An existing file
// is never overwritten.
func (x *XLSX) CreateSheet(ctx context.Context, fileName string, sheets []NewSheet) (CreateResult, error) {
	name := filepath.Base(strings.TrimSpace(fileName))
	if name == "." || name == string(filepath.Separator) || name == "" {
		return CreateResult{}, &Error{Op: "create", File: fileName, Err: ErrInvalidFileID}
	}
	if !strings.EqualFold(filepath.Ext(name), ".xlsx") {
		name += ".xlsx"
	}
	if len(sheets) == 0 {
		return CreateResult{}, &Error{Op: "create", File: name, Err: ErrNoSheets}
	}
	path := filepath.Join(x.OutputDir, name)
	if _, err := os.Stat(path); err == nil {
		return CreateResult{}, &Error{Op: "create", File: name, Err: ErrFileExists}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return CreateResult{}, &Error{Op: "create", File: name, Err: err}
	}

	f := excelize.NewFile()
	defer f.Close()
	for i, sh := range sheets {
		if err := ctx.Err(); err != nil {
			return CreateResult{}, &Error{Op: "create", File: name, Err: err}
		}
		if err := writeSheet(f, i, sh); err != nil {
			return CreateResult{}, &Error{Op: "create", File: name, Err: err}
		}
	}
	if err := os.MkdirAll(x.OutputDir, 0o755); err != nil {
		return CreateResult{}, &Error{Op: "create", File: name, Err: err}
	}
	if err := f.SaveAs(path); err != nil {
		return CreateResult{}, &Error{Op: "create", File: name, Err: err}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	x.log.WithFields(logrus.Fields{"file": name, "sheets": len(sheets)}).Info("workbook created")
	return CreateResult{URL: u.String()}, nil
}

func writeSheet(f *excelize.File, i int, sh NewSheet) error {
	if i == 0 {
		if err := f.SetSheetName(f.GetSheetName(0), sh.SheetName); err != nil {
			return err
		}
	} else if _, err := f.NewSheet(sh.SheetName); err != nil {
		return err
	}

	for r, row := range sh.Values {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		vals := make([]any, len(row))
		for c, v := range row {
			vals[c] = cellValue(v)
		}
		if err := f.SetSheetRow(sh.SheetName, cell, &vals); err != nil {
			return err
		}
	}

	// One style id per distinct record.
	ids := make(map[string]int)
	for _, cs := range sh.Formatting {
		if cs.Format.IsZero() {
			continue
		}
		key, err := json.Marshal(cs.Format)
		if err != nil {
			return err
		}
		id, ok := ids[string(key)]
		if !ok {
			if id, err = f.NewStyle(format.ToExcelStyle(cs.Format)); err != nil {
				return err
			}
			ids[string(key)] = id
		}
		cell, err := excelize.CoordinatesToCellName(cs.Col+1, cs.Row+1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sh.SheetName, cell, cell, id); err != nil {
			return err
		}
	}
	return nil
}

// maxNumberDigits is the precision a spreadsheet number keeps.
const maxNumberDigits = 15

// cellValue writes plain decimal numbers as numbers so the workbook does
// not flag them as text. Leading zeros, exponents, and values with more
// digits than a float keeps stay text.
func cellValue(v string) any {
	digits := strings.TrimPrefix(strings.TrimPrefix(v, "-"), "+")
	intPart, frac, hasDot := strings.Cut(digits, ".")
	if intPart == "" || (hasDot && frac == "") {
		return v
	}
	if len(intPart) > 1 && intPart[0] == '0' {
		return v
	}
	if len(intPart)+len(frac) > maxNumberDigits {
		return v
	}
	for _, r := range intPart + frac {
		if r < '0' || r > '9' {
			return v
		}
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return v
	}
	return n
}
