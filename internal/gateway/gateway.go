// Package gateway reads sheets from and writes new workbooks to the
// storage the editor works against.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"voice-sheet/internal/format"
)

var (
	ErrSheetNotFound = errors.New("sheet not found")
	ErrNoSheets      = errors.New("no sheets to write")
	ErrFileExists    = errors.New("file already exists")
	ErrInvalidFileID = errors.New("invalid file id")
)

// Error wraps a storage failure with the operation and file it hit.
type Error struct {
	Op   string // "read" or "create"
	File string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway %s %q: %v", e.Op, e.File, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type Metadata struct {
	Title  string   `json:"title"`
	Sheets []string `json:"sheets"`
}

// SheetData is one sheet as read from storage.
type SheetData struct {
	SheetName  string             `json:"sheetName"`
	Values     [][]string         `json:"values"`
	Formatting []format.CellStyle `json:"formatting"`
	Metadata   Metadata           `json:"metadata"`
}

// NewSheet is one sheet of a workbook to create.
type NewSheet struct {
	SheetName  string             `json:"sheetName"`
	Values     [][]string         `json:"values"`
	Formatting []format.CellStyle `json:"formatting"`
}

type CreateResult struct {
	URL string `json:"url"`
}

// Gateway is the storage the session reads base sheets from and saves
// edited copies to. An empty sheetName selects the first sheet.
type Gateway interface {
	ReadSheet(ctx context.Context, fileID, sheetName string) (*SheetData, error)
	CreateSheet(ctx context.Context, fileName string, sheets []NewSheet) (CreateResult, error)
}
