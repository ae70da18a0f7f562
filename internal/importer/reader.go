package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Format is a supported spreadsheet format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat picks the format from a file name's extension
func DetectFormat(fileName string) (Format, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(fileName))
	}
}

// SpreadsheetReader reads full sheets from uploaded files
type SpreadsheetReader interface {
	ReadSheet(path string, format Format) (*Sheet, error)
}

// FileReader reads CSV and XLSX files from disk. For XLSX only the first
// worksheet is read.
type FileReader struct{}

// NewFileReader creates a new file reader
func NewFileReader() *FileReader {
	return &FileReader{}
}

// ReadSheet returns the header row and every non-blank data row
func (fr *FileReader) ReadSheet(path string, format Format) (*Sheet, error) {
	var (
		records [][]string
		err     error
		sheet   = &Sheet{}
	)

	switch format {
	case FormatCSV:
		records, err = fr.csvRecords(path, sheet)
	case FormatXLSX:
		records, err = fr.xlsxRecords(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no header row found", ErrEmptyFile)
	}

	sheet.Headers = trimHeaders(records[0])
	for i, record := range records[1:] {
		if row := buildRow(sheet, i+2, record); row != nil {
			sheet.Rows = append(sheet.Rows, row)
		}
	}

	if len(sheet.Rows) == 0 {
		return nil, ErrEmptyFile
	}

	return sheet, nil
}

// buildRow maps a record onto the headers, padding short records and
// dropping cells beyond the last header. Blank records yield nil.
func buildRow(sheet *Sheet, rowNum int, record []string) RawRow {
	blank := true
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			blank = false
			break
		}
	}
	if blank {
		return nil
	}

	if len(record) > len(sheet.Headers) {
		sheet.Warnings = append(sheet.Warnings, ParseWarning{
			Row:     rowNum,
			Message: fmt.Sprintf("row has %d columns, expected %d; extra columns ignored", len(record), len(sheet.Headers)),
		})
	}

	row := make(RawRow, len(sheet.Headers))
	for i, h := range sheet.Headers {
		if h == "" {
			continue
		}
		if _, dup := row[h]; dup {
			continue
		}
		if i < len(record) {
			row[h] = record[i]
		} else {
			row[h] = ""
		}
	}
	return row
}

func trimHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	for i, h := range raw {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	return headers
}

// openCSV returns a csv reader over UTF-8 text, honouring a UTF-8 or UTF-16 BOM
func openCSV(path string) (*os.File, *csv.Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}

	decoded := transform.NewReader(f, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	return f, reader, nil
}

func (fr *FileReader) csvRecords(path string, sheet *Sheet) ([][]string, error) {
	f, reader, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records [][]string
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			if line == 1 {
				return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
			}
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
			}
			sheet.Warnings = append(sheet.Warnings, ParseWarning{
				Row:     line,
				Message: fmt.Sprintf("parse error: %v", err),
			})
			// keep row numbering aligned with the file
			records = append(records, nil)
			continue
		}
		records = append(records, record)
	}

	return records, nil
}

func (fr *FileReader) xlsxRecords(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}
	defer f.Close()

	records, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}

	return records, nil
}
