package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func writeTempXLSX(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}

	path := filepath.Join(t.TempDir(), "clients.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestDetectFormat(t *testing.T) {
	format, err := DetectFormat("clients.CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, format)

	format, err = DetectFormat("export.xlsx")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, format)

	_, err = DetectFormat("notes.txt")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = DetectFormat("no-extension")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFileReader_CSV(t *testing.T) {
	reader := NewFileReader()

	t.Run("reads headers and rows", func(t *testing.T) {
		path := writeTempFile(t, "clients.csv", "name, email ,Client Reference\nAnn Lee,ann@x.com,100\nBob Roe,BOB@X.com,101\n")

		sheet, err := reader.ReadSheet(path, FormatCSV)
		require.NoError(t, err)
		assert.Equal(t, []string{"name", "email", "Client Reference"}, sheet.Headers)
		require.Len(t, sheet.Rows, 2)
		assert.Equal(t, RawRow{"name": "Bob Roe", "email": "BOB@X.com", "Client Reference": "101"}, sheet.Rows[1])
	})

	t.Run("strips a UTF-8 byte order mark", func(t *testing.T) {
		path := writeTempFile(t, "bom.csv", "\ufeffname,email\nAnn,ann@x.com\n")

		sheet, err := reader.ReadSheet(path, FormatCSV)
		require.NoError(t, err)
		assert.Equal(t, []string{"name", "email"}, sheet.Headers)
	})

	t.Run("pads short rows and warns on long rows", func(t *testing.T) {
		path := writeTempFile(t, "ragged.csv", "name,email,Phone\nAnn,ann@x.com\nBob,bob@x.com,123,extra\n")

		sheet, err := reader.ReadSheet(path, FormatCSV)
		require.NoError(t, err)
		require.Len(t, sheet.Rows, 2)
		assert.Equal(t, "", sheet.Rows[0]["Phone"])
		assert.Equal(t, "123", sheet.Rows[1]["Phone"])
		require.Len(t, sheet.Warnings, 1)
		assert.Equal(t, 3, sheet.Warnings[0].Row)
	})

	t.Run("skips blank lines", func(t *testing.T) {
		path := writeTempFile(t, "blank.csv", "name,email\n,\nAnn,ann@x.com\n , \n")

		sheet, err := reader.ReadSheet(path, FormatCSV)
		require.NoError(t, err)
		assert.Len(t, sheet.Rows, 1)
	})

	t.Run("keeps values verbatim", func(t *testing.T) {
		path := writeTempFile(t, "quoted.csv", "name,email,Notes\nAnn,ann@x.com,\"  likes, commas \"\n")

		sheet, err := reader.ReadSheet(path, FormatCSV)
		require.NoError(t, err)
		assert.Equal(t, "  likes, commas ", sheet.Rows[0]["Notes"])
	})

	t.Run("header only file is empty", func(t *testing.T) {
		path := writeTempFile(t, "header.csv", "name,email\n")

		_, err := reader.ReadSheet(path, FormatCSV)
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("zero byte file is empty", func(t *testing.T) {
		path := writeTempFile(t, "empty.csv", "")

		_, err := reader.ReadSheet(path, FormatCSV)
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("missing file is unreadable", func(t *testing.T) {
		_, err := reader.ReadSheet(filepath.Join(t.TempDir(), "missing.csv"), FormatCSV)
		assert.ErrorIs(t, err, ErrUnreadableFile)
	})
}

func TestFileReader_XLSX(t *testing.T) {
	reader := NewFileReader()

	t.Run("reads the first sheet", func(t *testing.T) {
		path := writeTempXLSX(t, [][]interface{}{
			{"Client Forename", "Client Surname", "Client Email", "Client Reference"},
			{"Ann", "Lee", "ann@x.com", "100"},
			{"Bob", "Roe", "bob@x.com"},
		})

		sheet, err := reader.ReadSheet(path, FormatXLSX)
		require.NoError(t, err)
		assert.Equal(t, []string{"Client Forename", "Client Surname", "Client Email", "Client Reference"}, sheet.Headers)
		require.Len(t, sheet.Rows, 2)
		assert.Equal(t, "100", sheet.Rows[0]["Client Reference"])
		assert.Equal(t, "", sheet.Rows[1]["Client Reference"])
	})

	t.Run("a CSV renamed to xlsx is unreadable", func(t *testing.T) {
		path := writeTempFile(t, "fake.xlsx", "name,email\nAnn,ann@x.com\n")

		_, err := reader.ReadSheet(path, FormatXLSX)
		assert.ErrorIs(t, err, ErrUnreadableFile)
	})

	t.Run("header only workbook is empty", func(t *testing.T) {
		path := writeTempXLSX(t, [][]interface{}{{"name", "email"}})

		_, err := reader.ReadSheet(path, FormatXLSX)
		assert.ErrorIs(t, err, ErrEmptyFile)
	})
}

func TestFileReader_UnsupportedFormat(t *testing.T) {
	reader := NewFileReader()
	path := writeTempFile(t, "clients.csv", "name,email\n")

	_, err := reader.ReadSheet(path, Format("ods"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
