package importer

import (
	"errors"

	"client-feedback-admin/internal/logger"

	"github.com/sirupsen/logrus"
)

// ErrNotClientList is returned when a readable file lacks name or email columns
var ErrNotClientList = errors.New("file does not look like a client list: a name and an email column are required")

// ClassifyOptions controls Classify
type ClassifyOptions struct {
	RemoveNotInFile bool
}

// ApplyOptions controls Apply
type ApplyOptions struct {
	UpdateExisting  bool
	RemoveNotInFile bool
}

// Reconciler normalises, classifies and applies client imports
type Reconciler struct {
	logger *logger.Logger
	reader SpreadsheetReader
}

// NewReconciler creates a new reconciler
func NewReconciler(logger *logger.Logger, reader SpreadsheetReader) *Reconciler {
	return &Reconciler{
		logger: logger,
		reader: reader,
	}
}

// ValidateSheet reports whether the header row of sheet carries name and
// email columns
func (r *Reconciler) ValidateSheet(sheet *Sheet) bool {
	return ValidateHeaders(sheet.Headers)
}

// ReadSheet parses the whole file
func (r *Reconciler) ReadSheet(path string, format Format) (*Sheet, error) {
	sheet, err := r.reader.ReadSheet(path, format)
	if err != nil {
		return nil, err
	}
	for _, w := range sheet.Warnings {
		r.logger.WithFields(logrus.Fields{
			"row":     w.Row,
			"warning": w.Message,
		}).Warn("Spreadsheet parse warning")
	}
	return sheet, nil
}

// NormalizeRows turns the rows of a sheet into candidates. Rejected rows are
// returned with their reason and never cause an error.
func (r *Reconciler) NormalizeRows(sheet *Sheet, referenceField string) NormalizeResult {
	result := normalizeSheet(sheet, referenceField)
	for _, s := range result.Skipped {
		r.logger.WithFields(logrus.Fields{
			"row":    s.Row,
			"reason": s.Reason,
		}).Warn("Skipping import row")
	}
	return result
}
