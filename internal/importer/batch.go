// Package importer turns uploaded client spreadsheets into create, update and
// delete operations against the client store.
//
// The flow is: read the file into a Sheet, normalise each row into a
// Candidate, classify candidates against the store into a Batch, and finally
// apply the Batch once an administrator confirms the preview.
package importer

import (
	"context"
	"errors"

	"client-feedback-admin/internal/models"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrUnreadableFile is returned when a file cannot be opened or parsed as its format
	ErrUnreadableFile = errors.New("unreadable file")
	// ErrEmptyFile is returned when a file has no header row or no data rows
	ErrEmptyFile = errors.New("file contains no data rows")
	// ErrNilBatch is returned by Apply when no batch is supplied
	ErrNilBatch = errors.New("no import batch to apply")
)

// RecordStore is the persistence the reconciler reads and writes.
// FindBy* return (nil, nil) when nothing matches.
type RecordStore interface {
	FindByReferenceID(ctx context.Context, ref string) (*models.Client, error)
	FindByEmail(ctx context.Context, email string) (*models.Client, error)
	GetAll(ctx context.Context) ([]*models.Client, error)
	Create(ctx context.Context, client *models.Client) error
	Update(ctx context.Context, client *models.Client) error
	Delete(ctx context.Context, id string) error
}

// RawRow maps a header to the cell value of one spreadsheet row
type RawRow map[string]string

// ParseWarning is a non-fatal problem found while reading a file
type ParseWarning struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Sheet is the parsed content of one uploaded file.
// Headers keep the file's column order; Rows[i] is spreadsheet row i+2.
type Sheet struct {
	Headers  []string       `json:"headers"`
	Rows     []RawRow       `json:"rows"`
	Warnings []ParseWarning `json:"warnings,omitempty"`
}

// Candidate is a normalised, not yet persisted client
type Candidate struct {
	Row         int               `json:"row"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	ReferenceID string            `json:"reference_id,omitempty"`
	Extra       map[string]string `json:"extra"`
}

// HasReference reports whether the candidate carries a reference id
func (c Candidate) HasReference() bool {
	return c.ReferenceID != ""
}

// UpdateCandidate pairs a candidate with the stored client it matched
type UpdateCandidate struct {
	Candidate
	Existing models.Client `json:"existing"`
}

// Batch is the classified content of one upload
type Batch struct {
	NewRecords       []Candidate       `json:"new_records"`
	UpdateRecords    []UpdateCandidate `json:"update_records"`
	DuplicatesInFile []Candidate       `json:"duplicates_in_file"`
	RecordsToRemove  []models.Client   `json:"records_to_remove"`
	UpdateExisting   bool              `json:"update_existing"`
	RemoveNotInFile  bool              `json:"remove_not_in_file"`
}

// Action is the outcome of applying one record
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionSkipped Action = "skipped"
	ActionRemoved Action = "removed"
	ActionFailed  Action = "failed"
)

// Outcome describes what happened to a single record during Apply
type Outcome struct {
	Row         int    `json:"row,omitempty"`
	ClientID    string `json:"client_id,omitempty"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	ReferenceID string `json:"reference_id,omitempty"`
	Action      Action `json:"action"`
	Reason      string `json:"reason,omitempty"`
}

// Result summarises an applied batch. Details lists every skipped or failed record.
type Result struct {
	Created           int       `json:"created"`
	Updated           int       `json:"updated"`
	Skipped           int       `json:"skipped"`
	Removed           int       `json:"removed"`
	DuplicatesIgnored int       `json:"duplicates_ignored"`
	Failed            int       `json:"failed"`
	Details           []Outcome `json:"details"`
}

func (r *Result) record(o Outcome) {
	switch o.Action {
	case ActionCreated:
		r.Created++
	case ActionUpdated:
		r.Updated++
	case ActionRemoved:
		r.Removed++
	case ActionSkipped:
		r.Skipped++
		r.Details = append(r.Details, o)
	case ActionFailed:
		r.Failed++
		r.Details = append(r.Details, o)
	}
}
