package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"client-feedback-admin/internal/config"
	"client-feedback-admin/internal/importer"
	"client-feedback-admin/internal/logger"
	"client-feedback-admin/internal/models"
	"client-feedback-admin/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ImportState is a step of the import session lifecycle
type ImportState string

const (
	StateUploaded   ImportState = "uploaded"
	StateValidated  ImportState = "validated"
	StateClassified ImportState = "classified"
	StateApplied    ImportState = "applied"
	StateCancelled  ImportState = "cancelled"
)

// Upload is an uploaded file saved to disk. The service owns Path and removes it.
type Upload struct {
	Path     string
	FileName string
}

// ImportOptions are the operator's choices for one upload
type ImportOptions struct {
	ReferenceField  string `json:"reference_field"`
	UpdateExisting  bool   `json:"update_existing"`
	RemoveNotInFile bool   `json:"remove_not_in_file"`
}

// ImportSession is a classified upload waiting for confirmation
type ImportSession struct {
	ID        string                  `json:"id"`
	AdminID   string                  `json:"admin_id"`
	FileName  string                  `json:"file_name"`
	State     ImportState             `json:"state"`
	Options   ImportOptions           `json:"options"`
	Batch     *importer.Batch         `json:"batch"`
	Skipped   []importer.SkippedRow   `json:"skipped"`
	Warnings  []importer.ParseWarning `json:"warnings,omitempty"`
	CreatedAt time.Time               `json:"created_at"`
	ExpiresAt time.Time               `json:"expires_at"`
}

// ImportCounts summarises a staged batch for the preview
type ImportCounts struct {
	New        int `json:"new"`
	Update     int `json:"update"`
	Duplicates int `json:"duplicates"`
	Remove     int `json:"remove"`
	Skipped    int `json:"skipped"`
}

// Counts returns the bucket sizes of the staged batch
func (s *ImportSession) Counts() ImportCounts {
	counts := ImportCounts{Skipped: len(s.Skipped)}
	if s.Batch != nil {
		counts.New = len(s.Batch.NewRecords)
		counts.Update = len(s.Batch.UpdateRecords)
		counts.Duplicates = len(s.Batch.DuplicatesInFile)
		counts.Remove = len(s.Batch.RecordsToRemove)
	}
	return counts
}

// ImportSummary is the outcome of a confirmed import
type ImportSummary struct {
	ImportID string           `json:"import_id"`
	Result   *importer.Result `json:"result"`
	Message  string           `json:"message"`
}

// SummaryMessage renders a result the way operators are shown it
func SummaryMessage(result *importer.Result, updateExisting bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Import completed: %d clients created", result.Created)
	if result.Updated > 0 {
		fmt.Fprintf(&b, ", %d updated", result.Updated)
	}
	if result.Skipped > 0 && !updateExisting {
		fmt.Fprintf(&b, ", %d skipped (already exist)", result.Skipped)
	} else if result.Skipped > 0 {
		fmt.Fprintf(&b, ", %d skipped", result.Skipped)
	}
	if result.Removed > 0 {
		fmt.Fprintf(&b, ", %d removed", result.Removed)
	}
	if result.Failed > 0 {
		fmt.Fprintf(&b, ", %d failed", result.Failed)
	}
	if result.DuplicatesIgnored > 0 {
		fmt.Fprintf(&b, ". %d duplicates in file were ignored", result.DuplicatesIgnored)
	}
	return b.String()
}

// importService implements ImportService
type importService struct {
	logger     *logger.Logger
	config     config.ImportConfig
	reconciler *importer.Reconciler
	clients    repositories.ClientRepository
	runs       repositories.ImportRunRepository
	staging    StagingStore
	metrics    *ImportMetrics
}

// NewImportService creates a new import service
func NewImportService(
	logger *logger.Logger,
	cfg *config.Config,
	reconciler *importer.Reconciler,
	clients repositories.ClientRepository,
	runs repositories.ImportRunRepository,
	staging StagingStore,
	metrics *ImportMetrics,
) ImportService {
	return &importService{
		logger:     logger,
		config:     cfg.Import,
		reconciler: reconciler,
		clients:    clients,
		runs:       runs,
		staging:    staging,
		metrics:    metrics,
	}
}

func (s *importService) ttl() time.Duration {
	return time.Duration(s.config.StagingTTL) * time.Second
}

// Stage validates, parses, normalises and classifies an upload and stages the
// batch for preview. The uploaded file is removed before Stage returns.
func (s *importService) Stage(ctx context.Context, adminID string, upload Upload, opts ImportOptions) (*ImportSession, error) {
	defer s.removeUpload(upload.Path)

	if strings.TrimSpace(opts.ReferenceField) == "" {
		opts.ReferenceField = s.config.ReferenceFieldName
	}

	log := s.logger.WithUser(adminID).WithField("file_name", upload.FileName)
	session := &ImportSession{
		AdminID:  adminID,
		FileName: upload.FileName,
		State:    StateUploaded,
		Options:  opts,
	}

	format, err := importer.DetectFormat(upload.FileName)
	if err != nil {
		s.metrics.FileRejected("unsupported_format")
		return nil, err
	}

	sheet, err := s.reconciler.ReadSheet(upload.Path, format)
	if err != nil {
		s.metrics.FileRejected(rejectReason(err))
		log.WithError(err).Warn("Rejected unreadable import file")
		return nil, err
	}
	if !s.reconciler.ValidateSheet(sheet) {
		s.metrics.FileRejected("not_client_list")
		return nil, importer.ErrNotClientList
	}
	session.State = StateValidated

	normalized := s.reconciler.NormalizeRows(sheet, opts.ReferenceField)
	if len(normalized.Candidates) == 0 {
		s.metrics.FileRejected("no_valid_records")
		return nil, ErrNoValidRecords
	}

	batch, err := s.reconciler.Classify(ctx, normalized.Candidates, s.clients, importer.ClassifyOptions{
		RemoveNotInFile: opts.RemoveNotInFile,
	})
	if err != nil {
		log.WithError(err).Error("Failed to classify import")
		return nil, fmt.Errorf("failed to classify import: %w", err)
	}
	batch.UpdateExisting = opts.UpdateExisting

	now := time.Now().UTC()
	session.ID = uuid.NewString()
	session.State = StateClassified
	session.Batch = batch
	session.Skipped = normalized.Skipped
	session.Warnings = sheet.Warnings
	session.CreatedAt = now
	session.ExpiresAt = now.Add(s.ttl())

	if err := s.staging.Put(ctx, session, s.ttl()); err != nil {
		return nil, err
	}
	s.metrics.SessionStaged()

	s.logger.WithImport(session.ID).WithFields(logrus.Fields{
		"admin_id":   adminID,
		"file_name":  upload.FileName,
		"new":        len(batch.NewRecords),
		"update":     len(batch.UpdateRecords),
		"duplicates": len(batch.DuplicatesInFile),
		"remove":     len(batch.RecordsToRemove),
		"skipped":    len(normalized.Skipped),
	}).Info("Import staged for preview")

	return session, nil
}

// Preview returns a staged session owned by adminID
func (s *importService) Preview(ctx context.Context, adminID, importID string) (*ImportSession, error) {
	return s.load(ctx, adminID, importID)
}

// Confirm applies a staged session exactly once. The staged entry is removed
// before anything is written so a second confirm finds nothing.
func (s *importService) Confirm(ctx context.Context, adminID, importID string) (*ImportSummary, error) {
	session, err := s.load(ctx, adminID, importID)
	if err != nil {
		return nil, err
	}

	if err := s.staging.Delete(ctx, importID); err != nil {
		return nil, err
	}

	result, err := s.reconciler.Apply(ctx, session.Batch, s.clients, importer.ApplyOptions{
		UpdateExisting:  session.Options.UpdateExisting,
		RemoveNotInFile: session.Options.RemoveNotInFile,
	})
	if err != nil {
		return nil, err
	}
	session.State = StateApplied
	s.metrics.ObserveResult(result)

	run := &models.ImportRun{
		ImportID:          session.ID,
		AdminID:           adminID,
		FileName:          session.FileName,
		ReferenceField:    session.Options.ReferenceField,
		UpdateExisting:    session.Options.UpdateExisting,
		RemoveNotInFile:   session.Options.RemoveNotInFile,
		Created:           result.Created,
		Updated:           result.Updated,
		Skipped:           result.Skipped,
		Removed:           result.Removed,
		DuplicatesIgnored: result.DuplicatesIgnored,
		Failed:            result.Failed,
	}
	if err := s.runs.Create(ctx, run); err != nil {
		// the clients are already written; losing the audit row is not fatal
		s.logger.WithImport(importID).WithError(err).Error("Failed to record import run")
	}

	summary := &ImportSummary{
		ImportID: session.ID,
		Result:   result,
		Message:  SummaryMessage(result, session.Options.UpdateExisting),
	}

	s.logger.WithImport(importID).WithField("admin_id", adminID).Info(summary.Message)

	return summary, nil
}

// Cancel discards a staged session without touching the client store
func (s *importService) Cancel(ctx context.Context, adminID, importID string) error {
	if _, err := s.load(ctx, adminID, importID); err != nil {
		return err
	}
	if err := s.staging.Delete(ctx, importID); err != nil {
		return err
	}
	s.metrics.SessionCancelled()
	s.logger.WithImport(importID).WithField("admin_id", adminID).Info("Import cancelled")
	return nil
}

// RecentRuns lists the latest confirmed imports
func (s *importService) RecentRuns(ctx context.Context, limit int) ([]*models.ImportRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.runs.GetRecent(ctx, limit)
}

func (s *importService) load(ctx context.Context, adminID, importID string) (*ImportSession, error) {
	if _, err := uuid.Parse(importID); err != nil {
		return nil, ErrImportNotFound
	}

	session, err := s.staging.Get(ctx, importID)
	if err != nil {
		return nil, err
	}
	if session.AdminID != adminID {
		s.logger.WithImport(importID).WithField("admin_id", adminID).Warn("Import accessed by another administrator")
		return nil, ErrImportForbidden
	}
	return session, nil
}

func (s *importService) removeUpload(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.WithField("path", path).WithError(err).Warn("Failed to remove uploaded file")
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, importer.ErrEmptyFile):
		return "empty_file"
	case errors.Is(err, importer.ErrUnsupportedFormat):
		return "unsupported_format"
	default:
		return "unreadable_file"
	}
}
