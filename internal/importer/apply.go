package importer

import (
	"context"
	"fmt"

	"client-feedback-admin/internal/models"

	"github.com/sirupsen/logrus"
)

// Skip and failure reasons reported by Apply
const (
	ReasonAlreadyExists  = "already exists"
	ReasonClientGone     = "client no longer exists"
	reasonEmailTakenBy   = "email already exists for client: %s"
	reasonStoreFailure   = "store error: %v"
	reasonLookupFailure  = "lookup failed: %v"
	reasonRemovalFailure = "removal failed: %v"
)

// Apply performs the creates, updates and deletes of a classified batch. Every
// record is attempted exactly once; a store error on one record is reported in
// the result and processing moves on. Deletions only run when
// opts.RemoveNotInFile is set.
func (r *Reconciler) Apply(ctx context.Context, batch *Batch, store RecordStore, opts ApplyOptions) (*Result, error) {
	if batch == nil {
		return nil, ErrNilBatch
	}

	result := &Result{
		DuplicatesIgnored: len(batch.DuplicatesInFile),
		Details:           []Outcome{},
	}

	for _, c := range batch.NewRecords {
		result.record(r.create(ctx, c, store, opts))
	}

	for _, u := range batch.UpdateRecords {
		if !opts.UpdateExisting {
			result.record(outcome(u.Candidate, ActionSkipped, ReasonAlreadyExists).withClient(u.Existing.ID))
			continue
		}
		result.record(r.update(ctx, u.Candidate, store))
	}

	if opts.RemoveNotInFile {
		for _, client := range batch.RecordsToRemove {
			result.record(r.remove(ctx, client, store))
		}
	}

	r.logger.WithFields(logrus.Fields{
		"created":            result.Created,
		"updated":            result.Updated,
		"skipped":            result.Skipped,
		"removed":            result.Removed,
		"duplicates_ignored": result.DuplicatesIgnored,
		"failed":             result.Failed,
	}).Info("Import batch applied")

	return result, nil
}

// create inserts a new client unless its email already belongs to a stored
// client. A stored client with the same email and the same reference id is the
// same client and is updated instead when updates are enabled.
func (r *Reconciler) create(ctx context.Context, c Candidate, store RecordStore, opts ApplyOptions) Outcome {
	existing, err := store.FindByEmail(ctx, c.Email)
	if err != nil {
		return r.failed(c, fmt.Sprintf(reasonLookupFailure, err), err)
	}

	if existing != nil {
		if existing.Reference() != c.ReferenceID {
			return outcome(c, ActionSkipped, fmt.Sprintf(reasonEmailTakenBy, existing.Name)).withClient(existing.ID)
		}
		if !opts.UpdateExisting {
			return outcome(c, ActionSkipped, ReasonAlreadyExists).withClient(existing.ID)
		}
		return r.merge(ctx, c, existing, store)
	}

	client := &models.Client{
		Name:      c.Name,
		Email:     c.Email,
		ExtraData: models.StringMap(c.Extra).Clone(),
	}
	client.SetReference(c.ReferenceID)

	if err := store.Create(ctx, client); err != nil {
		return r.failed(c, fmt.Sprintf(reasonStoreFailure, err), err)
	}

	return outcome(c, ActionCreated, "").withClient(client.ID)
}

// update re-reads the matched client so the merge starts from current data
func (r *Reconciler) update(ctx context.Context, c Candidate, store RecordStore) Outcome {
	existing, err := store.FindByReferenceID(ctx, c.ReferenceID)
	if err != nil {
		return r.failed(c, fmt.Sprintf(reasonLookupFailure, err), err)
	}
	if existing == nil {
		return r.failed(c, ReasonClientGone, nil)
	}

	if existing.Email != c.Email {
		owner, err := store.FindByEmail(ctx, c.Email)
		if err != nil {
			return r.failed(c, fmt.Sprintf(reasonLookupFailure, err), err)
		}
		if owner != nil && owner.ID != existing.ID {
			return outcome(c, ActionSkipped, fmt.Sprintf(reasonEmailTakenBy, owner.Name)).withClient(existing.ID)
		}
	}

	return r.merge(ctx, c, existing, store)
}

// merge overwrites name and email and takes the union of extra data, with the
// candidate's values winning
func (r *Reconciler) merge(ctx context.Context, c Candidate, existing *models.Client, store RecordStore) Outcome {
	updated := *existing
	updated.ExtraData = existing.ExtraData.Clone()
	if updated.ExtraData == nil {
		updated.ExtraData = models.StringMap{}
	}
	for k, v := range c.Extra {
		updated.ExtraData[k] = v
	}
	updated.Name = c.Name
	updated.Email = c.Email
	updated.SetReference(c.ReferenceID)

	if err := store.Update(ctx, &updated); err != nil {
		return r.failed(c, fmt.Sprintf(reasonStoreFailure, err), err)
	}

	return outcome(c, ActionUpdated, "").withClient(existing.ID)
}

func (r *Reconciler) remove(ctx context.Context, client models.Client, store RecordStore) Outcome {
	o := Outcome{
		ClientID:    client.ID,
		Name:        client.Name,
		Email:       client.Email,
		ReferenceID: client.Reference(),
		Action:      ActionRemoved,
	}

	if err := store.Delete(ctx, client.ID); err != nil {
		r.logger.WithFields(logrus.Fields{
			"client_id": client.ID,
			"reference": o.ReferenceID,
			"error":     err.Error(),
		}).Error("Failed to remove client not present in import")
		o.Action = ActionFailed
		o.Reason = fmt.Sprintf(reasonRemovalFailure, err)
	}

	return o
}

func (r *Reconciler) failed(c Candidate, reason string, err error) Outcome {
	fields := logrus.Fields{
		"row":       c.Row,
		"email":     c.Email,
		"reference": c.ReferenceID,
		"reason":    reason,
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	r.logger.WithFields(fields).Error("Failed to apply import record")
	return outcome(c, ActionFailed, reason)
}

func outcome(c Candidate, action Action, reason string) Outcome {
	return Outcome{
		Row:         c.Row,
		Name:        c.Name,
		Email:       c.Email,
		ReferenceID: c.ReferenceID,
		Action:      action,
		Reason:      reason,
	}
}

func (o Outcome) withClient(id string) Outcome {
	o.ClientID = id
	return o
}
