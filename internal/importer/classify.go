package importer

import (
	"context"
	"fmt"
)

// Classify partitions candidates against the store in a single pass, keeping
// input order inside each bucket. The first candidate with a given reference id
// wins; later ones become in-file duplicates without a store lookup. Candidates
// without a reference id are always new. Any store failure aborts the whole
// classification.
func (r *Reconciler) Classify(ctx context.Context, candidates []Candidate, store RecordStore, opts ClassifyOptions) (*Batch, error) {
	batch := &Batch{
		NewRecords:       []Candidate{},
		UpdateRecords:    []UpdateCandidate{},
		DuplicatesInFile: []Candidate{},
		RecordsToRemove:  nil,
		RemoveNotInFile:  opts.RemoveNotInFile,
	}

	seen := make(map[string]bool)
	for _, c := range candidates {
		if !c.HasReference() {
			batch.NewRecords = append(batch.NewRecords, c)
			continue
		}

		if seen[c.ReferenceID] {
			batch.DuplicatesInFile = append(batch.DuplicatesInFile, c)
			continue
		}
		seen[c.ReferenceID] = true

		existing, err := store.FindByReferenceID(ctx, c.ReferenceID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up reference %q (row %d): %w", c.ReferenceID, c.Row, err)
		}
		if existing != nil {
			batch.UpdateRecords = append(batch.UpdateRecords, UpdateCandidate{Candidate: c, Existing: *existing})
		} else {
			batch.NewRecords = append(batch.NewRecords, c)
		}
	}

	if opts.RemoveNotInFile {
		all, err := store.GetAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list clients: %w", err)
		}
		for _, client := range all {
			ref := client.Reference()
			// seen holds exactly the references kept in new and update records
			if ref == "" || seen[ref] {
				continue
			}
			batch.RecordsToRemove = append(batch.RecordsToRemove, *client)
		}
	}

	r.logger.WithField("new", len(batch.NewRecords)).
		WithField("update", len(batch.UpdateRecords)).
		WithField("duplicates", len(batch.DuplicatesInFile)).
		WithField("remove", len(batch.RecordsToRemove)).
		Debug("Classified import batch")

	return batch, nil
}
