package importer

import (
	"strings"

	"client-feedback-admin/internal/models"
)

// Row skip reasons
const (
	ReasonMissingName  = "missing name"
	ReasonMissingEmail = "missing email"
	ReasonInvalidEmail = "invalid email"
)

// SkippedRow is a row the normalizer rejected
type SkippedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
	Data   RawRow `json:"data,omitempty"`
}

// NormalizeResult holds the candidates extracted from a sheet and the rows that were dropped
type NormalizeResult struct {
	Candidates []Candidate  `json:"candidates"`
	Skipped    []SkippedRow `json:"skipped"`
}

// normalizeSheet converts every row of the sheet. Columns are resolved once
// from the header row; rows are numbered as in the spreadsheet (header is row 1).
func normalizeSheet(sheet *Sheet, referenceField string) NormalizeResult {
	result := NormalizeResult{
		Candidates: []Candidate{},
		Skipped:    []SkippedRow{},
	}
	if sheet == nil {
		return result
	}

	cols := ResolveColumns(sheet.Headers, referenceField)
	for i, row := range sheet.Rows {
		rowNum := i + 2
		candidate, reason := normalizeRow(row, sheet.Headers, cols)
		if reason != "" {
			result.Skipped = append(result.Skipped, SkippedRow{Row: rowNum, Reason: reason, Data: row})
			continue
		}
		candidate.Row = rowNum
		result.Candidates = append(result.Candidates, candidate)
	}

	return result
}

func normalizeRow(row RawRow, headers []string, cols Columns) (Candidate, string) {
	name, nameCol := extractName(row, cols)
	if name == "" {
		return Candidate{}, ReasonMissingName
	}

	email := ""
	if cols.Email != "" {
		email = strings.ToLower(strings.TrimSpace(row[cols.Email]))
	}
	if email == "" {
		return Candidate{}, ReasonMissingEmail
	}
	if !strings.Contains(email, "@") {
		return Candidate{}, ReasonInvalidEmail
	}

	ref := ""
	if cols.Reference != "" {
		ref = strings.TrimSpace(row[cols.Reference])
	}

	extra := make(map[string]string)
	for _, h := range headers {
		if h == "" || h == nameCol || cols.consumed(h) {
			continue
		}
		if v, ok := row[h]; ok {
			extra[h] = v
		}
	}
	if ref != "" {
		extra[models.ClientIDKey] = ref
	}

	return Candidate{
		Name:        name,
		Email:       email,
		ReferenceID: ref,
		Extra:       extra,
	}, ""
}

// extractName applies the name precedence and reports which fallback column,
// if any, supplied the value.
func extractName(row RawRow, cols Columns) (string, string) {
	if cols.Name != "" {
		if name := strings.TrimSpace(row[cols.Name]); name != "" {
			return name, ""
		}
	}

	if cols.Forename != "" && cols.Surname != "" {
		forename := strings.TrimSpace(row[cols.Forename])
		surname := strings.TrimSpace(row[cols.Surname])
		if forename != "" && surname != "" {
			return forename + " " + surname, ""
		}
	}

	for _, h := range cols.NameFallbacks {
		if name := strings.TrimSpace(row[h]); name != "" {
			return name, h
		}
	}

	return "", ""
}
