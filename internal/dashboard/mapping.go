package dashboard

import (
	"encoding/json"

	"github.com/tally-ai/taggo/pkg/query"
	"github.com/tally-ai/taggo/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "annotations", "a").
	Project("id", "ID").
	Project("status", "Status").
	Project("labelled_at", "LabelledAt").
	Project("reviewed_at", "ReviewedAt").
	Project("history", "History").
	Join("public", "users", "ua", "LEFT JOIN", "a.assigned_to = ua.id").
	Project("username", "Assignee").
	Join("public", "users", "ul", "LEFT JOIN", "a.labelled_by = ul.id").
	Project("username", "Labeller").
	Join("public", "users", "ur", "LEFT JOIN", "a.reviewed_by = ur.id").
	Project("username", "Reviewer")

// Filter columns not part of the selected row shape pass through the
// projection unmapped.
const (
	labelledByColumn = "a.labelled_by"
	reviewedByColumn = "a.reviewed_by"
)

func scanRow(s repository.Scanner) (Row, error) {
	var (
		r       Row
		history []byte
	)

	err := s.Scan(
		&r.ID,
		&r.Status,
		&r.LabelledAt,
		&r.ReviewedAt,
		&history,
		&r.Assignee,
		&r.Labeller,
		&r.Reviewer,
	)
	if err != nil {
		return r, err
	}

	if len(history) > 0 {
		if err := json.Unmarshal(history, &r.History); err != nil {
			return r, err
		}
	}

	return r, nil
}
