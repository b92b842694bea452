package annotations

import (
	"encoding/json"
	"net/url"

	"github.com/google/uuid"

	"github.com/tally-ai/taggo/pkg/query"
	"github.com/tally-ai/taggo/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "annotations", "a").
	Project("id", "ID").
	Project("status", "Status").
	Project("assigned_to", "AssignedTo").
	Project("labelled_by", "LabelledBy").
	Project("reviewed_by", "ReviewedBy").
	Project("labelled_at", "LabelledAt").
	Project("reviewed_at", "ReviewedAt").
	Project("inserted_time", "InsertedTime").
	Project("completed_time", "CompletedTime").
	Project("history", "History").
	Project("doc_key", "DocKey").
	Project("pre_label_key", "PreLabelKey").
	Project("label_key", "LabelKey").
	Project("page_count", "PageCount").
	Join("public", "users", "u", "LEFT JOIN", "a.assigned_to = u.id").
	Project("username", "Assignee")

var defaultSort = query.SortField{
	Field:      "InsertedTime",
	Descending: true,
}

// searchIDColumn matches partial document identifiers against the record id.
// Passed through the projection unmapped so the cast survives.
const searchIDColumn = "a.id::text"

// Filters contains optional filtering criteria for annotation queries.
// Nil fields are ignored. Status and AssignedTo use exact matching;
// Assignee names a user and is resolved to AssignedTo before the query
// runs; Unassigned selects rows with no assignee; SearchID matches the
// record id as text, case-insensitive contains.
type Filters struct {
	Status     *Status    `json:"status,omitempty"`
	AssignedTo *uuid.UUID `json:"assigned_to,omitempty"`
	Assignee   *string    `json:"assignee,omitempty"`
	Unassigned bool       `json:"unassigned,omitempty"`
	SearchID   *string    `json:"search_id,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	b.
		WhereEquals("Status", f.Status).
		WhereEquals("AssignedTo", f.AssignedTo).
		WhereContains(searchIDColumn, f.SearchID)

	if f.Unassigned {
		b.WhereNullable("AssignedTo", nil)
	}

	return b
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Unparseable values are skipped.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		if status, err := ParseStatus(s); err == nil {
			f.Status = &status
		}
	}

	if a := values.Get("assigned_to"); a != "" {
		if id, err := uuid.Parse(a); err == nil {
			f.AssignedTo = &id
		}
	}

	switch assignee := values.Get("assignee"); assignee {
	case "", "all":
	case "unassigned":
		f.Unassigned = true
	default:
		f.Assignee = &assignee
	}

	if values.Get("unassigned") == "true" {
		f.Unassigned = true
	}

	if s := values.Get("search"); s != "" {
		f.SearchID = &s
	}

	return f
}

func scanView(s repository.Scanner) (View, error) {
	var (
		v       View
		history []byte
	)

	err := s.Scan(
		&v.ID,
		&v.Status,
		&v.AssignedTo,
		&v.LabelledBy,
		&v.ReviewedBy,
		&v.LabelledAt,
		&v.ReviewedAt,
		&v.InsertedTime,
		&v.CompletedTime,
		&history,
		&v.DocKey,
		&v.PreLabelKey,
		&v.LabelKey,
		&v.PageCount,
		&v.Assignee,
	)
	if err != nil {
		return v, err
	}

	if len(history) > 0 {
		if err := json.Unmarshal(history, &v.History); err != nil {
			return v, err
		}
	}

	return v, nil
}
