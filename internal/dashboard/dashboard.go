// Package dashboard produces per-user activity reports: which documents a
// user labelled and reviewed over a date range, flattened with display
// names for rendering.
package dashboard

import (
	"time"

	"github.com/google/uuid"

	"github.com/tally-ai/taggo/pkg/pagination"
)

// Row is one report line: the annotation's workflow state with the
// assignee, labeller, and reviewer display names resolved at read time.
// Deleted users resolve to none.
type Row struct {
	ID         uuid.UUID  `json:"id"`
	Status     string     `json:"status"`
	Assignee   *string    `json:"assignee,omitempty"`
	Labeller   *string    `json:"labeller,omitempty"`
	Reviewer   *string    `json:"reviewer,omitempty"`
	LabelledAt *time.Time `json:"labelled_at,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
	History    []string   `json:"history"`
}

// Activity is a user's report: labelled and reviewed work paginated
// independently, each newest first by its own timestamp.
type Activity struct {
	Labelled *pagination.PageResult[Row] `json:"labelled"`
	Reviewed *pagination.PageResult[Row] `json:"reviewed"`
}

// Range is the report window, inclusive on both ends. Nil bounds are unbounded.
type Range struct {
	From *time.Time
	To   *time.Time
}
