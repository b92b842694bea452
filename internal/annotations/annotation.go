// Package annotations implements the document-annotation workflow: the
// per-document state machine, the assignment policy that routes work to
// users, and the append-only audit history. Records live in the record
// store, stage artifacts in the blob store; pre-labelling work dispatches
// to an external worker through the queue sink.
package annotations

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the workflow state of an annotation.
type Status string

// Pipeline states. Documents move forward through them in order; reject
// loops a document from review back to labelling (or back to review with
// a new reviewer when only a reviewer is on record).
const (
	StatusUploaded    Status = "uploaded"
	StatusPreLabelled Status = "pre-labelled"
	StatusInLabelling Status = "in-labelling"
	StatusInReview    Status = "in-review"
	StatusAccepted    Status = "accepted"
	StatusCompleted   Status = "completed"
)

var statuses = []Status{
	StatusUploaded,
	StatusPreLabelled,
	StatusInLabelling,
	StatusInReview,
	StatusAccepted,
	StatusCompleted,
}

// ParseStatus validates a status string.
func ParseStatus(s string) (Status, error) {
	for _, status := range statuses {
		if string(status) == s {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Statuses returns all workflow states in pipeline order.
func Statuses() []Status {
	return statuses
}

// InProgress reports whether the status counts toward in-progress work.
func (s Status) InProgress() bool {
	return s != StatusCompleted
}

// Annotation is a document under pipeline-managed labelling and review.
// User references are weak: the referenced user may have been deleted, in
// which case display-name resolution yields none. History is append-only;
// insertion order is the audit trail.
type Annotation struct {
	ID            uuid.UUID  `json:"id"`
	Status        Status     `json:"status"`
	AssignedTo    *uuid.UUID `json:"assigned_to,omitempty"`
	LabelledBy    *uuid.UUID `json:"labelled_by,omitempty"`
	ReviewedBy    *uuid.UUID `json:"reviewed_by,omitempty"`
	LabelledAt    *time.Time `json:"labelled_at,omitempty"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	InsertedTime  time.Time  `json:"inserted_time"`
	CompletedTime *time.Time `json:"completed_time,omitempty"`
	History       []string   `json:"history"`
	DocKey        string     `json:"doc_key"`
	PreLabelKey   *string    `json:"pre_label_key,omitempty"`
	LabelKey      *string    `json:"label_key,omitempty"`
	PageCount     *int       `json:"page_count,omitempty"`
}

// View is an annotation enriched for read responses: the assignee's
// username is resolved at read time, with a deleted user resolving to none.
type View struct {
	Annotation
	Assignee *string `json:"assignee,omitempty"`
}

// UploadCommand carries the data needed to register a new document.
type UploadCommand struct {
	Data        []byte
	Filename    string
	ContentType string
	PageCount   *int
}

// StatusCount reports total and unassigned record counts for one status.
type StatusCount struct {
	Status     Status `json:"status"`
	Total      int    `json:"total"`
	Unassigned int    `json:"unassigned"`
}

// CountsView is the workload overview: total record count, per-status
// in-progress counts, and the completed count.
type CountsView struct {
	Total      int            `json:"total"`
	InProgress map[Status]int `json:"in_progress"`
	Completed  int            `json:"completed"`
}

// AssignOverview is the smart-assign readiness view: group rosters and
// "unassigned/total" fractions per status.
type AssignOverview struct {
	Groups map[string][]string `json:"groups"`
	Status map[Status]string   `json:"status"`
}
