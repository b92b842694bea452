package annotations

import (
	"fmt"

	"github.com/tally-ai/taggo/pkg/storage"
)

// Stage identifies a pipeline stage artifact for save and payload
// operations. Stages share the Status namespace; every status past
// uploaded is a stage.
type Stage = Status

// artifact identifies which tracked blob key a stage save updates.
type artifact int

const (
	artifactNone artifact = iota
	artifactPreLabel
	artifactLabel
)

// stageSpec is the static per-stage dispatch table entry: the container
// backing the stage's payload and the record key field it maintains.
type stageSpec struct {
	container func(storage.Containers) string
	artifact  artifact
}

// stageTable is the canonical stage→container mapping. Working copies
// written during labelling and review share the labelling container;
// accepted and completed payloads land in the final labels container.
var stageTable = map[Stage]stageSpec{
	StatusPreLabelled: {container: func(c storage.Containers) string { return c.PreLabels }, artifact: artifactPreLabel},
	StatusInLabelling: {container: func(c storage.Containers) string { return c.Labelling }},
	StatusInReview:    {container: func(c storage.Containers) string { return c.Labelling }},
	StatusAccepted:    {container: func(c storage.Containers) string { return c.Labels }, artifact: artifactLabel},
	StatusCompleted:   {container: func(c storage.Containers) string { return c.Labels }, artifact: artifactLabel},
}

// ParseStage validates a stage string against the recognized save set.
func ParseStage(s string) (Stage, error) {
	status, err := ParseStatus(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidStage, s)
	}
	if _, ok := stageTable[status]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStage, s)
	}
	return status, nil
}

// payloadKey is the blob key for a stage payload.
func payloadKey(id fmt.Stringer) string {
	return id.String() + ".json"
}
