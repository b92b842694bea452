package annotations_test

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/tally-ai/taggo/internal/annotations"
)

// With a fixed seed, escalation over many accepts should land near the
// configured 20% probability.
func TestAcceptEscalationFrequency(t *testing.T) {
	f := newFixture(t, rand.New(rand.NewPCG(7, 11)))

	const runs = 1000
	escalated := 0

	for range runs {
		id := f.seed(t, func(a *annotations.Annotation) {
			a.Status = annotations.StatusInReview
			a.AssignedTo = &f.reviewer.User.ID
		})

		a, err := f.sys.Accept(context.Background(), f.reviewer, id, []byte("{}"))
		if err != nil {
			t.Fatalf("accept failed: %v", err)
		}

		if a.AssignedTo != nil {
			escalated++
		}
	}

	// Binomial(1000, 0.2) stays comfortably within these bounds.
	if escalated < 140 || escalated > 260 {
		t.Errorf("escalated %d of %d accepts, want roughly 200", escalated, runs)
	}
}
