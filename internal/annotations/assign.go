package annotations

import (
	"context"

	"github.com/tally-ai/taggo/internal/identity"
)

// Sampler is the random source behind reviewer selection and acceptance
// escalation. Satisfied by *rand.Rand from math/rand/v2; tests inject a
// seeded instance for deterministic runs.
type Sampler interface {
	Float64() float64
	IntN(n int) int
}

// pickReviewer selects the next reviewer for a submitted annotation. A
// previously recorded reviewer gets the work back; otherwise one member of
// the reviewers group is drawn uniformly at random. Returns nil when no
// reviewer is available.
func (s *service) pickReviewer(ctx context.Context, a *Annotation) (*identity.User, error) {
	if a.ReviewedBy != nil {
		prior, err := s.idp.ResolveID(ctx, *a.ReviewedBy)
		if err != nil {
			return nil, err
		}
		if prior != nil {
			return prior, nil
		}
	}

	members, err := s.idp.MembersOfGroup(ctx, s.cfg.ReviewersGroup)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}

	pick := members[s.sampler.IntN(len(members))]
	return &pick, nil
}

// escalate decides whether an accepted annotation gets routed to a random
// superuser for spot-check. Returns nil when the draw misses or no
// superusers exist.
func (s *service) escalate(ctx context.Context) (*identity.User, error) {
	if s.sampler.Float64() >= s.cfg.EscalationProbability {
		return nil, nil
	}

	supers, err := s.idp.Superusers(ctx)
	if err != nil {
		return nil, err
	}
	if len(supers) == 0 {
		return nil, nil
	}

	pick := supers[s.sampler.IntN(len(supers))]
	return &pick, nil
}

// smartAssignCount computes how many of the eligible records a percentage
// covers, rounding down.
func smartAssignCount(eligible, percentage int) int {
	return eligible * percentage / 100
}
