package annotations

import (
	"fmt"
	"time"
)

// Clock supplies the current time for audit stamps. Injected so tests can
// pin history entries to known instants.
type Clock func() time.Time

// stampLayout renders audit timestamps as "15:04:05 (02-Jan-06)". The
// timezone is fixed process-wide so the trail reads consistently no
// matter where a request originated.
const stampLayout = "15:04:05 (02-Jan-06)"

// auditLog formats history entries in a single configured timezone.
type auditLog struct {
	clock Clock
	loc   *time.Location
}

func newAuditLog(clock Clock, loc *time.Location) auditLog {
	return auditLog{clock: clock, loc: loc}
}

func (l auditLog) now() time.Time {
	return l.clock()
}

// event renders one history entry: "<stamp>: <text>".
func (l auditLog) event(text string) string {
	return l.clock().In(l.loc).Format(stampLayout) + ": " + text
}

func (l auditLog) uploaded(actor string) string {
	return l.event("uploaded by " + actor)
}

func (l auditLog) saved(stage Stage, actor string) string {
	return l.event(string(stage) + " by " + actor)
}

func (l auditLog) labelled(actor string) string {
	return l.event("labelled by " + actor)
}

func (l auditLog) assigned(assignee string) string {
	return l.event("assigned to " + assignee)
}

func (l auditLog) assignedBy(assignee, actor string) string {
	return l.event(fmt.Sprintf("assigned to %s by %s", assignee, actor))
}

func (l auditLog) smartAssigned(assignee, actor string) string {
	return l.event(fmt.Sprintf("assigned to %s by %s (smart assign)", assignee, actor))
}

func (l auditLog) unassigned(actor string) string {
	return l.event("unassigned by " + actor)
}

func (l auditLog) accepted(actor string) string {
	return l.event("accepted by " + actor)
}

func (l auditLog) rejected(actor, reason string) string {
	return l.event(fmt.Sprintf("rejected by %s because %s", actor, reason))
}
