package annotations

import (
	"testing"
	"time"
)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func TestAuditStampFormat(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)

	log := newAuditLog(fixedClock(now), ist)

	got := log.uploaded("root")
	want := "16:00:00 (05-Mar-24): uploaded by root"
	if got != want {
		t.Errorf("uploaded = %q, want %q", got, want)
	}
}

func TestAuditEventTexts(t *testing.T) {
	log := newAuditLog(fixedClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)), time.UTC)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"uploaded", log.uploaded("alice"), "uploaded by alice"},
		{"saved", log.saved(StatusInLabelling, "alice"), "in-labelling by alice"},
		{"labelled", log.labelled("alice"), "labelled by alice"},
		{"assigned", log.assigned("bob"), "assigned to bob"},
		{"assigned by", log.assignedBy("bob", "root"), "assigned to bob by root"},
		{"smart assigned", log.smartAssigned("bob", "root"), "assigned to bob by root (smart assign)"},
		{"unassigned", log.unassigned("root"), "unassigned by root"},
		{"accepted", log.accepted("carol"), "accepted by carol"},
		{"rejected", log.rejected("carol", "missing fields"), "rejected by carol because missing fields"},
	}

	prefix := "00:00:00 (01-Jan-24): "
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != prefix+tt.want {
				t.Errorf("event = %q, want %q", tt.got, prefix+tt.want)
			}
		})
	}
}

func TestSmartAssignCount(t *testing.T) {
	tests := []struct {
		eligible   int
		percentage int
		want       int
	}{
		{10, 50, 5},
		{10, 100, 10},
		{10, 0, 0},
		{3, 50, 1},
		{7, 33, 2},
		{0, 100, 0},
	}

	for _, tt := range tests {
		if got := smartAssignCount(tt.eligible, tt.percentage); got != tt.want {
			t.Errorf("smartAssignCount(%d, %d) = %d, want %d",
				tt.eligible, tt.percentage, got, tt.want)
		}
	}
}

func TestParseStage(t *testing.T) {
	for _, valid := range []string{"pre-labelled", "in-labelling", "in-review", "accepted", "completed"} {
		if _, err := ParseStage(valid); err != nil {
			t.Errorf("ParseStage(%q) failed: %v", valid, err)
		}
	}

	for _, invalid := range []string{"uploaded", "rejected", "labelled", ""} {
		if _, err := ParseStage(invalid); err == nil {
			t.Errorf("ParseStage(%q) should fail", invalid)
		}
	}
}
