package query_test

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/tally-ai/taggo/pkg/query"
)

func testProjection() *query.ProjectionMap {
	return query.
		NewProjectionMap("public", "annotations", "a").
		Project("id", "ID").
		Project("status", "Status").
		Project("inserted_time", "InsertedTime").
		Join("public", "users", "u", "LEFT JOIN", "a.assigned_to = u.id").
		Project("username", "Assignee")
}

func TestProjectionFrom(t *testing.T) {
	want := "public.annotations a LEFT JOIN public.users u ON a.assigned_to = u.id"
	if got := testProjection().From(); got != want {
		t.Errorf("From() = %q, want %q", got, want)
	}
}

func TestProjectionColumnsQualified(t *testing.T) {
	p := testProjection()

	if got := p.Column("Status"); got != "a.status" {
		t.Errorf("Column(Status) = %q, want a.status", got)
	}
	if got := p.Column("Assignee"); got != "u.username" {
		t.Errorf("Column(Assignee) = %q, want u.username", got)
	}
	// Unmapped names pass through so raw expressions can be used as filters.
	if got := p.Column("a.id::text"); got != "a.id::text" {
		t.Errorf("Column passthrough = %q", got)
	}
}

func TestBuilderWhereEqualsRenumbering(t *testing.T) {
	status := "in-review"
	search := "abc"

	sql, args := query.
		NewBuilder(testProjection()).
		WhereEquals("Status", &status).
		WhereContains("a.id::text", &search).
		Build()

	if !strings.Contains(sql, "a.status = $1") {
		t.Errorf("missing first parameter: %q", sql)
	}
	if !strings.Contains(sql, "a.id::text ILIKE $2") {
		t.Errorf("missing second parameter: %q", sql)
	}
	if !reflect.DeepEqual(args, []any{&status, "%abc%"}) {
		t.Errorf("args = %v", args)
	}
}

func TestBuilderWhereBetween(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		from, to *time.Time
		want     []string
		args     int
	}{
		{"both bounds", &from, &to, []string{"a.inserted_time >= $1", "a.inserted_time <= $2"}, 2},
		{"lower only", &from, nil, []string{"a.inserted_time >= $1"}, 1},
		{"upper only", nil, &to, []string{"a.inserted_time <= $1"}, 1},
		{"unbounded", nil, nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := query.
				NewBuilder(testProjection()).
				WhereBetween("InsertedTime", tt.from, tt.to).
				Build()

			for _, clause := range tt.want {
				if !strings.Contains(sql, clause) {
					t.Errorf("sql %q missing %q", sql, clause)
				}
			}
			if len(args) != tt.args {
				t.Errorf("args = %d, want %d", len(args), tt.args)
			}
			if tt.args == 0 && strings.Contains(sql, "WHERE") {
				t.Errorf("unexpected WHERE clause: %q", sql)
			}
		})
	}
}

func TestBuilderWhereNotNull(t *testing.T) {
	sql, args := query.
		NewBuilder(testProjection()).
		WhereNotNull("InsertedTime").
		Build()

	if !strings.Contains(sql, "a.inserted_time IS NOT NULL") {
		t.Errorf("sql = %q", sql)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want none", args)
	}
}

func TestBuilderWhereCompare(t *testing.T) {
	anchor := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	sql, args := query.
		NewBuilder(testProjection()).
		WhereCompare("InsertedTime", "<", anchor).
		Build()

	if !strings.Contains(sql, "a.inserted_time < $1") {
		t.Errorf("sql = %q", sql)
	}
	if len(args) != 1 {
		t.Errorf("args = %v", args)
	}
}

func TestBuildPageIncludesJoin(t *testing.T) {
	sql, _ := query.
		NewBuilder(testProjection(), query.SortField{Field: "InsertedTime", Descending: true}).
		BuildPage(2, 10)

	for _, fragment := range []string{
		"LEFT JOIN public.users u",
		"ORDER BY a.inserted_time DESC",
		"LIMIT 10 OFFSET 10",
	} {
		if !strings.Contains(sql, fragment) {
			t.Errorf("sql %q missing %q", sql, fragment)
		}
	}
}

func TestBuildCount(t *testing.T) {
	sql, _ := query.NewBuilder(testProjection()).BuildCount()

	if !strings.HasPrefix(sql, "SELECT COUNT(*) FROM public.annotations a") {
		t.Errorf("sql = %q", sql)
	}
}

func TestParseSortFields(t *testing.T) {
	fields := query.ParseSortFields("status,-inserted_time")

	want := []query.SortField{
		{Field: "status"},
		{Field: "inserted_time", Descending: true},
	}
	if !reflect.DeepEqual(fields, want) {
		t.Errorf("fields = %v, want %v", fields, want)
	}

	if query.ParseSortFields("") != nil {
		t.Error("empty input should return nil")
	}
}
