package pagination_test

import (
	"net/url"
	"testing"

	"github.com/tally-ai/taggo/pkg/pagination"
)

func defaultConfig() pagination.Config {
	return pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name         string
		req          pagination.PageRequest
		wantPage     int
		wantPageSize int
	}{
		{"zero values", pagination.PageRequest{}, 1, 20},
		{"negative page", pagination.PageRequest{Page: -3, PageSize: 10}, 1, 10},
		{"oversized page size", pagination.PageRequest{Page: 2, PageSize: 500}, 2, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Normalize(defaultConfig())
			if tt.req.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", tt.req.Page, tt.wantPage)
			}
			if tt.req.PageSize != tt.wantPageSize {
				t.Errorf("PageSize = %d, want %d", tt.req.PageSize, tt.wantPageSize)
			}
		})
	}
}

func TestClampToTotal(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		pageSize int
		total    int
		want     int
	}{
		{"beyond range clamps to last", 9999, 10, 25, 3},
		{"exact last page", 3, 10, 25, 3},
		{"within range untouched", 2, 10, 25, 2},
		{"empty result clamps to 1", 5, 10, 0, 1},
		{"full final page", 4, 10, 30, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := pagination.PageRequest{Page: tt.page, PageSize: tt.pageSize}
			req.ClampToTotal(tt.total)
			if req.Page != tt.want {
				t.Errorf("Page = %d, want %d", req.Page, tt.want)
			}
		})
	}
}

func TestPageRequestFromQueryNonNumeric(t *testing.T) {
	values := url.Values{}
	values.Set("page", "banana")
	values.Set("page_size", "?")

	req := pagination.PageRequestFromQuery(values, defaultConfig())

	if req.Page != 1 {
		t.Errorf("Page = %d, want 1 for non-numeric input", req.Page)
	}
	if req.PageSize != 20 {
		t.Errorf("PageSize = %d, want default", req.PageSize)
	}
}

func TestNewPageResult(t *testing.T) {
	result := pagination.NewPageResult([]int{1, 2, 3}, 25, 1, 10)

	if result.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", result.TotalPages)
	}

	empty := pagination.NewPageResult[int](nil, 0, 1, 10)
	if empty.Data == nil {
		t.Error("Data should be an empty slice, not nil")
	}
	if empty.TotalPages != 1 {
		t.Errorf("TotalPages = %d, want 1", empty.TotalPages)
	}
}
