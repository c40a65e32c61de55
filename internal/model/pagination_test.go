package model

import "testing"

func TestNewPagination(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		page      int
		limit     int
		total     int
		wantPages int
		wantNext  bool
		wantPrev  bool
	}{
		{"empty", 1, 10, 0, 0, false, false},
		{"single partial page", 1, 10, 3, 1, false, false},
		{"exact boundary", 1, 10, 10, 1, false, false},
		{"one over boundary", 1, 10, 11, 2, true, false},
		{"middle page", 2, 10, 35, 4, true, true},
		{"last page", 4, 10, 35, 4, false, true},
		{"page past end", 9, 10, 35, 4, false, true},
		{"limit one", 3, 1, 5, 5, true, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := NewPagination(tt.page, tt.limit, tt.total)

			if p.CurrentPage != tt.page {
				t.Errorf("CurrentPage = %d, want %d", p.CurrentPage, tt.page)
			}
			if p.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", p.TotalPages, tt.wantPages)
			}
			if p.TotalPosts != tt.total {
				t.Errorf("TotalPosts = %d, want %d", p.TotalPosts, tt.total)
			}
			if p.HasNextPage != tt.wantNext {
				t.Errorf("HasNextPage = %v, want %v", p.HasNextPage, tt.wantNext)
			}
			if p.HasPreviousPage != tt.wantPrev {
				t.Errorf("HasPreviousPage = %v, want %v", p.HasPreviousPage, tt.wantPrev)
			}
		})
	}
}
