package main

import (
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestLastPage(t *testing.T) {
	tests := []struct {
		total, ipp, want int
	}{
		{0, 10, 1},
		{3, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{13, 5, 3},
		{5, 0, 1},
	}
	for _, tt := range tests {
		if got := lastPage(tt.total, tt.ipp); got != tt.want {
			t.Errorf("lastPage(%d, %d) = %d, want %d", tt.total, tt.ipp, got, tt.want)
		}
	}
}

func TestPagination(t *testing.T) {
	tests := []struct {
		name string
		pc   PaginationConfig
		want Pages
	}{
		{
			name: "single page has only first and last",
			pc: PaginationConfig{
				ipp:   10,
				page:  1,
				total: 3,
				url:   "/topics",
				param: "page",
			},
			want: Pages{
				Page{"first", 1, "/topics?page=1"},
				Page{"last", 1, "/topics?page=1"},
			},
		},
		{
			name: "middle page links both ways",
			pc: PaginationConfig{
				ipp:   10,
				page:  2,
				total: 25,
				url:   "/topics?limit=10",
				param: "page",
			},
			want: Pages{
				Page{"first", 1, "/topics?limit=10&page=1"},
				Page{"prev", 1, "/topics?limit=10&page=1"},
				Page{"next", 3, "/topics?limit=10&page=3"},
				Page{"last", 3, "/topics?limit=10&page=3"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Pagination(tt.pc); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Pagination() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPagesHeader(t *testing.T) {
	p := Pages{Page{"first", 1, "/a?page=1"}, Page{"next", 2, "/a?page=2"}}
	want := `</a?page=1>; rel="first", </a?page=2>; rel="next"`
	if got := p.Header(); got != want {
		t.Errorf("Header() = %q, want %q", got, want)
	}
}

func TestPageParams(t *testing.T) {
	tests := []struct {
		query             string
		wantPage, wantLim int
	}{
		{"", 1, 10},
		{"?page=3&limit=5", 3, 5},
		{"?page=-1&limit=0", 1, 10},
		{"?page=x&limit=500", 1, 100},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/debate/tree/1"+tt.query, nil)
		page, limit := pageParams(r, 10, 100)
		if page != tt.wantPage || limit != tt.wantLim {
			t.Errorf("pageParams(%q) = (%d, %d), want (%d, %d)", tt.query, page, limit, tt.wantPage, tt.wantLim)
		}
	}
}
