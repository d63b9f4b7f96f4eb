package main

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

type Page struct {
	Rel string
	Num int
	URL string
}

type Pages []Page

type PaginationConfig struct {
	ipp   int
	page  int
	total int
	url   string
	param string
}

// lastPage never reports less than one page, even for an empty listing.
func lastPage(total, ipp int) int {
	if ipp < 1 || total <= ipp {
		return 1
	}
	return (total + ipp - 1) / ipp
}

// Pagination returns the first, prev, next and last page links relative to
// the current page. prev and next are left out at the edges.
func Pagination(pc PaginationConfig) Pages {
	last := lastPage(pc.total, pc.ipp)
	// Normalize first page
	if pc.page < 1 {
		pc.page = 1
	}
	pUrl, err := url.Parse(pc.url)
	if err != nil {
		return Pages{}
	}
	val := pUrl.Query()
	link := func(rel string, num int) Page {
		val.Set(pc.param, strconv.Itoa(num))
		pUrl.RawQuery = val.Encode()
		return Page{rel, num, pUrl.String()}
	}

	pages := Pages{link("first", 1)}
	if pc.page > 1 && pc.page <= last+1 {
		pages = append(pages, link("prev", pc.page-1))
	}
	if pc.page < last {
		pages = append(pages, link("next", pc.page+1))
	}
	return append(pages, link("last", last))
}

// Header formats the pages as an RFC 8288 Link header value.
func (p Pages) Header() string {
	links := make([]string, len(p))
	for i, page := range p {
		links[i] = "<" + page.URL + `>; rel="` + page.Rel + `"`
	}
	return strings.Join(links, ", ")
}

// pageParams reads page and limit from the query string. Invalid or missing
// values fall back to the first page and the default size.
func pageParams(r *http.Request, defaultSize, maxSize int) (page, limit int) {
	q := r.URL.Query()
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err = strconv.Atoi(q.Get("limit"))
	if err != nil || limit < 1 {
		limit = defaultSize
	}
	if limit > maxSize {
		limit = maxSize
	}
	return page, limit
}
