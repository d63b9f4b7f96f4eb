package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/aquilax/debateboard/argument"
	"github.com/gorilla/feeds"
	"github.com/sourcegraph/sitemap"
)

const (
	feedSize    = 20
	sitemapSize = 1000
)

func (d *DebateBoard) baseURL(r *http.Request) string {
	if d.config.Site.BaseURL != "" {
		return strings.TrimRight(d.config.Site.BaseURL, "/")
	}
	return "http://" + r.Host
}

func topicURL(baseURL string, t argument.Topic) string {
	return baseURL + "/topics/" + t.ID + "/" + hfSlug(t.Title)
}

func (d *DebateBoard) feedHandler(w http.ResponseWriter, r *http.Request) error {
	sc := d.config.Site
	baseURL := d.baseURL(r)
	tl, err := d.m.db.GetTopics(r.Context(), argument.StatusApproved, feedSize, 0)
	if err != nil {
		return err
	}
	feed := &feeds.Feed{
		Title:       sc.Title,
		Link:        &feeds.Link{Href: baseURL},
		Description: sc.Description,
		Author:      &feeds.Author{Name: sc.AuthorName, Email: sc.AuthorEmail},
		Created:     time.Now(),
	}
	for _, t := range tl {
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          t.ID,
			Title:       t.Title,
			Link:        &feeds.Link{Href: topicURL(baseURL, t)},
			Description: renderText(t.Description),
			Created:     t.Created,
		})
	}
	w.Header().Set("Content-Type", "application/rss+xml")
	return feed.WriteRss(w)
}

func (d *DebateBoard) sitemapHandler(w http.ResponseWriter, r *http.Request) error {
	baseURL := d.baseURL(r)
	tl, err := d.m.db.GetTopics(r.Context(), argument.StatusApproved, sitemapSize, 0)
	if err != nil {
		return err
	}
	var urlSet sitemap.URLSet
	for i := range tl {
		urlSet.URLs = append(urlSet.URLs, sitemap.URL{
			Loc:        topicURL(baseURL, tl[i]),
			LastMod:    &tl[i].Created,
			ChangeFreq: sitemap.Daily,
			Priority:   0.7,
		})
	}
	xml, err := sitemap.Marshal(&urlSet)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/xml")
	_, err = w.Write(xml)
	return err
}
