package handlers

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"
	"yatube/internal/db"
	"yatube/internal/models"

	"github.com/gin-gonic/gin"
)

// sitemapLimit caps the number of posts listed in sitemap.xml.
const sitemapLimit = 500

type SEOHandler struct {
	siteURL string
}

func NewSEOHandler(siteURL string) *SEOHandler {
	return &SEOHandler{siteURL: strings.TrimRight(siteURL, "/")}
}

// RobotsTxt keeps crawlers away from account and write pages.
func (h *SEOHandler) RobotsTxt(c *gin.Context) {
	content := fmt.Sprintf(`User-agent: *
Allow: /

Disallow: /admin/
Disallow: /auth/
Disallow: /new/
Disallow: /follow/
Disallow: /followees/
Disallow: /followers/
Disallow: /search/

Sitemap: %s/sitemap.xml
`, h.siteURL)

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusOK, content)
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// SitemapXML lists the index, groups, author profiles and recent posts.
func (h *SEOHandler) SitemapXML(c *gin.Context) {
	conn := db.DB.WithContext(c.Request.Context())
	now := time.Now().Format("2006-01-02")

	set := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	add := func(path, lastmod, freq, priority string) {
		set.URLs = append(set.URLs, sitemapURL{Loc: h.siteURL + path, LastMod: lastmod, ChangeFreq: freq, Priority: priority})
	}

	add("/", now, "hourly", "1.0")
	add("/groups/", now, "daily", "0.8")
	add("/users/", now, "daily", "0.7")

	var groups []models.Group
	if err := conn.Order("id").Find(&groups).Error; err != nil {
		ServerError(c, err)
		return
	}
	for _, g := range groups {
		add("/group/"+g.Slug+"/", now, "daily", "0.7")
	}

	var users []models.User
	if err := conn.Select("id", "username").Order("id").Find(&users).Error; err != nil {
		ServerError(c, err)
		return
	}
	for _, u := range users {
		add("/"+u.Username+"/", now, "daily", "0.6")
	}

	var posts []models.Post
	if err := conn.Preload("Author").Order(models.PostOrder).Limit(sitemapLimit).Find(&posts).Error; err != nil {
		ServerError(c, err)
		return
	}
	for _, p := range posts {
		priority := "0.5"
		if time.Since(p.PubDate) < 7*24*time.Hour {
			priority = "0.7"
		}
		add(fmt.Sprintf("/%s/%d/", p.Author.Username, p.ID), p.UpdatedAt.Format("2006-01-02"), "weekly", priority)
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		ServerError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", append([]byte(xml.Header), body...))
}
