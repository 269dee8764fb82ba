// Package artifact renders the byte-exact files derived from a resolved site
// configuration: robots.txt, theme style variables and the sitemap. Every
// function here is pure.
package artifact

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/nisimpson/tenantmap"
	"github.com/nisimpson/tenantmap/siteconfig"
)

const (
	robotsDisallowAll = "User-agent: *\nDisallow: /"
	robotsAllowAll    = "User-agent: *\nAllow: /"
)

// Robots returns the robots.txt body for cfg. A nil cfg stands for a tenant
// that failed to resolve and, like every non-public site, disallows all
// crawling with no sitemap reference.
func Robots(cfg *siteconfig.ResolvedSiteConfig) string {
	if !cfg.Indexable() {
		return robotsDisallowAll
	}
	if cfg.Domain() == "" {
		return robotsAllowAll
	}
	return robotsAllowAll + "\n\nSitemap: " + SitemapURL(cfg.Domain())
}

// SitemapURL is the absolute sitemap location for domain.
func SitemapURL(domain string) string {
	return "https://" + domain + "/sitemap.xml"
}

// ThemeVariables returns one `--<name>: <value>;` declaration per theme
// variable, in theme order, separated by single spaces. Values pass through
// verbatim. An empty theme yields "".
func ThemeVariables(theme tenantmap.Theme) string {
	decls := make([]string, 0, len(theme))
	for _, v := range theme {
		decls = append(decls, fmt.Sprintf("--%s: %s;", v.Name, v.Value))
	}
	return strings.Join(decls, " ")
}

// ThemeStylesheet wraps the theme variables of cfg in a :root rule. It returns
// "" when there is nothing to declare.
func ThemeStylesheet(cfg *siteconfig.ResolvedSiteConfig) string {
	if cfg == nil {
		return ""
	}
	vars := ThemeVariables(cfg.Theme())
	if vars == "" {
		return ""
	}
	return ":root { " + vars + " }\n"
}

type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc string `xml:"loc"`
}

// Sitemap renders an XML sitemap for a public site: the home page first, then
// each path in order with duplicates removed. Non-public sites and sites
// without a domain get nil.
func Sitemap(cfg *siteconfig.ResolvedSiteConfig, paths []string) ([]byte, error) {
	if !cfg.Indexable() || cfg.Domain() == "" {
		return nil, nil
	}

	base := "https://" + cfg.Domain()
	set := urlset{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	seen := map[string]bool{}

	for _, p := range append([]string{"/"}, paths...) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		set.URLs = append(set.URLs, sitemapURL{Loc: base + p})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, fmt.Errorf("failed to encode sitemap: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// SitemapPaths collects the string "path" field of each context entry.
func SitemapPaths(entries []tenantmap.ContextEntry) []string {
	var paths []string
	for _, e := range entries {
		if p, ok := e.Data["path"].(string); ok && p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}
