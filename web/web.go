// Package web holds the HTML templates and static assets compiled into the
// binary.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"time"
	"yatube/internal/utils"

	"github.com/gin-contrib/multitemplate"
)

//go:embed templates static
var files embed.FS

// Views are the page templates, by the name handlers render them with.
var Views = []string{
	"posts/index.html",
	"posts/group.html",
	"posts/groups.html",
	"posts/users.html",
	"posts/follow.html",
	"posts/profile.html",
	"posts/post.html",
	"posts/new_post.html",
	"posts/search.html",
	"auth/signup.html",
	"auth/login.html",
	"auth/logged_out.html",
	"about/author.html",
	"about/tech.html",
	"admin/group_form.html",
	"misc/403.html",
	"misc/404.html",
	"misc/500.html",
}

var funcMap = template.FuncMap{
	"dict": func(values ...any) (map[string]any, error) {
		if len(values)%2 != 0 {
			return nil, fmt.Errorf("invalid dict call")
		}
		dict := make(map[string]any, len(values)/2)
		for i := 0; i < len(values); i += 2 {
			key, ok := values[i].(string)
			if !ok {
				return nil, fmt.Errorf("dict keys must be strings")
			}
			dict[key] = values[i+1]
		}
		return dict, nil
	},
	"add": func(a, b int) int {
		return a + b
	},
	"linebreaks": utils.RenderText,
	"date": func(t time.Time) string {
		return t.Format("2 January 2006")
	},
	"datetime": func(t time.Time) string {
		return t.Format("2 January 2006 15:04")
	},
	"media": func(rel string) string {
		return path.Join("/media", rel)
	},
}

// LoadTemplates builds one template set per view: the base layout, every
// include and the view itself.
func LoadTemplates() (multitemplate.Renderer, error) {
	r := multitemplate.NewRenderer()

	includes, err := fs.Glob(files, "templates/includes/*.html")
	if err != nil {
		return nil, err
	}

	for _, view := range Views {
		patterns := append([]string{"templates/layouts/base.html"}, includes...)
		patterns = append(patterns, "templates/"+view)

		tmpl, err := template.New("base.html").Funcs(funcMap).ParseFS(files, patterns...)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", view, err)
		}
		r.Add(view, tmpl)
	}
	return r, nil
}

// Static serves the embedded static directory.
func Static() http.FileSystem {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
