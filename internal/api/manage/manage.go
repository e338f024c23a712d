// Package manage serves the HTML status page used by operators to inspect the
// search indices and trigger a full reindex.
package manage

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/stacklok/content-search-sync/internal/api/common"
	"github.com/stacklok/content-search-sync/internal/mapping"
	"github.com/stacklok/content-search-sync/internal/sync"
)

//go:embed templates/*.html
var templatesFS embed.FS

const unavailableLine = "Search engine is not available, nothing was reindexed."

// Page renders the management page
type Page struct {
	svc       sync.Service
	reindexer *common.Reindexer
	templates *template.Template
}

type pageData struct {
	Available    bool
	IndexesExist bool
	Mappings     []indexMapping
	Debug        []string
}

type indexMapping struct {
	Index  string
	Fields []fieldMapping
}

type fieldMapping struct {
	Name    string
	Mapping string
}

// NewPage parses the embedded templates
func NewPage(svc sync.Service, reindexer *common.Reindexer) (*Page, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Page{svc: svc, reindexer: reindexer, templates: tmpl}, nil
}

// Router serves the page at its root for GET and POST
func (p *Page) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/", p.show)
	r.Post("/", p.reindex)
	return r
}

func (p *Page) show(w http.ResponseWriter, r *http.Request) {
	p.render(w, p.status(r))
}

// reindex rebuilds every index, then renders the refreshed mappings and the
// lines of the run. The page is rendered with 200 whatever the run reported.
func (p *Page) reindex(w http.ResponseWriter, r *http.Request) {
	data := p.status(r)

	if !data.Available {
		data.Debug = []string{unavailableLine}
		p.render(w, data)
		return
	}

	lines, err := p.reindexer.Run(r.Context())
	if err != nil {
		slog.Warn("Reindex request ended before the run finished", "error", err)
		lines = []string{"Reindex is still running, reload the page to see its log."}
	}

	data.Debug = lines
	data.IndexesExist = p.svc.IndexesExist(r.Context())
	data.Mappings = flatten(p.svc.Mappings(r.Context()))
	p.render(w, data)
}

func (p *Page) status(r *http.Request) pageData {
	ctx := r.Context()
	data := pageData{Available: p.svc.IsAvailable(ctx)}
	if data.Available {
		data.IndexesExist = p.svc.IndexesExist(ctx)
		if data.IndexesExist {
			data.Mappings = flatten(p.svc.Mappings(ctx))
		}
	}
	return data
}

func (p *Page) render(w http.ResponseWriter, data pageData) {
	var buf bytes.Buffer
	if err := p.templates.ExecuteTemplate(&buf, "manage.html", data); err != nil {
		slog.Error("Failed to render management page", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// flatten orders indices and fields by name and renders each mapping entry as JSON
func flatten(schemas map[string]mapping.Schema) []indexMapping {
	out := make([]indexMapping, 0, len(schemas))
	for index, schema := range schemas {
		props := schema.Properties()
		im := indexMapping{Index: index, Fields: make([]fieldMapping, 0, len(props))}
		for name, entry := range props {
			raw, err := json.Marshal(entry)
			if err != nil {
				raw = []byte("{}")
			}
			im.Fields = append(im.Fields, fieldMapping{Name: name, Mapping: string(raw)})
		}
		sort.Slice(im.Fields, func(i, j int) bool { return im.Fields[i].Name < im.Fields[j].Name })
		out = append(out, im)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
