// Package demo contains the apps served by the live server and rendered by
// the CLI. Each app is an HTML template with rq bindings and the component
// definitions that bring it to life.
package demo

import (
	"embed"
	"sort"

	"github.com/vango-dev/requery/pkg/dom"
	"github.com/vango-dev/requery/pkg/rq"
)

//go:embed templates/*.html
var templates embed.FS

// App is a demo page.
type App struct {
	name   string
	title  string
	file   string
	define func(r *rq.Registry)
}

// Name returns the app name used in configuration and on the command line.
func (a *App) Name() string { return a.name }

// Title returns a human readable title.
func (a *App) Title() string { return a.title }

// Markup returns the app template.
func (a *App) Markup() string {
	data, err := templates.ReadFile("templates/" + a.file)
	if err != nil {
		// The templates are embedded; a missing file is a build mistake.
		panic(err)
	}
	return string(data)
}

// Document parses a fresh copy of the template.
func (a *App) Document() (*dom.Document, error) {
	return dom.ParseString(a.Markup())
}

// Mount defines the app components on r and mounts every host in doc.
func (a *App) Mount(r *rq.Registry, doc *dom.Document) error {
	a.define(r)
	_, err := r.MountAll(doc.Root())
	return err
}

var apps = map[string]*App{
	"counter": {name: "counter", title: "Counter", file: "counter.html", define: defineCounter},
	"todos":   {name: "todos", title: "Todos", file: "todos.html", define: defineTodos},
}

// Lookup returns the app with the given name.
func Lookup(name string) (*App, bool) {
	a, ok := apps[name]
	return a, ok
}

// Names returns the app names, sorted.
func Names() []string {
	names := make([]string, 0, len(apps))
	for name := range apps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
