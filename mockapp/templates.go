package mockapp

import (
	"embed"

	"github.com/flosch/pongo2/v6"
)

//go:embed templates/*.html
var templateFiles embed.FS

type pageTemplates struct {
	login    *pongo2.Template
	register *pongo2.Template
	index    *pongo2.Template
}

func loadTemplates() pageTemplates {
	return pageTemplates{
		login:    mustLoadTemplate("templates/login.html"),
		register: mustLoadTemplate("templates/register.html"),
		index:    mustLoadTemplate("templates/index.html"),
	}
}

func mustLoadTemplate(name string) *pongo2.Template {
	data, err := templateFiles.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return pongo2.Must(pongo2.FromString(string(data)))
}

type registerField struct {
	Name  string
	Label string
	Type  string
}
