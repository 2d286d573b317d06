package notes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
)

// Bodies are sanitized on save.
var pages = template.Must(template.New("notes").Funcs(template.FuncMap{
	"trusted": func(s string) template.HTML { return template.HTML(s) },
}).Parse(`
{{- define "note" -}}
<article><h1>{{.Title}}</h1>{{if .Author}}<p>by {{.Author}}</p>{{end}}<div>{{trusted .Body}}</div></article>
{{- end -}}
{{- define "list" -}}
<ul>{{range .Notes}}<li><a href="?slug={{.Slug}}">{{.Title}}</a></li>{{else}}<li>No notes yet</li>{{end}}</ul>
{{- end -}}
`))

// view is rendered content. The dispatcher takes it as a fmt.Stringer and
// reads its media type.
type view struct {
	mediaType string
	body      string
}

// render encodes data as JSON or executes the matching page template.
func render(asJSON bool, data any) (view, error) {
	var buf bytes.Buffer
	if asJSON {
		if err := json.NewEncoder(&buf).Encode(data); err != nil {
			return view{}, fmt.Errorf("encode json view: %w", err)
		}
		return view{mediaType: "application/json", body: buf.String()}, nil
	}

	name := "list"
	if _, ok := data.(*Note); ok {
		name = "note"
	}
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		return view{}, fmt.Errorf("execute %s template: %w", name, err)
	}
	return view{mediaType: "text/html; charset=utf-8", body: buf.String()}, nil
}

func (v view) MediaType() string { return v.mediaType }

func (v view) String() string { return v.body }
