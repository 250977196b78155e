package export

import (
	"fmt"
	"html/template"
	"io"
)

var pageTemplate = template.Must(template.New("article").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { max-width: 46rem; margin: 2rem auto; padding: 0 1rem; font-family: Georgia, serif; line-height: 1.6; color: #1e293b; }
img.cover { width: 100%; border-radius: 6px; }
pre { background: #f1f5f9; padding: .75rem; overflow-x: auto; }
</style>
</head>
<body>
<article>
<h1>{{.Title}}</h1>
{{if .Image}}<img class="cover" src="{{.Image}}" alt="{{.Title}}">
{{end}}{{.Body}}
{{if .Sources}}<h2>Sources</h2>
<ul>
{{range .Sources}}<li>{{.}}</li>
{{end}}</ul>
{{end}}</article>
</body>
</html>
`))

// Page is the data behind a standalone article page
type Page struct {
	Title   string
	Lang    string
	Image   string
	Content string
	Sources []string
}

// WriteHTML renders the article markdown into a standalone HTML page
func WriteHTML(w io.Writer, page Page) error {
	body, err := RenderMarkdown(page.Content)
	if err != nil {
		return err
	}
	if page.Lang == "" {
		page.Lang = "fr"
	}
	data := struct {
		Page
		Image template.URL
		Body  template.HTML
	}{
		Page:  page,
		Image: template.URL(page.Image),
		Body:  template.HTML(body),
	}
	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}
