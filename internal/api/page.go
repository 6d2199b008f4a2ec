// SPDX-License-Identifier: MIT

package api

import (
	"html/template"
	"net/http"

	"github.com/sparkledex/sparkledex/internal/log"
)

// pageData feeds the upload page template.
type pageData struct {
	Version   string
	HasResult bool
	Result    string // FormatResult output, shown in the <pre> block
}

var pageTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>sparkledex</title>
<style>
  body { font-family: system-ui, sans-serif; max-width: 46rem; margin: 2rem auto; padding: 0 1rem; color: #222; }
  h1 { font-size: 1.4rem; }
  form { display: grid; gap: .75rem; margin-bottom: 1.5rem; }
  textarea { width: 100%; min-height: 10rem; font-family: monospace; }
  button { justify-self: start; padding: .4rem 1.2rem; }
  pre { background: #f4f4f4; padding: 1rem; overflow-x: auto; }
  footer { color: #888; font-size: .8rem; }
</style>
</head>
<body>
<h1>&#10024; sparkledex</h1>
<p>Upload a chat log (or paste it below) to list every creature name it mentions, with duplicate counts.</p>
<form method="post" action="/" enctype="multipart/form-data">
  <input type="file" name="file" accept=".txt,text/plain">
  <textarea name="text" placeholder="...or paste the transcript here"></textarea>
  <button type="submit">Extract names</button>
</form>
{{if .HasResult}}<pre>{{.Result}}</pre>{{end}}
<footer>sparkledex {{.Version}}</footer>
</body>
</html>
`))

// renderPage writes the upload page, optionally with a filled result block.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().Err(err).Str(log.FieldEvent, "page.render_failed").Msg("failed to render upload page")
	}
}
