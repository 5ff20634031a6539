// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchstat

import (
	"io"

	"github.com/google/safehtml/template"
)

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<h1>{{.Title}}</h1>
{{- range .Tables}}
<h2>{{.Title}}</h2>
<table class="benchstat">
<tr><th>{{.Dim}}{{range .Columns}}<th>{{.}}{{end}}
{{- range .Rows}}
<tr><td>{{.Label}}{{range .Cells}}<td class="num">{{.String}}{{end}}
{{- end}}
{{- with .GeoMean}}
<tr class="geomean"><td>{{.Label}}{{range .Cells}}<td class="num">{{.String}}{{end}}
{{- end}}
</table>
{{- end}}
</body>
</html>
`))

// FormatHTML writes an HTML report of tables titled title to w.
func FormatHTML(w io.Writer, title string, tables []*Table) error {
	return htmlTemplate.Execute(w, struct {
		Title  string
		Tables []*Table
	}{title, tables})
}
