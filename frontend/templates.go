package frontend

import "html/template"

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Weather forecast</title>
</head>
<body>
<h1>Weather forecast</h1>
{{- if .Unavailable }}
<div id="forecast-unavailable" class="error" data-kind="{{ .Kind }}">
<p>Forecast unavailable. Please try again later.</p>
{{- if .Detail }}
<pre id="error-detail">{{ .Detail }}</pre>
{{- end }}
</div>
{{- else }}
<table id="forecast">
<thead>
<tr><th>Date</th><th>Temp. (C)</th><th>Temp. (F)</th><th>Summary</th></tr>
</thead>
<tbody>
{{- range .Entries }}
<tr><td>{{ .Date }}</td><td>{{ .TemperatureC }}</td><td>{{ .TemperatureF }}</td><td>{{ .Summary }}</td></tr>
{{- end }}
</tbody>
</table>
{{- end }}
{{- if .Service }}
<footer><small>source: {{ .Service }} · request {{ .RequestID }}</small></footer>
{{- end }}
</body>
</html>
`))

type entryView struct {
	Date         string
	TemperatureC int
	TemperatureF int
	Summary      string
}

type pageData struct {
	Entries     []entryView
	Unavailable bool
	Kind        string
	Detail      string
	Service     string
	RequestID   string
}
