package export

import (
	"fmt"
	"html/template"
	"io"
	"time"
)

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"pct": formatPercent,
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Score Report</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #222; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; margin-bottom: 2em; }
th, td { border: 1px solid #ccc; padding: 0.4em 0.8em; text-align: left; }
th { background: #f0f0f0; }
.num { text-align: right; }
</style>
</head>
<body>
<h1>Score Report</h1>
<p>Generated {{.GeneratedAt.Format "2006-01-02 15:04:05 MST"}} &middot; {{.Batch.Sheets}} sheet(s)</p>

<h2>Batch</h2>
<table>
<tr><th>Mean</th><th>Median</th><th>Std dev</th><th>Highest</th><th>Lowest</th><th>Trend</th></tr>
<tr>
<td class="num">{{pct .Batch.Mean}}%</td>
<td class="num">{{pct .Batch.Median}}%</td>
<td class="num">{{pct .Batch.StdDev}}</td>
<td class="num">{{pct .Batch.Highest}}%</td>
<td class="num">{{pct .Batch.Lowest}}%</td>
<td>{{.Batch.Trend}}</td>
</tr>
</table>

<h2>Distribution</h2>
<table>
<tr><th>Band</th><th>Sheets</th></tr>
{{range .Batch.Distribution}}<tr><td>{{.Label}}</td><td class="num">{{.Count}}</td></tr>
{{end}}</table>

{{if .Batch.Subjects}}<h2>Subject averages</h2>
<table>
<tr><th>Subject</th><th>Average</th></tr>
{{range .Batch.Subjects}}<tr><td>{{.Name}}</td><td class="num">{{pct .Average}}%</td></tr>
{{end}}</table>
{{end}}

<h2>Sheets</h2>
<table>
<tr><th>File</th><th>Correct</th><th>Incorrect</th><th>Not attempted</th><th>Multiple</th><th>Score</th></tr>
{{range .Sheets}}<tr>
<td>{{.Filename}}</td>
<td class="num">{{.Report.Correct}}</td>
<td class="num">{{.Report.Incorrect}}</td>
<td class="num">{{.Report.NotAttempted}}</td>
<td class="num">{{.Report.MultipleMarked}}</td>
<td class="num">{{pct .Report.Percentage}}%</td>
</tr>
{{end}}</table>
</body>
</html>
`))

type htmlExport struct {
	GeneratedAt time.Time
	Batch       *BatchReport
	Sheets      []Entry
}

// WriteHTML renders the batch as a standalone HTML report.
func WriteHTML(w io.Writer, entries []Entry) error {
	doc := htmlExport{
		GeneratedAt: time.Now().UTC(),
		Batch:       NewBatchReport(entries),
		Sheets:      entries,
	}
	if err := reportTemplate.Execute(w, doc); err != nil {
		return fmt.Errorf("failed to render HTML report: %w", err)
	}
	return nil
}
