package preview

import "html/template"

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
@page { {{.PageRule}} }
body { margin: 0; background: #f3f4f6; font-family: 'Go', 'Helvetica Neue', Arial, sans-serif; }
.toolbar { display: flex; justify-content: flex-end; padding: 12px; }
.surface { position: relative; overflow: hidden; margin: 16px auto; box-shadow: 0 1px 4px rgba(0, 0, 0, 0.2); }
.node { position: absolute; box-sizing: border-box; }
.line { white-space: pre; overflow: visible; }
@media print {
  body { background: none; }
  .toolbar { display: none; }
  .surface { margin: 0; box-shadow: none; break-after: page; -webkit-print-color-adjust: exact; print-color-adjust: exact; }
}
</style>
</head>
<body>
<div class="toolbar"><button type="button" onclick="window.print()">Print</button></div>
{{range .Surfaces}}<section class="surface" data-surface="{{.Name}}" style="{{.Style}}">
{{range .Nodes}}{{if eq .Kind "text"}}<div class="node text" style="{{.Style}}">{{$ls := .LineStyle}}{{range .Lines}}<div class="line" style="{{$ls}}">{{.}}</div>{{end}}</div>
{{else if eq .Kind "image"}}{{if .Src}}<img class="node image" style="{{.Style}}" src="{{.Src}}" alt="">
{{end}}{{else}}<div class="node box" style="{{.Style}}"></div>
{{end}}{{end}}</section>
{{end}}{{if .AutoPrint}}<script>window.addEventListener("load", function () { window.print(); });</script>
{{end}}</body>
</html>
`))

var failureTmpl = template.Must(template.New("failure").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { margin: 0; display: flex; align-items: center; justify-content: center; height: 100vh; font-family: sans-serif; }
.error { color: #ef4444; text-align: center; padding: 16px; }
</style>
</head>
<body><div class="error">{{.Message}}</div></body>
</html>
`))
