package geomap

var JsonTemplate = `
{{- define "geomap" }}
{
    "mapID":"{{ .MapID }}",
    {{ $len := len .JSAssets }} {{ if gt $len 0 }}
    "jsAssets": {{ .JSAssetsNoEscaped }},
    {{ end }}
    {{ $len := len .CSSAssets }} {{ if gt $len 0 }}
    "cssAssets": {{ .CSSAssetsNoEscaped }},
    {{ end }}
    {{ $len := len .JSCodeAssets }} {{ if gt $len 0 }}
    "jsCodeAssets": {{ .JSCodeAssetsNoEscaped }},
    {{ end }}
    "style": {
        "width": "{{ .Width }}",
        "height": "{{ .Height }}"
    }
}
{{ end }}
`

var HeaderTemplate = `
{{ define "header" }}
<head>
    <meta charset="utf-8">
    <title>{{ .PageTitle }}</title>
{{- range .JSAssets }}
    <script src="{{ . }}"></script>
{{- end }}
{{- range .CSSAssets }}
    <link href="{{ . }}" rel="stylesheet">
{{- end }}
</head>
{{ end }}
`

var BaseTemplate = `
{{- define "base" }}
<div class="geomap_container">
    <div class="geomap_item" id="{{ .MapID }}" style="width:{{ .Width }};height:{{ .Height }};"></div>
</div>

<script type="text/javascript">
    "use strict";
    {{- range .JSCodes }}
    {{ . | safeJS }}
    {{- end }}
</script>
{{ end }}
`

var HtmlTemplate = `{{- define "geomap" }}<!DOCTYPE html>
<html>
    {{- template "header" . }}
<body>
    {{- template "base" . }}
<style>
    .geomap_container {margin-top:30px; display: flex;justify-content: center;align-items: center;}
    .geomap_item {margin: auto;}
</style>
</body>
</html>
{{ end }}
`
