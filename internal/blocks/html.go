package blocks

import (
	"html/template"
	"io"
)

const blocksTemplate = `<div class="content-blocks">
{{- range . }}
{{- if eq .Kind "image" }}
  <figure class="block block-photo">
    <img src="{{ .URL }}" alt="{{ .Alt }}" loading="lazy">
    {{- if .Caption }}<figcaption>{{ .Caption }}</figcaption>{{ end }}
  </figure>
{{- else if eq .Kind "video-embed" }}
  <figure class="block block-video">
    <iframe src="{{ .URL }}" title="{{ .Alt }}" allowfullscreen allow="accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture"></iframe>
    {{- if .Caption }}<figcaption>{{ .Caption }}</figcaption>{{ end }}
  </figure>
{{- else if eq .Kind "video" }}
  <figure class="block block-video">
    <video controls><source src="{{ .URL }}"></video>
    {{- if .Caption }}<figcaption>{{ .Caption }}</figcaption>{{ end }}
  </figure>
{{- else if eq .Kind "link" }}
  <a class="block block-link" href="{{ .URL }}" target="_blank" rel="noopener noreferrer">{{ .Text }}</a>
{{- else if eq .Kind "title" }}
  <h2 class="block block-title">{{ .Text }}</h2>
{{- else if eq .Kind "subtitle" }}
  <h3 class="block block-subtitle">{{ .Text }}</h3>
{{- else if eq .Kind "text" }}
  <p class="block block-text">{{ .Text }}</p>
{{- else if eq .Kind "website-embed" }}
  <div class="block block-website"><iframe src="{{ .URL }}" title="{{ .Alt }}" allowfullscreen></iframe></div>
{{- else if eq .Kind "website-link" }}
  <a class="block block-website-link" href="{{ .URL }}" target="_blank" rel="noopener noreferrer">{{ .Text }}</a>
{{- else if eq .Kind "gallery" }}
  <div class="block block-gallery" data-lightbox="true">
    {{- range $i, $img := .Images }}
    <button type="button" data-index="{{ $i }}"><img src="{{ $img.URL }}" alt="{{ $img.Alt }}" loading="lazy"></button>
    {{- end }}
  </div>
{{- else if eq .Kind "slider" }}
  <div class="block block-slider" data-autoplay="{{ .AutoAdvance }}" data-interval="{{ .IntervalMs }}">
    {{- range $i, $img := .Images }}
    <figure data-index="{{ $i }}"><img src="{{ $img.URL }}" alt="{{ $img.Alt }}">{{ if $img.Caption }}<figcaption>{{ $img.Caption }}</figcaption>{{ end }}</figure>
    {{- end }}
  </div>
{{- end }}
{{- end }}
</div>
`

var blocksTmpl = template.Must(template.New("content_blocks").Parse(blocksTemplate))

// RenderHTML writes presentations as an HTML fragment. Values are escaped
// and URLs with non-http schemes are neutralized by html/template.
func RenderHTML(w io.Writer, presentations []Presentation) error {
	return blocksTmpl.Execute(w, presentations)
}
