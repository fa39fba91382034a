package ui

import (
	"fmt"
	"html/template"
	"io"

	"github.com/Brownie44l1/classify-ui/internal/model"
)

// SaveFilename is the name the Save action downloads the processed image as.
const SaveFilename = "processed_image.png"

// Layout lists which regions of the page are visible for a given state.
type Layout struct {
	UploadZone  bool
	Image       bool
	Loading     bool
	ErrorBanner bool
	Predictions bool
}

// LayoutFor decides which regions are visible for s.
func LayoutFor(s model.ViewState) Layout {
	return Layout{
		UploadZone:  s.ImageURL == "",
		Image:       s.ImageURL != "",
		Loading:     s.IsLoading,
		ErrorBanner: s.Error != "" && !s.IsLoading,
		Predictions: len(s.Predictions) > 0 && !s.IsLoading,
	}
}

// FormatConfidence renders a [0,1] score as a percentage with two decimals.
func FormatConfidence(confidence float64) string {
	return fmt.Sprintf("%.2f%%", confidence*100)
}

type pageData struct {
	Layout
	State        model.ViewState
	ImageSrc     string
	DownloadHref string
	SaveFilename string
}

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"confidence": FormatConfidence,
}).Parse(pageHTML))

// PageOptions points the rendered page at the routes serving the image.
type PageOptions struct {
	ImageSrc     string
	DownloadHref string
}

// RenderHTML writes the full page for s.
func RenderHTML(w io.Writer, s model.ViewState, opts PageOptions) error {
	return pageTemplate.Execute(w, pageData{
		Layout:       LayoutFor(s),
		State:        s,
		ImageSrc:     opts.ImageSrc,
		DownloadHref: opts.DownloadHref,
		SaveFilename: SaveFilename,
	})
}

// RenderText writes the same regions as the page for terminal use.
func RenderText(w io.Writer, s model.ViewState) error {
	l := LayoutFor(s)
	ew := &errWriter{w: w}

	if l.UploadZone {
		ew.printf("No image processed. Pass an image path to upload.\n")
	}
	if l.Image {
		ew.printf("Processed image ready (save with --save %s)\n", SaveFilename)
	}
	if l.Loading {
		ew.printf("Processing image...\n")
	}
	if l.ErrorBanner {
		ew.printf("Error: %s\n", s.Error)
	}
	if l.Predictions {
		ew.printf("\nPredictions\n")
		for _, p := range s.Predictions {
			ew.printf("  %-24s %8s\n", p.ClassName, FormatConfidence(p.Confidence))
		}
	}
	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Image Classification</title>
{{if .Loading}}<meta http-equiv="refresh" content="1">{{end}}
<style>
body { font-family: sans-serif; background: #eef2ff; margin: 0; padding: 2rem; }
.card { max-width: 42rem; margin: 0 auto; background: #fff; border-radius: 0.75rem; padding: 2rem; }
h1 { text-align: center; color: #1f2937; }
.zone { border: 2px dashed #d1d5db; border-radius: 0.5rem; padding: 2rem; text-align: center; }
.zone img { max-height: 24rem; border-radius: 0.5rem; }
.save { display: inline-block; margin-top: 1rem; background: #4f46e5; color: #fff; padding: 0.5rem 1rem; border-radius: 0.5rem; text-decoration: none; }
.loading { color: #4f46e5; text-align: center; margin-top: 2rem; }
.error { background: #fef2f2; color: #b91c1c; padding: 1rem; border-radius: 0.5rem; margin-top: 2rem; }
.predictions { background: #f9fafb; border-radius: 0.5rem; padding: 1.5rem; margin-top: 2rem; }
.row { display: flex; justify-content: space-between; margin: 0.5rem 0; }
</style>
</head>
<body>
<div class="card">
<h1>Image Classification</h1>
<form class="zone" action="/upload" method="post" enctype="multipart/form-data">
{{if .UploadZone}}
<p>Choose an image to upload</p>
{{else}}
<img src="{{.ImageSrc}}" alt="Uploaded">
<div><a class="save" href="{{.DownloadHref}}" download="{{.SaveFilename}}">Save</a></div>
{{end}}
<p><input type="file" name="file" accept="image/*" onchange="this.form.submit()"></p>
<noscript><button type="submit">Upload</button></noscript>
</form>
{{if .Loading}}<div class="loading">Processing image...</div>{{end}}
{{if .ErrorBanner}}<div class="error">{{.State.Error}}</div>{{end}}
{{if .Predictions}}
<div class="predictions">
<h2>Predictions</h2>
{{range .State.Predictions}}<div class="row"><span>{{.ClassName}}</span><span>{{confidence .Confidence}}</span></div>
{{end}}
</div>
{{end}}
</div>
</body>
</html>
`
