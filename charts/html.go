package charts

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

//go:embed assets
var assets embed.FS

var reportTemplate = template.Must(template.ParseFS(assets, "assets/report.html.tmpl"))

// Section is one chart of an HTML report.
type Section struct {
	Title string
	Note  string
	Chart *Chart
}

type sectionView struct {
	Title  string
	Note   string
	ID     string
	SVG    template.HTML
	Figure template.JS
}

type reportView struct {
	Title    string
	Style    template.CSS
	Script   template.JS
	Sections []sectionView
}

// WriteHTMLReport writes a self-contained page. Interactive charts are embedded as figure
// JSON drawn by the bundled script, static ones as inline SVG.
func WriteHTMLReport(w io.Writer, title string, sections []Section) error {
	css, err := assets.ReadFile("assets/report.css")
	if err != nil {
		return errors.WithStack(err)
	}
	js, err := assets.ReadFile("assets/figure.js")
	if err != nil {
		return errors.WithStack(err)
	}

	view := reportView{Title: title, Style: template.CSS(css), Script: template.JS(js)}
	for i, s := range sections {
		sv := sectionView{Title: s.Title, Note: s.Note, ID: "figure-" + strconv.Itoa(i)}
		if sv.Title == "" {
			sv.Title = s.Chart.title()
		}
		if s.Chart.Interactive && s.Chart.Donut == nil {
			data, err := json.Marshal(s.Chart.Figure())
			if err != nil {
				return errors.Wrapf(err, "encoding figure %s", s.Chart.Kind)
			}
			sv.Figure = template.JS(data)
		} else {
			var buf bytes.Buffer
			if err := s.Chart.Render(&buf, FormatSVG); err != nil {
				return errors.Wrapf(err, "section %q", sv.Title)
			}
			sv.SVG = template.HTML(stripXMLHeader(buf.Bytes()))
		}
		view.Sections = append(view.Sections, sv)
	}
	return errors.Wrap(reportTemplate.Execute(w, view), "writing html report")
}

// stripXMLHeader drops the <?xml ...?> prolog so the SVG can sit inline in HTML.
func stripXMLHeader(svg []byte) []byte {
	if bytes.HasPrefix(svg, []byte("<?xml")) {
		if i := bytes.Index(svg, []byte("?>")); i >= 0 {
			return bytes.TrimSpace(svg[i+2:])
		}
	}
	return svg
}
