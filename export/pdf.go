// Package export writes committed strokes to vector documents.
//
// Only committed strokes are exported; in-progress strokes are not part
// of a snapshot's static layers. One logical pixel maps to one PDF point.
package export

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"

	"github.com/jung-kurt/gofpdf"

	"github.com/gogpu/ink"
)

// Option configures PDF export.
type Option func(*options)

type options struct {
	scheme      ink.ColorScheme
	pageW       float64
	pageH       float64
	margin      float64
	background  color.Color
	title       string
	compression bool
}

func defaultOptions() options {
	return options{
		scheme:      ink.Light,
		margin:      18,
		compression: true,
	}
}

// WithScheme selects which color variant is written. The default is
// ink.Light.
func WithScheme(s ink.ColorScheme) Option {
	return func(o *options) { o.scheme = s }
}

// WithPageSize fixes the page size in points and keeps strokes at their
// logical positions. Without it the page is fitted to the strokes.
func WithPageSize(width, height float64) Option {
	return func(o *options) {
		if width > 0 && height > 0 {
			o.pageW, o.pageH = width, height
		}
	}
}

// WithMargin sets the margin around fitted strokes.
func WithMargin(m float64) Option {
	return func(o *options) {
		if m >= 0 {
			o.margin = m
		}
	}
}

// WithBackground fills the page before drawing strokes.
func WithBackground(c color.Color) Option {
	return func(o *options) { o.background = c }
}

// WithTitle sets the document title.
func WithTitle(t string) Option {
	return func(o *options) { o.title = t }
}

// WithCompression switches content stream compression. It is on by
// default.
func WithCompression(on bool) Option {
	return func(o *options) { o.compression = on }
}

// defaultPage is A4 portrait in points, used for an empty fitted export.
var defaultPage = gofpdf.SizeType{Wd: 595.28, Ht: 841.89}

// PDF writes the committed strokes of snap to w, background layer first,
// each layer in commit order.
func PDF(w io.Writer, snap *ink.Snapshot, opts ...Option) error {
	if snap == nil {
		return fmt.Errorf("export: nil snapshot")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	page, offset := layout(snap, o)
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           page,
	})
	pdf.SetCompression(o.compression)
	pdf.SetCreator("ink", true)
	if o.title != "" {
		pdf.SetTitle(o.title, true)
	}
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	if o.background != nil {
		bg := color.NRGBAModel.Convert(o.background).(color.NRGBA)
		setFill(pdf, bg)
		pdf.Rect(0, 0, page.Wd, page.Ht, "F")
		if bg.A != 0xff {
			pdf.SetAlpha(1, "Normal")
		}
	}
	for _, l := range ink.Layers() {
		for s := range snap.StrokesInLayer(l) {
			writeStroke(pdf, s, o.scheme, offset)
		}
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return pdf.Output(w)
}

// SavePDF writes the committed strokes of snap to a file at path.
func SavePDF(path string, snap *ink.Snapshot, opts ...Option) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("export: %w", cerr)
		}
	}()
	return PDF(f, snap, opts...)
}

func writeStroke(pdf *gofpdf.Fpdf, s *ink.Stroke, scheme ink.ColorScheme, offset ink.Point) {
	poly := s.Outline()
	if len(poly) < 3 {
		return
	}
	pts := make([]gofpdf.PointType, len(poly))
	for i, p := range poly {
		pts[i] = gofpdf.PointType{X: p.X + offset.X, Y: p.Y + offset.Y}
	}
	c := s.Style().Color.Resolve(scheme).RGBA
	if c.A == 0 {
		return
	}
	setFill(pdf, c)
	pdf.Polygon(pts, "F")
	if c.A != 0xff {
		pdf.SetAlpha(1, "Normal")
	}
}

func setFill(pdf *gofpdf.Fpdf, c color.NRGBA) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
	if c.A != 0xff {
		pdf.SetAlpha(float64(c.A)/0xff, "Normal")
	}
}

// layout returns the page size and the translation applied to stroke
// coordinates.
func layout(snap *ink.Snapshot, o options) (gofpdf.SizeType, ink.Point) {
	if o.pageW > 0 {
		return gofpdf.SizeType{Wd: o.pageW, Ht: o.pageH}, ink.Point{}
	}
	lo := ink.Pt(math.Inf(1), math.Inf(1))
	hi := ink.Pt(math.Inf(-1), math.Inf(-1))
	found := false
	for _, l := range ink.Layers() {
		for s := range snap.StrokesInLayer(l) {
			smin, smax, ok := s.Bounds()
			if !ok {
				continue
			}
			found = true
			lo = ink.Pt(math.Min(lo.X, smin.X), math.Min(lo.Y, smin.Y))
			hi = ink.Pt(math.Max(hi.X, smax.X), math.Max(hi.Y, smax.Y))
		}
	}
	if !found {
		return defaultPage, ink.Point{}
	}
	size := gofpdf.SizeType{
		Wd: hi.X - lo.X + 2*o.margin,
		Ht: hi.Y - lo.Y + 2*o.margin,
	}
	return size, ink.Pt(o.margin-lo.X, o.margin-lo.Y)
}
