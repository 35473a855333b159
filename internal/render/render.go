package render

import (
	"bytes"
	"fmt"

	"resume-builder/internal/model"
)

const (
	// SurfaceID is the id of the root element an export captures.
	SurfaceID = "resume-surface"
	// PageWidthMM is the A4 width every variant is laid out for.
	PageWidthMM = 210.0
)

// Surface is one rendered view of a document. Key identifies the surface
// for export locking; callers set it to something stable per user.
type Surface struct {
	Key     string
	Variant model.Template
	Layout  Layout
	HTML    string
	WidthMM float64
}

// Renderer turns documents into HTML surfaces. It is safe for concurrent use.
type Renderer struct {
	store *htmlStore
}

// NewRenderer parses the embedded variant templates.
func NewRenderer() (*Renderer, error) {
	s, err := loadHTMLStore(embedded, "templates")
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	return &Renderer{store: s}, nil
}

// Render is pure: the same document and variant always give the same HTML.
// An unknown variant renders as modern.
func (r *Renderer) Render(doc model.Document, variant model.Template) (Surface, error) {
	if !variant.Valid() {
		variant = model.TemplateModern
	}
	t, ok := r.store.lookup(variant)
	if !ok {
		return Surface{}, fmt.Errorf("no template for variant %s", variant)
	}
	layout := BuildLayout(doc)

	var buf bytes.Buffer
	if err := t.Execute(&buf, layout); err != nil {
		return Surface{}, fmt.Errorf("execute %s: %w", variant, err)
	}
	return Surface{
		Key:     SurfaceID,
		Variant: variant,
		Layout:  layout,
		HTML:    buf.String(),
		WidthMM: PageWidthMM,
	}, nil
}
