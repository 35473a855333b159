package export

import (
	"math"

	"resume-builder/pkg/infrastructure"
)

const (
	PageWidthMM  = 210.0
	PageHeightMM = 297.0

	pageEpsilon = 1e-6
)

// Page places the full surface image on one A4 page, shifted up by the
// height of the pages before it.
type Page struct {
	Index    int
	OffsetMM float64
}

// ImageHeightMM scales the raster to the page width. The device scale
// factor cancels out, so only the pixel aspect ratio matters.
func ImageHeightMM(r infrastructure.Raster) float64 {
	if r.WidthPx <= 0 || r.HeightPx <= 0 {
		return 0
	}
	return float64(r.HeightPx) * PageWidthMM / float64(r.WidthPx)
}

// Paginate slices an image of heightMM into pages of pageMM. An empty image
// still produces one page; a height within pageEpsilon of a page boundary
// does not spill onto a new page.
func Paginate(heightMM, pageMM float64) []Page {
	n := 1
	if heightMM > 0 {
		n = int(math.Ceil(heightMM/pageMM - pageEpsilon))
		if n < 1 {
			n = 1
		}
	}
	pages := make([]Page, n)
	for k := range pages {
		pages[k] = Page{Index: k, OffsetMM: -float64(k) * pageMM}
	}
	return pages
}
