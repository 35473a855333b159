package export

import (
	"bytes"
	"errors"

	"github.com/go-pdf/fpdf"
)

const surfaceImage = "surface"

// Compose lays the PNG out on A4 portrait pages with no margins. Each page
// draws the whole image at its offset and the page box clips the rest. A
// nil image yields blank pages.
func Compose(png []byte, heightMM float64, pages []Page) ([]byte, int, error) {
	if len(pages) == 0 {
		return nil, 0, errors.New("no pages to compose")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("resume-builder", true)

	opts := fpdf.ImageOptions{ImageType: "PNG", AllowNegativePosition: true}
	if len(png) > 0 && heightMM > 0 {
		pdf.RegisterImageOptionsReader(surfaceImage, opts, bytes.NewReader(png))
	} else {
		png = nil
	}

	for _, p := range pages {
		pdf.AddPage()
		if png != nil {
			pdf.ImageOptions(surfaceImage, 0, p.OffsetMM, PageWidthMM, heightMM, false, opts, 0, "")
		}
	}
	if err := pdf.Error(); err != nil {
		return nil, 0, err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), pdf.PageCount(), nil
}
