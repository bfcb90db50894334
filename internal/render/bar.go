// Package render draws the numeric rating bar as a PNG, matching the
// control's colours, for previews and exported snapshots.
package render

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/yungbote/advanced-rating/internal/domain/rating"
)

const (
	BarWidth  = 200
	BarHeight = 17
	MaxScale  = 8
)

var (
	fillColor      = color.NRGBA{R: 0xFF, G: 0xA5, B: 0x00, A: 0xFF} // orange
	ratedColor     = color.NRGBA{R: 0xD3, G: 0xD3, B: 0xD3, A: 0xFF} // lightgray
	unratedColor   = color.NRGBA{R: 0xAD, G: 0xD8, B: 0xE6, A: 0xFF} // lightblue
	labelTextColor = color.NRGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xFF}
)

type BarRenderer struct {
	font *truetype.Font
}

// NewBarRenderer loads the TTF at fontPath, or the bundled Go font when empty.
func NewBarRenderer(fontPath string) (*BarRenderer, error) {
	raw := goregular.TTF
	if p := strings.TrimSpace(fontPath); p != "" {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read font file: %w", err)
		}
		raw = b
	}
	parsed, err := truetype.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return &BarRenderer{font: parsed}, nil
}

// PNG draws the bar at scale× the on-page size with the percentage as label.
func (r *BarRenderer) PNG(st rating.WidgetState, scale int) ([]byte, error) {
	if scale < 1 {
		scale = 1
	}
	if scale > MaxScale {
		scale = MaxScale
	}
	w, h := float64(BarWidth*scale), float64(BarHeight*scale)
	pct := rating.ClampPercentage(float64(st.Percentage))

	dc := gg.NewContext(int(w), int(h))
	if st.IsRated {
		dc.SetColor(ratedColor)
	} else {
		dc.SetColor(unratedColor)
	}
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	dc.SetColor(fillColor)
	dc.DrawRectangle(0, 0, w*float64(pct)/100, h)
	dc.Fill()

	dc.SetFontFace(r.face(float64(BarHeight*scale) * 0.7))
	dc.SetColor(labelTextColor)
	dc.DrawStringAnchored(strconv.Itoa(pct), w/2, h/2, 0.5, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *BarRenderer) face(size float64) font.Face {
	return truetype.NewFace(r.font, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}
