package tiles

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
)

// Size is the edge length of a tile in pixels.
const Size = 256

var (
	emptyOnce sync.Once
	emptyTile []byte

	fontOnce sync.Once
	regular  *truetype.Font
	fontErr  error
)

var (
	placeholderBG     = color.RGBA{0xe5, 0xe7, 0xeb, 0xff}
	placeholderBorder = color.RGBA{0x9c, 0xa3, 0xaf, 0xff}
	placeholderText   = color.RGBA{0x4b, 0x55, 0x63, 0xff}
)

// Empty returns a fully transparent PNG tile.
func Empty() []byte {
	emptyOnce.Do(func() {
		var buf bytes.Buffer
		if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, Size, Size))); err != nil {
			panic(err)
		}
		emptyTile = buf.Bytes()
	})
	return emptyTile
}

// Placeholder renders a tile showing its own coordinates, for cells the
// MBTiles file does not cover.
func Placeholder(z, x, y int) []byte {
	im := image.NewRGBA(image.Rect(0, 0, Size, Size))
	draw.Draw(im, im.Bounds(), &image.Uniform{C: placeholderBG}, image.Point{}, draw.Src)
	for i := 0; i < Size; i++ {
		im.Set(i, 0, placeholderBorder)
		im.Set(i, Size-1, placeholderBorder)
		im.Set(0, i, placeholderBorder)
		im.Set(Size-1, i, placeholderBorder)
	}

	fontOnce.Do(func() {
		regular, fontErr = freetype.ParseFont(goregular.TTF)
	})
	if fontErr != nil {
		slog.Warn("Placeholder font unavailable", "error", fontErr)
	} else {
		ctx := freetype.NewContext()
		ctx.SetDPI(72)
		ctx.SetFont(regular)
		ctx.SetFontSize(16)
		ctx.SetClip(im.Bounds())
		ctx.SetDst(im)
		ctx.SetSrc(image.NewUniform(placeholderText))
		if _, err := ctx.DrawString(fmt.Sprintf("%d/%d/%d", z, x, y), freetype.Pt(12, 28)); err != nil {
			slog.Warn("Failed to draw placeholder label", "error", err)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, im); err != nil {
		slog.Error("Failed to encode placeholder tile", "error", err)
		return Empty()
	}
	return buf.Bytes()
}
