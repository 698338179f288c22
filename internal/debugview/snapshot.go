package debugview

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"os"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/Faultbox/portalcam/internal/traversal"
	pmath "github.com/Faultbox/portalcam/pkg/math"
)

// Background fills the root view.
var Background = color.RGBA{R: 24, G: 24, B: 28, A: 255}

// Palette colours views by depth, starting at depth 1.
var Palette = []color.RGBA{
	{R: 52, G: 120, B: 246, A: 255},
	{R: 250, G: 140, B: 30, A: 255},
	{R: 70, G: 190, B: 100, A: 255},
	{R: 220, G: 60, B: 90, A: 255},
	{R: 160, G: 100, B: 220, A: 255},
	{R: 240, G: 210, B: 60, A: 255},
}

var border = color.RGBA{R: 240, G: 240, B: 240, A: 255}

// DepthColor returns the fill colour for views at depth d.
func DepthColor(d int) color.RGBA {
	if d <= 0 {
		return Background
	}
	return Palette[(d-1)%len(Palette)]
}

// Snapshot draws every view's viewport into a width by height image, deeper
// views on top, each filled with its depth colour and outlined. Views large
// enough carry their portal name.
func Snapshot(e *traversal.Engine, width, height int) *image.RGBA {
	width, height = max(width, 1), max(height, 1)
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	e.Walk(func(v traversal.View) bool {
		if v.Handle == traversal.Root {
			return true
		}
		r := pixelRect(v.Viewport, width, height)
		if r.Empty() {
			return true
		}
		draw.Draw(img, r, image.NewUniform(DepthColor(v.Depth)), image.Point{}, draw.Src)
		outline(img, r, border)
		if v.Portal != nil && r.Dx() >= 60 && r.Dy() >= 16 {
			d := font.Drawer{
				Dst:  img,
				Src:  image.NewUniform(border),
				Face: face,
				Dot:  fixed.P(r.Min.X+3, r.Min.Y+face.Ascent+2),
			}
			d.DrawString(v.Portal.Name)
		}
		return true
	})
	return img
}

// pixelRect converts a normalized viewport, origin bottom left, to image
// pixels, origin top left.
func pixelRect(vp pmath.Rect, width, height int) image.Rectangle {
	x, y, w, h := vp.ToPixels(width, height)
	top := int32(height) - (y + h)
	return image.Rect(int(x), int(top), int(x+w), int(top+h)).Intersect(image.Rect(0, 0, width, height))
}

func outline(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetRGBA(x, r.Min.Y, c)
		img.SetRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetRGBA(r.Min.X, y, c)
		img.SetRGBA(r.Max.X-1, y, c)
	}
}

// EncodeWebP writes img as lossless WebP.
func EncodeWebP(w io.Writer, img image.Image) error {
	if err := nativewebp.Encode(w, img, nil); err != nil {
		return fmt.Errorf("webp encode: %w", err)
	}
	return nil
}

// SaveWebP writes img to path as lossless WebP.
func SaveWebP(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating snapshot: %w", err)
	}
	if err := EncodeWebP(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
