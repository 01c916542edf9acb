// Package imageio decodes, encodes, and scales the RGBA8 images the
// filter chain consumes and produces.
package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

// I/O errors.
var (
	// ErrEmptyImage is returned for zero-sized image data.
	ErrEmptyImage = errors.New("imageio: empty image")
)

// Image is a tightly packed, non-premultiplied RGBA8 pixel buffer.
type Image struct {
	Width  int
	Height int
	// Pix holds 4*Width*Height bytes in R, G, B, A order.
	Pix []byte
}

// New allocates a zeroed image of the given extent.
func New(width, height int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("imageio: invalid extent %dx%d", width, height)
	}
	return &Image{Width: width, Height: height, Pix: make([]byte, width*height*4)}, nil
}

// Load reads an image file, auto-detecting the format.
// Supported formats: PNG, JPEG.
func Load(path string) (*Image, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("imageio: open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		img, err := png.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("imageio: decode PNG %s: %w", path, err)
		}
		return FromStdImage(img), nil
	case ".jpg", ".jpeg":
		img, err := jpeg.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("imageio: decode JPEG %s: %w", path, err)
		}
		return FromStdImage(img), nil
	default:
		return Decode(f)
	}
}

// Decode decodes an image from the reader, sniffing the format.
func Decode(r io.Reader) (*Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("imageio: decode: %w", err)
	}
	return FromStdImage(img), nil
}

// FromStdImage converts a standard library image to an RGBA8 Image.
func FromStdImage(img image.Image) *Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	out := &Image{Width: width, Height: height, Pix: make([]byte, width*height*4)}

	// Fast path for NRGBA: same byte layout, non-premultiplied.
	if nrgba, ok := img.(*image.NRGBA); ok {
		for y := range height {
			src := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+width*4]
			copy(out.Pix[y*width*4:], src)
		}
		return out
	}

	// Generic path for any image type.
	for y := range height {
		for x := range width {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			off := (y*width + x) * 4
			// RGBA() returns 16-bit values, scale to 8-bit.
			out.Pix[off] = byte(r >> 8)
			out.Pix[off+1] = byte(g >> 8)
			out.Pix[off+2] = byte(b >> 8)
			out.Pix[off+3] = byte(a >> 8)
		}
	}
	return out
}

// ToStdImage converts the image to an *image.NRGBA sharing no memory
// with the receiver.
func (m *Image) ToStdImage() *image.NRGBA {
	nrgba := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := range m.Height {
		copy(nrgba.Pix[y*nrgba.Stride:], m.Pix[y*m.Width*4:(y+1)*m.Width*4])
	}
	return nrgba
}

// EncodePNG writes the image as PNG to w.
func (m *Image) EncodePNG(w io.Writer) error {
	if len(m.Pix) == 0 {
		return ErrEmptyImage
	}
	if err := png.Encode(w, m.ToStdImage()); err != nil {
		return fmt.Errorf("imageio: encode PNG: %w", err)
	}
	return nil
}

// SavePNG writes the image as a PNG file.
func (m *Image) SavePNG(path string) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("imageio: create %s: %w", path, err)
	}
	if err := m.EncodePNG(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Thumbnail returns the image scaled down so its longer side is at most
// maxDim, preserving aspect ratio. Images already within the bound, or a
// maxDim <= 0, return the receiver unchanged.
func (m *Image) Thumbnail(maxDim int) *Image {
	if maxDim <= 0 || (m.Width <= maxDim && m.Height <= maxDim) {
		return m
	}

	w, h := m.Width, m.Height
	if w >= h {
		h = h * maxDim / w
		w = maxDim
	} else {
		w = w * maxDim / h
		h = maxDim
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), m.ToStdImage(), image.Rect(0, 0, m.Width, m.Height), draw.Src, nil)
	return FromStdImage(dst)
}
