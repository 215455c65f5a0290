package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Target sizes accepted by the Stability edit and video endpoints.
var (
	LandscapeSize = image.Pt(1024, 576)
	PortraitSize  = image.Pt(576, 1024)
	SquareSize    = image.Pt(768, 768)
)

// TargetSize picks the output size for an image of the given dimensions.
func TargetSize(width, height int) image.Point {
	switch {
	case width > height:
		return LandscapeSize
	case width < height:
		return PortraitSize
	default:
		return SquareSize
	}
}

// Resize cover-fits data into TargetSize, cropping around the centre, and
// re-encodes the result as PNG.
func Resize(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUndecodableImage, err)
	}

	bounds := src.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrUndecodableImage)
	}

	size := TargetSize(bounds.Dx(), bounds.Dy())
	dst := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, coverCrop(bounds, size), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// coverCrop returns the centred part of src with the aspect ratio of size.
func coverCrop(src image.Rectangle, size image.Point) image.Rectangle {
	w, h := src.Dx(), src.Dy()
	// compare w/h with size.X/size.Y without floats
	if w*size.Y > h*size.X {
		cropW := h * size.X / size.Y
		x0 := src.Min.X + (w-cropW)/2
		return image.Rect(x0, src.Min.Y, x0+cropW, src.Max.Y)
	}
	cropH := w * size.Y / size.X
	y0 := src.Min.Y + (h-cropH)/2
	return image.Rect(src.Min.X, y0, src.Max.X, y0+cropH)
}
