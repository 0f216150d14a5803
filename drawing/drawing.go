package drawing

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	xdraw "golang.org/x/image/draw"
)

// Canvas sampling constants
const (
	CanvasSize       = 300
	BrightnessCutoff = 50 // red channel, 8-bit
	SampleStride     = 2
	BrushWidth       = 15.0 // pad stroke width in canvas pixels
	BrushRadius      = BrushWidth / 2
)

// PointCloud is a flat list of (x, y, z) triples, x and y normalized to [0,1], z zero
type PointCloud []float32

// Len returns the number of points
func (c PointCloud) Len() int {
	return len(c) / 3
}

// FromRGBA samples a raw RGBA buffer with the given row stride in bytes.
// Every SampleStride-th pixel on every SampleStride-th row brighter than the
// cutoff becomes a point.
func FromRGBA(pix []byte, stride, width, height int) PointCloud {
	if width <= 0 || height <= 0 {
		return nil
	}
	var cloud PointCloud
	for y := 0; y < height; y += SampleStride {
		for x := 0; x < width; x += SampleStride {
			i := y*stride + x*4
			if i >= len(pix) {
				continue
			}
			if pix[i] > BrightnessCutoff {
				cloud = append(cloud, float32(x)/float32(width), float32(y)/float32(height), 0)
			}
		}
	}
	return cloud
}

// FromImage rescales img onto the square canvas and samples it
func FromImage(img image.Image) PointCloud {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil
	}
	canvas := image.NewRGBA(image.Rect(0, 0, CanvasSize, CanvasSize))
	xdraw.BiLinear.Scale(canvas, canvas.Bounds(), img, b, xdraw.Src, nil)
	return FromRGBA(canvas.Pix, canvas.Stride, CanvasSize, CanvasSize)
}

// LoadImage decodes a PNG, JPEG or GIF silhouette into a point cloud
func LoadImage(path string) (PointCloud, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open silhouette: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return FromImage(img), nil
}
