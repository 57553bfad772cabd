package preprocess

import (
	"fmt"
	"image"
)

// Mosaic returns a new image made of the source repeated nx times across and
// ny times down
func Mosaic(src *image.Gray, nx, ny int) (*image.Gray, error) {

	if nx < 1 || ny < 1 {
		return nil, fmt.Errorf("invalid mosaic tiling %dx%d", nx, ny)
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w*nx, h*ny))

	for y := 0; y < h; y++ {
		row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):src.PixOffset(b.Max.X, b.Min.Y+y)]

		for ty := 0; ty < ny; ty++ {
			off := dst.PixOffset(0, ty*h+y)

			for tx := 0; tx < nx; tx++ {
				copy(dst.Pix[off+tx*w:off+(tx+1)*w], row)
			}
		}
	}

	return dst, nil
}
