package preprocess

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Load reads an image file in any registered format and converts it to 8 bit
// grayscale
func Load(file string) (*image.Gray, error) {

	f, err := os.Open(file)

	if err != nil {
		return nil, fmt.Errorf("error opening image: %w", err)
	}

	defer f.Close()

	img, format, err := image.Decode(f)

	if err != nil {
		return nil, fmt.Errorf("error decoding image %s: %w", file, err)
	}

	gray := ToGray(img)

	if gray.Rect.Empty() {
		return nil, fmt.Errorf("image %s (%s) has no pixels", file, format)
	}

	return gray, nil
}

// ToGray returns a grayscale copy of img with its origin at (0,0) and a stride
// equal to its width
func ToGray(img image.Image) *image.Gray {

	b := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)

	return dst
}

// Clone returns a compact copy of img
func Clone(img *image.Gray) *image.Gray {
	return ToGray(img)
}

// IsBinary reports if every pixel of img is either 0 or 255
func IsBinary(img *image.Gray) bool {

	b := img.Bounds()

	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]

		for _, v := range row {
			if v != 0 && v != 255 {
				return false
			}
		}
	}

	return true
}

// Save writes img to file as PNG
func Save(file string, img image.Image) error {

	f, err := os.Create(file)

	if err != nil {
		return fmt.Errorf("error creating %s: %w", file, err)
	}

	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("error encoding %s: %w", file, err)
	}

	return f.Close()
}
