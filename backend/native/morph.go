package native

import (
	"fmt"
	"image"

	"github.com/swdee/go-morphbench/preprocess"
)

// pick returns the minimum of a and b when eroding, otherwise the maximum
func pick(a, b uint8, erode bool) uint8 {

	if erode {
		if a < b {
			return a
		}
		return b
	}

	if a > b {
		return a
	}
	return b
}

// lineFilter is a running min/max filter over one line of pixels using the
// van Herk/Gil-Werman algorithm, so the cost per pixel does not depend on the
// window length
type lineFilter struct {
	pad []uint8
	g   []uint8
	h   []uint8
}

// newLineFilter allocates buffers for lines of up to n pixels filtered with a
// window of radius r
func newLineFilter(n, r int) *lineFilter {

	k := 2*r + 1
	m := n + 2*r + k

	return &lineFilter{
		pad: make([]uint8, m),
		g:   make([]uint8, m),
		h:   make([]uint8, m),
	}
}

// run filters the n pixels of src starting at off and spaced stride apart,
// writing the result to the same positions of dst.  Pixels outside of the line
// are ignored, which is the same as padding with 255 for erosion and 0 for
// dilation.
func (f *lineFilter) run(dst, src []uint8, off, stride, n, r int, erode bool) {

	k := 2*r + 1
	m := n + 2*r

	if rem := m % k; rem != 0 {
		m += k - rem
	}

	var fill uint8

	if erode {
		fill = 255
	}

	p, g, h := f.pad[:m], f.g[:m], f.h[:m]

	for i := range p {
		p[i] = fill
	}

	for i, j := 0, off; i < n; i, j = i+1, j+stride {
		p[i+r] = src[j]
	}

	for start := 0; start < m; start += k {
		end := start + k

		g[start] = p[start]
		for i := start + 1; i < end; i++ {
			g[i] = pick(g[i-1], p[i], erode)
		}

		h[end-1] = p[end-1]
		for i := end - 2; i >= start; i-- {
			h[i] = pick(h[i+1], p[i], erode)
		}
	}

	for x, j := 0, off; x < n; x, j = x+1, j+stride {
		dst[j] = pick(h[x], g[x+2*r], erode)
	}
}

// morph applies flat erosions and dilations to images of a fixed size.  A
// square element is decomposed into a horizontal then vertical line, a cross
// into the pointwise extremum of both lines.
type morph struct {
	w, h  int
	se    preprocess.StructElement
	lines *lineFilter
	tmp   []uint8
	tmp2  []uint8
}

func newMorph(w, h int, se preprocess.StructElement) *morph {

	n := w
	if h > n {
		n = h
	}

	return &morph{
		w:     w,
		h:     h,
		se:    se,
		lines: newLineFilter(n, se.Radius),
		tmp:   make([]uint8, w*h),
		tmp2:  make([]uint8, w*h),
	}
}

// filter erodes or dilates src into dst, both w*h pixels
func (m *morph) filter(dst, src []uint8, erode bool) {

	r := m.se.Radius

	if r == 0 {
		copy(dst, src)
		return
	}

	for y := 0; y < m.h; y++ {
		m.lines.run(m.tmp, src, y*m.w, 1, m.w, r, erode)
	}

	if m.se.Shape == preprocess.Square {
		for x := 0; x < m.w; x++ {
			m.lines.run(dst, m.tmp, x, m.w, m.h, r, erode)
		}
		return
	}

	for x := 0; x < m.w; x++ {
		m.lines.run(dst, src, x, m.w, m.h, r, erode)
	}

	for i := range dst {
		dst[i] = pick(dst[i], m.tmp[i], erode)
	}
}

func (m *morph) erode(dst, src []uint8) {
	m.filter(dst, src, true)
}

func (m *morph) dilate(dst, src []uint8) {
	m.filter(dst, src, false)
}

// open is a dilation of the erosion
func (m *morph) open(dst, src []uint8) {
	m.filter(m.tmp2, src, true)
	m.filter(dst, m.tmp2, false)
}

// close is an erosion of the dilation
func (m *morph) close(dst, src []uint8) {
	m.filter(m.tmp2, src, false)
	m.filter(dst, m.tmp2, true)
}

// gradient is the difference of the dilation and the erosion
func (m *morph) gradient(dst, src []uint8) {

	m.filter(dst, src, false)
	m.filter(m.tmp2, src, true)

	for i := range dst {
		dst[i] -= m.tmp2[i]
	}
}

// pixels copies the image into a tightly packed row major slice
func pixels(img *image.Gray) ([]uint8, int, int, error) {

	if img == nil {
		return nil, 0, 0, fmt.Errorf("no image")
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	if w < 1 || h < 1 {
		return nil, 0, 0, fmt.Errorf("empty image %dx%d", w, h)
	}

	out := make([]uint8, w*h)

	for y := 0; y < h; y++ {
		row := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(out[y*w:(y+1)*w], img.Pix[row:row+w])
	}

	return out, w, h, nil
}

// toGray wraps packed pixels as an image
func toGray(pix []uint8, w, h int) *image.Gray {
	return &image.Gray{Pix: pix, Stride: w, Rect: image.Rect(0, 0, w, h)}
}
