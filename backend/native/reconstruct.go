package native

import (
	"image"

	"github.com/swdee/go-morphbench/preprocess"
)

// reconstructor rebuilds a marker under a mask by geodesic dilation over the
// neighbourhood of a structuring element, using the hybrid raster scan and
// FIFO propagation of Vincent
type reconstructor struct {
	w, h int
	// before holds the neighbours preceding the centre in raster order,
	// after those following it
	before []image.Point
	after  []image.Point
	all    []image.Point
	queue  []int32
	inv    []uint8
}

func newReconstructor(w, h int, se preprocess.StructElement) *reconstructor {

	r := &reconstructor{w: w, h: h, inv: make([]uint8, w*h)}
	mask := se.Mask()
	dim := se.Size()

	for dy := 0; dy < dim; dy++ {
		for dx := 0; dx < dim; dx++ {
			if !mask[dy*dim+dx] {
				continue
			}

			o := image.Pt(dx-se.Radius, dy-se.Radius)

			switch {
			case o.Y < 0 || (o.Y == 0 && o.X < 0):
				r.before = append(r.before, o)
			case o.Y > 0 || o.X > 0:
				r.after = append(r.after, o)
			}
		}
	}

	r.all = append(append(r.all, r.before...), r.after...)

	return r
}

// neighbour returns the index of x,y moved by o, or -1 outside of the image
func (r *reconstructor) neighbour(x, y int, o image.Point) int {

	nx, ny := x+o.X, y+o.Y

	if nx < 0 || ny < 0 || nx >= r.w || ny >= r.h {
		return -1
	}

	return ny*r.w + nx
}

// rebuild replaces marker, which must lie below mask, by its reconstruction
// under mask
func (r *reconstructor) rebuild(marker, mask []uint8) {

	w, h := r.w, r.h

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			v := marker[i]

			for _, o := range r.before {
				if q := r.neighbour(x, y, o); q >= 0 && marker[q] > v {
					v = marker[q]
				}
			}

			marker[i] = min(v, mask[i])
		}
	}

	r.queue = r.queue[:0]

	for y := h - 1; y >= 0; y-- {
		for x := w - 1; x >= 0; x-- {
			i := y*w + x
			v := marker[i]

			for _, o := range r.after {
				if q := r.neighbour(x, y, o); q >= 0 && marker[q] > v {
					v = marker[q]
				}
			}

			v = min(v, mask[i])
			marker[i] = v

			for _, o := range r.after {
				if q := r.neighbour(x, y, o); q >= 0 && marker[q] < v && marker[q] < mask[q] {
					r.queue = append(r.queue, int32(i))
					break
				}
			}
		}
	}

	for head := 0; head < len(r.queue); head++ {
		p := int(r.queue[head])
		x, y := p%w, p/w
		v := marker[p]

		for _, o := range r.all {
			q := r.neighbour(x, y, o)

			if q < 0 || marker[q] >= v || marker[q] == mask[q] {
				continue
			}

			marker[q] = min(v, mask[q])
			r.queue = append(r.queue, int32(q))
		}
	}
}

// hmaxima writes 255 to dst where src rises at least h above the
// reconstruction of src-h under src, and 0 elsewhere
func (r *reconstructor) hmaxima(dst, src []uint8, h uint8) {

	for i, v := range src {
		if v > h {
			dst[i] = v - h
		} else {
			dst[i] = 0
		}
	}

	r.rebuild(dst, src)

	for i, v := range src {
		if v-dst[i] >= h {
			dst[i] = 255
		} else {
			dst[i] = 0
		}
	}
}

// hminima is hmaxima of the inverted image
func (r *reconstructor) hminima(dst, src []uint8, h uint8) {

	for i, v := range src {
		r.inv[i] = 255 - v
	}

	r.hmaxima(dst, r.inv, h)
}
