package native

import "fmt"

// areaOpener removes from every threshold of an image the bright connected
// components smaller than an area, using the union-find max-tree of Meijster
// and Wilkinson
type areaOpener struct {
	w, h   int
	conn   int
	area   int32
	order  []int32
	parent []int32
	size   []int32
	counts [257]int
}

func newAreaOpener(w, h, conn, area int) (*areaOpener, error) {

	if conn != 4 && conn != 8 {
		return nil, fmt.Errorf("connectivity must be 4 or 8, got %d", conn)
	}

	if area < 0 {
		return nil, fmt.Errorf("negative area %d", area)
	}

	n := w * h

	return &areaOpener{
		w:      w,
		h:      h,
		conn:   conn,
		area:   int32(area),
		order:  make([]int32, n),
		parent: make([]int32, n),
		size:   make([]int32, n),
	}, nil
}

// find returns the root of p, halving the path on the way
func (a *areaOpener) find(p int32) int32 {

	for a.parent[p] != p {
		a.parent[p] = a.parent[a.parent[p]]
		p = a.parent[p]
	}

	return p
}

// sort fills order with the pixels of src by decreasing value, ties in raster
// order
func (a *areaOpener) sort(src []uint8) {

	for i := range a.counts {
		a.counts[i] = 0
	}

	for _, v := range src {
		a.counts[256-int(v)]++
	}

	for i := 1; i < len(a.counts); i++ {
		a.counts[i] += a.counts[i-1]
	}

	for i, v := range src {
		k := 255 - int(v)
		a.order[a.counts[k]] = int32(i)
		a.counts[k]++
	}
}

// merge joins the tree holding the processed pixel q to the pixel p being
// processed, unless that tree is already large enough to survive at its own
// level
func (a *areaOpener) merge(src []uint8, p, q int32) {

	if a.parent[q] < 0 {
		return
	}

	r := a.find(q)

	if r == p {
		return
	}

	if src[r] == src[p] || a.size[r] < a.area {
		a.size[p] += a.size[r]
		a.parent[r] = p
		return
	}

	a.size[p] = a.area
}

func (a *areaOpener) open(dst, src []uint8) {

	w, h := a.w, a.h

	a.sort(src)

	for i := range a.parent {
		a.parent[i] = -1
	}

	for _, p := range a.order {
		a.parent[p] = p
		a.size[p] = 1

		x, y := int(p)%w, int(p)/w

		if x > 0 {
			a.merge(src, p, p-1)
		}
		if x < w-1 {
			a.merge(src, p, p+1)
		}
		if y > 0 {
			a.merge(src, p, p-int32(w))
		}
		if y < h-1 {
			a.merge(src, p, p+int32(w))
		}

		if a.conn == 8 {
			if x > 0 && y > 0 {
				a.merge(src, p, p-int32(w)-1)
			}
			if x < w-1 && y > 0 {
				a.merge(src, p, p-int32(w)+1)
			}
			if x > 0 && y < h-1 {
				a.merge(src, p, p+int32(w)-1)
			}
			if x < w-1 && y < h-1 {
				a.merge(src, p, p+int32(w)+1)
			}
		}
	}

	// parents are processed after their children, so walking the order
	// backwards resolves each parent first
	for j := len(a.order) - 1; j >= 0; j-- {
		p := a.order[j]

		if q := a.parent[p]; q == p {
			dst[p] = src[p]
		} else {
			dst[p] = dst[q]
		}
	}
}
