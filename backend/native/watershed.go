package native

import (
	morphbench "github.com/swdee/go-morphbench"
	"github.com/swdee/go-morphbench/preprocess"
)

// flooder grows the markers over a gray level relief in increasing level
// order using one FIFO per level
type flooder struct {
	w, h    int
	level   []uint8
	markers []int32
	labels  []int32
	queue   [256][]int32
}

// newFlooder prepares the relief and markers of a marker controlled
// watershed.  The image is smoothed by an opening, its morphological gradient
// is the relief and the connected flat zones of the gradient below the level
// are the markers.
func newFlooder(src []uint8, w, h int, p morphbench.WatershedParams) (*flooder, int, error) {

	relief := make([]uint8, w*h)

	smooth := newMorph(w, h, preprocess.NewStructElement(preprocess.Square, p.Smooth))
	smooth.open(relief, src)

	grad := make([]uint8, w*h)
	newMorph(w, h, preprocess.NewStructElement(preprocess.Square, p.Gradient)).gradient(grad, relief)

	seeds := make([]uint8, w*h)

	for i, g := range grad {
		if g < p.Level {
			seeds[i] = 255
		}
	}

	l, err := newLabeler(w, h, 8)

	if err != nil {
		return nil, 0, err
	}

	n := l.label(seeds)

	return &flooder{
		w:       w,
		h:       h,
		level:   grad,
		markers: l.labels,
		labels:  make([]int32, w*h),
	}, n, nil
}

// push queues pixel i at level lv
func (f *flooder) push(lv uint8, i int) {
	f.queue[lv] = append(f.queue[lv], int32(i))
}

// spread labels pixel q from p when q is not labeled yet
func (f *flooder) spread(p int32, q int, cur int) {

	if f.labels[q] != 0 {
		return
	}

	f.labels[q] = f.labels[p]

	lv := f.level[q]
	if int(lv) < cur {
		lv = uint8(cur)
	}

	f.push(lv, q)
}

// flood copies the markers and grows them until every pixel reachable from a
// marker is labeled
func (f *flooder) flood() {

	copy(f.labels, f.markers)

	for i := range f.queue {
		f.queue[i] = f.queue[i][:0]
	}

	for i, m := range f.labels {
		if m != 0 {
			f.push(f.level[i], i)
		}
	}

	w, h := f.w, f.h

	for cur := 0; cur < len(f.queue); cur++ {
		// the queue of the current level grows while it is drained
		for j := 0; j < len(f.queue[cur]); j++ {
			p := f.queue[cur][j]
			x, y := int(p)%w, int(p)/w

			if x > 0 {
				f.spread(p, int(p)-1, cur)
			}
			if x < w-1 {
				f.spread(p, int(p)+1, cur)
			}
			if y > 0 {
				f.spread(p, int(p)-w, cur)
			}
			if y < h-1 {
				f.spread(p, int(p)+w, cur)
			}
		}
	}
}
