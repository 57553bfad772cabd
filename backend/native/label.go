package native

import "fmt"

// labeler assigns connected component labels to the non zero pixels of an
// image using a two pass union-find scan
type labeler struct {
	w, h   int
	conn   int
	labels []int32
	parent []int32
	remap  []int32
}

func newLabeler(w, h, conn int) (*labeler, error) {

	if conn != 4 && conn != 8 {
		return nil, fmt.Errorf("connectivity must be 4 or 8, got %d", conn)
	}

	return &labeler{
		w:      w,
		h:      h,
		conn:   conn,
		labels: make([]int32, w*h),
		parent: make([]int32, w*h+1),
		remap:  make([]int32, w*h+1),
	}, nil
}

// find returns the root of label a, halving the path on the way
func (l *labeler) find(a int32) int32 {

	for l.parent[a] != a {
		l.parent[a] = l.parent[l.parent[a]]
		a = l.parent[a]
	}

	return a
}

// union merges the sets of a and b, keeping the smaller root
func (l *labeler) union(a, b int32) int32 {

	ra, rb := l.find(a), l.find(b)

	if ra == rb {
		return ra
	}

	if ra < rb {
		l.parent[rb] = ra
		return ra
	}

	l.parent[ra] = rb
	return rb
}

// join merges the label of the already visited pixel j into cur
func (l *labeler) join(cur int32, j int) int32 {

	n := l.labels[j]

	if n == 0 {
		return cur
	}

	if cur == 0 {
		return n
	}

	return l.union(cur, n)
}

// label fills labels from src and returns the number of components
func (l *labeler) label(src []uint8) int {

	w, h := l.w, l.h
	next := int32(1)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x

			if src[i] == 0 {
				l.labels[i] = 0
				continue
			}

			var cur int32

			if x > 0 {
				cur = l.join(cur, i-1)
			}

			if y > 0 {
				cur = l.join(cur, i-w)

				if l.conn == 8 {
					if x > 0 {
						cur = l.join(cur, i-w-1)
					}
					if x < w-1 {
						cur = l.join(cur, i-w+1)
					}
				}
			}

			if cur == 0 {
				cur = next
				l.parent[next] = next
				next++
			}

			l.labels[i] = cur
		}
	}

	// roots are always smaller than the labels pointing at them so a single
	// ascending pass numbers components consecutively
	count := int32(0)

	for id := int32(1); id < next; id++ {
		root := l.find(id)

		if root == id {
			count++
			l.remap[id] = count
		} else {
			l.remap[id] = l.remap[root]
		}
	}

	for i, v := range l.labels {
		l.labels[i] = l.remap[v]
	}

	return int(count)
}
