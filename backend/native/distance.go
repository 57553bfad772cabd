package native

import "math"

// far stands in for an infinite squared distance
const far = 1e20

// distancer computes the exact Euclidean distance transform with the
// separable lower envelope algorithm of Felzenszwalb and Huttenlocher
type distancer struct {
	w, h int
	f    []float64
	line []float64
	d    []float64
	v    []int
	z    []float64
	out  []float32
}

func newDistancer(w, h int) *distancer {

	n := w
	if h > n {
		n = h
	}

	return &distancer{
		w:    w,
		h:    h,
		f:    make([]float64, w*h),
		line: make([]float64, n),
		d:    make([]float64, n),
		v:    make([]int, n),
		z:    make([]float64, n+1),
		out:  make([]float32, w*h),
	}
}

// envelope computes the 1D squared distance transform of f[:n] into d
func (t *distancer) envelope(f []float64, n int) {

	d, v, z := t.d, t.v, t.z
	k := 0
	v[0] = 0
	z[0] = -far
	z[1] = far

	for q := 1; q < n; q++ {
		s := ((f[q] + float64(q*q)) - (f[v[k]] + float64(v[k]*v[k]))) / float64(2*q-2*v[k])

		for s <= z[k] {
			k--
			s = ((f[q] + float64(q*q)) - (f[v[k]] + float64(v[k]*v[k]))) / float64(2*q-2*v[k])
		}

		k++
		v[k] = q
		z[k] = s
		z[k+1] = far
	}

	k = 0

	for q := 0; q < n; q++ {
		for z[k+1] < float64(q) {
			k++
		}

		dq := float64(q - v[k])
		d[q] = dq*dq + f[v[k]]
	}
}

// transform writes the distance of every non zero pixel of src to the nearest
// zero pixel.  Without any zero pixel all distances are huge.
func (t *distancer) transform(src []uint8) {

	w, h := t.w, t.h

	for i, p := range src {
		if p == 0 {
			t.f[i] = 0
		} else {
			t.f[i] = far
		}
	}

	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			t.line[y] = t.f[y*w+x]
		}

		t.envelope(t.line, h)

		for y := 0; y < h; y++ {
			t.f[y*w+x] = t.d[y]
		}
	}

	for y := 0; y < h; y++ {
		row := t.f[y*w : (y+1)*w]
		t.envelope(row, w)
		copy(row, t.d[:w])
	}

	for i, v := range t.f {
		t.out[i] = float32(math.Sqrt(v))
	}
}
