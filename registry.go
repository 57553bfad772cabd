package morphbench

import (
	"fmt"
	"image"
	"path/filepath"
	"sort"

	"github.com/swdee/go-morphbench/preprocess"
)

// Operation names known to the catalog
const (
	OpErode     = "erode"
	OpDilate    = "dilate"
	OpOpen      = "open"
	OpClose     = "close"
	OpGradient  = "gradient"
	OpLabel     = "label"
	OpDistance  = "distance"
	OpWatershed = "watershed"
	OpHMaxima   = "hmaxima"
	OpHMinima   = "hminima"
	OpAreaOpen  = "areaopen"
)

const (
	// DefaultH is the dynamic of the h-maxima and h-minima operations
	DefaultH = 10
	// DefaultArea is the area opening threshold in pixels at the source scale
	DefaultArea = 500
)

// structElementOps lists the operations whose cost depends on the radius of the
// structuring element and so take part in a structuring element sweep
var structElementOps = map[string]bool{
	OpErode:    true,
	OpDilate:   true,
	OpOpen:     true,
	OpClose:    true,
	OpGradient: true,
	OpHMaxima:  true,
	OpHMinima:  true,
}

// UsesStructElement reports if the operation is sensitive to the structuring
// element radius
func UsesStructElement(op string) bool {
	return structElementOps[op]
}

// Kernel is an operation bound to the input of one sweep point.  Run must be
// safe to call any number of times, each call doing the same work.
type Kernel interface {
	Run() error
	Close() error
}

// Counter is implemented by kernels that produce labels.  Count returns the
// number of labels found by the last Run.
type Counter interface {
	Count() int
}

// Imager is implemented by kernels whose result is a gray image.  Image returns
// a copy of the result of the last Run.
type Imager interface {
	Image() (*image.Gray, error)
}

// KernelFunc adapts a function into a Kernel with nothing to release
type KernelFunc func() error

// Run calls f
func (f KernelFunc) Run() error {
	return f()
}

// Close does nothing
func (f KernelFunc) Close() error {
	return nil
}

// WatershedParams are the preparation parameters of the watershed operation
type WatershedParams struct {
	// Smooth is the radius of the opening applied before the gradient, zero
	// disables smoothing
	Smooth int `yaml:"smooth" validate:"gte=0"`
	// Gradient is the radius of the morphological gradient
	Gradient int `yaml:"gradient" validate:"gte=1"`
	// Level is the gradient value below which pixels seed markers
	Level uint8 `yaml:"level" validate:"gte=1"`
}

// WatershedTable looks up watershed parameters by image file name
type WatershedTable struct {
	Default WatershedParams            `yaml:"default"`
	Images  map[string]WatershedParams `yaml:"images" validate:"dive"`
}

// DefaultWatershedTable returns the parameters tuned for the reference images
func DefaultWatershedTable() WatershedTable {
	return WatershedTable{
		Default: WatershedParams{Smooth: 5, Gradient: 3, Level: 10},
		Images: map[string]WatershedParams{
			"astronaut.png":       {Smooth: 5, Gradient: 2, Level: 10},
			"bubbles_gray.png":    {Smooth: 3, Gradient: 1, Level: 10},
			"hubble_EDF_gray.png": {Smooth: 2, Gradient: 1, Level: 10},
			"lena.png":            {Smooth: 5, Gradient: 3, Level: 10},
			"tools.png":           {Smooth: 3, Gradient: 1, Level: 10},
		},
	}
}

// For returns the parameters of the image, matched on its base file name, or
// the default entry
func (t WatershedTable) For(imageFile string) WatershedParams {

	if p, ok := t.Images[filepath.Base(imageFile)]; ok {
		return p
	}

	return t.Default
}

// Params are the per point parameters handed to a Factory
type Params struct {
	SE preprocess.StructElement
	// Scale is the factor the point image was resized by, zero reads as one
	Scale float64
	// Arg is the area of the area opening in pixels at the source scale
	Arg float64
	// H is the dynamic of the h-maxima and h-minima operations
	H         uint8
	Watershed WatershedParams
}

// Area returns the area opening threshold scaled with the image, so that a
// point at scale k keeps the objects it kept at the source scale
func (p Params) Area() int {

	k := p.Scale

	if k == 0 {
		k = 1
	}

	return int(p.Arg * k * k)
}

// Dynamic returns H, or DefaultH when unset
func (p Params) Dynamic() uint8 {

	if p.H == 0 {
		return DefaultH
	}

	return p.H
}

// Factory prepares a Kernel from the image of a sweep point.  The image is
// shared with the other backend and must not be modified.
type Factory func(img *image.Gray, p Params) (Kernel, error)

// Binding is a backend's Factory for one operation
type Binding struct {
	Backend string
	Factory Factory
}

// Enabled reports if the binding is measured
func (b Binding) Enabled() bool {
	return b.Factory != nil
}

// Pair holds the two competing bindings of an operation
type Pair struct {
	Operation string
	A         Binding
	B         Binding
}

// Which values accepted by Pair.Only besides a backend name
const (
	WhichBoth = "both"
	WhichA    = "a"
	WhichB    = "b"
)

// Only returns the pair with a single binding enabled, selected by a, b or
// the backend name.  Both keeps the pair as is.  The disabled binding keeps
// its backend name so result tables stay aligned.
func (p Pair) Only(which string) (Pair, error) {

	switch which {
	case WhichBoth, "":
		return p, nil
	case WhichA, p.A.Backend:
		p.B.Factory = nil
		return p, nil
	case WhichB, p.B.Backend:
		p.A.Factory = nil
		return p, nil
	}

	return Pair{}, fmt.Errorf("%w: which must be both, a, b, %s or %s, got %q",
		ErrInvalidParameter, p.A.Backend, p.B.Backend, which)
}

// Registry maps an operation name and backend name to a Factory
type Registry struct {
	ops map[string]map[string]Factory
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{
		ops: make(map[string]map[string]Factory),
	}
}

// Register adds the Factory of a backend for an operation.  Registering the
// same pair twice is an error.
func (r *Registry) Register(op, backend string, f Factory) error {

	if op == "" || backend == "" || f == nil {
		return fmt.Errorf("%w: incomplete registration %q/%q", ErrInvalidParameter, op, backend)
	}

	backends, ok := r.ops[op]

	if !ok {
		backends = make(map[string]Factory)
		r.ops[op] = backends
	}

	if _, exists := backends[backend]; exists {
		return fmt.Errorf("operation %q already registered for backend %q", op, backend)
	}

	backends[backend] = f
	return nil
}

// Pair resolves the two bindings to compare.  It fails with
// ErrInvalidParameter if the operation is unknown or either backend does not
// implement it.
func (r *Registry) Pair(op, a, b string) (Pair, error) {

	backends, ok := r.ops[op]

	if !ok {
		return Pair{}, fmt.Errorf("%w: unknown operation %q, choose one of %v",
			ErrInvalidParameter, op, r.Operations())
	}

	if a == b {
		return Pair{}, fmt.Errorf("%w: backend %q compared against itself",
			ErrInvalidParameter, a)
	}

	fa, ok := backends[a]

	if !ok {
		return Pair{}, fmt.Errorf("%w: backend %q does not implement %q",
			ErrInvalidParameter, a, op)
	}

	fb, ok := backends[b]

	if !ok {
		return Pair{}, fmt.Errorf("%w: backend %q does not implement %q",
			ErrInvalidParameter, b, op)
	}

	return Pair{
		Operation: op,
		A:         Binding{Backend: a, Factory: fa},
		B:         Binding{Backend: b, Factory: fb},
	}, nil
}

// Binding returns the binding of one backend for an operation
func (r *Registry) Binding(op, backend string) (Binding, error) {

	f, ok := r.ops[op][backend]

	if !ok {
		return Binding{}, fmt.Errorf("%w: backend %q does not implement %q",
			ErrInvalidParameter, backend, op)
	}

	return Binding{Backend: backend, Factory: f}, nil
}

// Operations returns the sorted names of all registered operations
func (r *Registry) Operations() []string {

	out := make([]string, 0, len(r.ops))

	for op := range r.ops {
		out = append(out, op)
	}

	sort.Strings(out)
	return out
}

// Backends returns the sorted names of all backends that registered anything
func (r *Registry) Backends() []string {

	seen := make(map[string]bool)

	for _, backends := range r.ops {
		for name := range backends {
			seen[name] = true
		}
	}

	out := make([]string, 0, len(seen))

	for name := range seen {
		out = append(out, name)
	}

	sort.Strings(out)
	return out
}

// Has reports if the backend implements the operation
func (r *Registry) Has(op, backend string) bool {
	_, ok := r.ops[op][backend]
	return ok
}
