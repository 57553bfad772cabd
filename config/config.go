// Package config holds the settings of a benchmark run.  Settings start from
// defaults, are overridden by an optional YAML file and finally by the command
// line flags the user set.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	morphbench "github.com/swdee/go-morphbench"
	"github.com/swdee/go-morphbench/preprocess"
)

// DefaultPath is the configuration file read when none is given
const DefaultPath = "etc/bench.yaml"

// Timing configures the measurement of each sweep point
type Timing struct {
	// Number fixes the calls per batch, zero calibrates it per point
	Number int `yaml:"number" validate:"gte=0"`
	// Repeat is the number of timed rounds per point
	Repeat int `yaml:"repeat" validate:"gte=1"`
	// Threshold is the minimum batch duration when calibrating
	Threshold time.Duration `yaml:"threshold" validate:"gte=0"`
	// Budget bounds the duration of one sweep, zero is unbounded
	Budget time.Duration `yaml:"budget" validate:"gte=0"`
	// GC runs the garbage collector before each measurement
	GC bool `yaml:"gc"`
}

// Sweep configures the image size and structuring element sweeps
type Sweep struct {
	MinImageSize int    `yaml:"min_image_size" validate:"gte=1"`
	MaxImageSize int    `yaml:"max_image_size" validate:"gtefield=MinImageSize"`
	Growth       string `yaml:"growth" validate:"oneof=g a geometric arithmetic"`
	MaxRadius    int    `yaml:"max_radius" validate:"gte=1"`
	// Axes lists the sweeps to run, in order
	Axes []string `yaml:"axes" validate:"min=1,dive,oneof=szim szse"`
}

// Mosaic configures the mosaic sweep
type Mosaic struct {
	// Size is the side images are resized to when Resize is set
	Size   int  `yaml:"size" validate:"gte=1"`
	Resize bool `yaml:"resize"`
	// Start is the initial tiles per side, doubled each round
	Start  int `yaml:"start" validate:"gte=1"`
	Rounds int `yaml:"rounds" validate:"gte=1"`
	// Which times both backends, or only backend a or b
	Which string `yaml:"which" validate:"oneof=both a b"`
}

// Config is the complete configuration of a run.  It is passed by value and
// not modified once loaded.
type Config struct {
	Image     string `yaml:"image" validate:"required"`
	Operation string `yaml:"operation" validate:"required"`
	BackendA  string `yaml:"backend_a" validate:"required"`
	BackendB  string `yaml:"backend_b" validate:"required,nefield=BackendA"`
	// Binary treats the image as two valued, it is also detected from the
	// pixels
	Binary bool `yaml:"binary"`
	// Shape of the structuring element, cross or square
	Shape string `yaml:"shape" validate:"oneof=cross c square s box"`
	// Radius of the structuring element used by the image size sweep
	Radius int `yaml:"radius" validate:"gte=0"`
	// Arg is the area of the area opening in pixels of the source image
	Arg float64 `yaml:"arg" validate:"gte=0"`
	// H is the dynamic of the h-maxima and h-minima
	H int `yaml:"h" validate:"gte=1,lte=255"`
	// OutputDir receives the tables, the short host name when empty
	OutputDir string `yaml:"output_dir"`
	// CPUs pins the timing thread to these cores when not empty
	CPUs []int `yaml:"cpus" validate:"dive,gte=0"`

	Timing    Timing                    `yaml:"timing"`
	Sweep     Sweep                     `yaml:"sweep"`
	Mosaic    Mosaic                    `yaml:"mosaic"`
	Watershed morphbench.WatershedTable `yaml:"watershed"`
}

// Default returns the built in configuration
func Default() Config {
	return Config{
		Image:     "images/lena.png",
		Operation: morphbench.OpErode,
		BackendA:  "opencv",
		BackendB:  "native",
		Shape:     "cross",
		Radius:    1,
		Arg:       morphbench.DefaultArea,
		H:         morphbench.DefaultH,
		Timing: Timing{
			Number:    0,
			Repeat:    7,
			Threshold: morphbench.DefaultThreshold,
		},
		Sweep: Sweep{
			MinImageSize: 256,
			MaxImageSize: 4096,
			Growth:       "g",
			MaxRadius:    8,
			Axes:         []string{string(morphbench.AxisImageSize), string(morphbench.AxisStructElement)},
		},
		Mosaic: Mosaic{
			Size:   8192,
			Start:  1,
			Rounds: 1,
			Which:  morphbench.WhichBoth,
		},
		Watershed: morphbench.DefaultWatershedTable(),
	}
}

// Load reads the YAML file at path over the defaults.  A missing file is not
// an error and leaves the defaults unchanged.
func Load(path string) (Config, error) {

	cfg := Default()

	data, err := os.ReadFile(path)

	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	if err != nil {
		return cfg, fmt.Errorf("failed to read the config file %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: config file %s: %w", morphbench.ErrInvalidParameter, path, err)
	}

	return cfg, nil
}

// Save writes the configuration to path as YAML, creating its directory
func Save(path string, cfg Config) error {

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create the config directory %w", err)
	}

	data, err := yaml.Marshal(cfg)

	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

var validate = validator.New()

// Validate checks every field, failures wrap ErrInvalidParameter
func (c Config) Validate() error {

	err := validate.Struct(c)

	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors

	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", morphbench.ErrInvalidParameter, err)
	}

	msgs := make([]string, 0, len(verrs))

	for _, fe := range verrs {
		msg := fmt.Sprintf("%s fails %q", fe.Namespace(), fe.Tag())

		if fe.Param() != "" {
			msg += " " + fe.Param()
		}

		msgs = append(msgs, msg)
	}

	return fmt.Errorf("%w: %s", morphbench.ErrInvalidParameter, strings.Join(msgs, "; "))
}

// HarnessOptions returns the timing options of the harness
func (c Config) HarnessOptions() morphbench.Options {
	return morphbench.Options{
		Number:         c.Timing.Number,
		Repeat:         c.Timing.Repeat,
		Threshold:      c.Timing.Threshold,
		Budget:         c.Timing.Budget,
		CollectGarbage: c.Timing.GC,
	}
}

// StructElement returns the base structuring element
func (c Config) StructElement() (preprocess.StructElement, error) {

	shape, err := preprocess.ParseShape(c.Shape)

	if err != nil {
		return preprocess.StructElement{}, fmt.Errorf("%w: %w", morphbench.ErrInvalidParameter, err)
	}

	return preprocess.NewStructElement(shape, c.Radius), nil
}

// Params returns the base operation parameters for the configured image
func (c Config) Params() (morphbench.Params, error) {

	se, err := c.StructElement()

	if err != nil {
		return morphbench.Params{}, err
	}

	return morphbench.Params{
		SE:        se,
		Arg:       c.Arg,
		H:         uint8(c.H),
		Watershed: c.Watershed.For(c.Image),
	}, nil
}

// Output returns the output directory, the short host name by default
func (c Config) Output() string {

	if c.OutputDir != "" {
		return c.OutputDir
	}

	host, err := os.Hostname()

	if err != nil || host == "" {
		return "results"
	}

	short, _, _ := strings.Cut(host, ".")
	return short
}
