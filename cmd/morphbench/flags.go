package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/swdee/go-morphbench/config"
)

type stringFlag struct {
	name, short, usage string
	field              func(*config.Config) *string
}

type intFlag struct {
	name, usage string
	field       func(*config.Config) *int
}

type floatFlag struct {
	name, usage string
	field       func(*config.Config) *float64
}

type boolFlag struct {
	name, usage string
	field       func(*config.Config) *bool
}

type durationFlag struct {
	name, usage string
	field       func(*config.Config) *time.Duration
}

type stringsFlag struct {
	name, usage string
	field       func(*config.Config) *[]string
}

type intsFlag struct {
	name, usage string
	field       func(*config.Config) *[]int
}

// flagTable maps command line flags onto configuration fields.  Flags show the
// built in defaults and only override the loaded configuration when set.
type flagTable struct {
	strings   []stringFlag
	ints      []intFlag
	floats    []floatFlag
	bools     []boolFlag
	durations []durationFlag
	stringss  []stringsFlag
	intss     []intsFlag
}

// merge returns a table holding the flags of t and o
func (t flagTable) merge(o flagTable) flagTable {
	return flagTable{
		strings:   append(append([]stringFlag{}, t.strings...), o.strings...),
		ints:      append(append([]intFlag{}, t.ints...), o.ints...),
		floats:    append(append([]floatFlag{}, t.floats...), o.floats...),
		bools:     append(append([]boolFlag{}, t.bools...), o.bools...),
		durations: append(append([]durationFlag{}, t.durations...), o.durations...),
		stringss:  append(append([]stringsFlag{}, t.stringss...), o.stringss...),
		intss:     append(append([]intsFlag{}, t.intss...), o.intss...),
	}
}

// define adds the flags to cmd
func (t flagTable) define(cmd *cobra.Command) {

	def := config.Default()
	f := cmd.Flags()

	for _, s := range t.strings {
		f.StringP(s.name, s.short, *s.field(&def), s.usage)
	}

	for _, s := range t.ints {
		f.Int(s.name, *s.field(&def), s.usage)
	}

	for _, s := range t.floats {
		f.Float64(s.name, *s.field(&def), s.usage)
	}

	for _, s := range t.bools {
		f.Bool(s.name, *s.field(&def), s.usage)
	}

	for _, s := range t.durations {
		f.Duration(s.name, *s.field(&def), s.usage)
	}

	for _, s := range t.stringss {
		f.StringSlice(s.name, *s.field(&def), s.usage)
	}

	for _, s := range t.intss {
		f.IntSlice(s.name, *s.field(&def), s.usage)
	}
}

// apply copies the flags the user set into cfg
func (t flagTable) apply(cmd *cobra.Command, cfg *config.Config) error {

	f := cmd.Flags()
	var err error

	for _, s := range t.strings {
		if f.Changed(s.name) {
			if *s.field(cfg), err = f.GetString(s.name); err != nil {
				return err
			}
		}
	}

	for _, s := range t.ints {
		if f.Changed(s.name) {
			if *s.field(cfg), err = f.GetInt(s.name); err != nil {
				return err
			}
		}
	}

	for _, s := range t.floats {
		if f.Changed(s.name) {
			if *s.field(cfg), err = f.GetFloat64(s.name); err != nil {
				return err
			}
		}
	}

	for _, s := range t.bools {
		if f.Changed(s.name) {
			if *s.field(cfg), err = f.GetBool(s.name); err != nil {
				return err
			}
		}
	}

	for _, s := range t.durations {
		if f.Changed(s.name) {
			if *s.field(cfg), err = f.GetDuration(s.name); err != nil {
				return err
			}
		}
	}

	for _, s := range t.stringss {
		if f.Changed(s.name) {
			if *s.field(cfg), err = f.GetStringSlice(s.name); err != nil {
				return err
			}
		}
	}

	for _, s := range t.intss {
		if f.Changed(s.name) {
			if *s.field(cfg), err = f.GetIntSlice(s.name); err != nil {
				return err
			}
		}
	}

	return nil
}

// benchFlags are shared by the sweep and mosaic commands
var benchFlags = flagTable{
	strings: []stringFlag{
		{"function", "f", "Operation to benchmark", func(c *config.Config) *string { return &c.Operation }},
		{"backend-a", "a", "Reference backend", func(c *config.Config) *string { return &c.BackendA }},
		{"backend-b", "b", "Backend compared to the reference", func(c *config.Config) *string { return &c.BackendB }},
		{"shape", "", "Structuring element shape, cross (c) or square (s, box)", func(c *config.Config) *string { return &c.Shape }},
		{"out", "o", "Output directory (default is the short host name)", func(c *config.Config) *string { return &c.OutputDir }},
	},
	ints: []intFlag{
		{"nb", "Calls per timed batch, 0 calibrates the batch size", func(c *config.Config) *int { return &c.Timing.Number }},
		{"repeat", "Timed rounds per point", func(c *config.Config) *int { return &c.Timing.Repeat }},
		{"radius", "Structuring element radius", func(c *config.Config) *int { return &c.Radius }},
		{"h", "Dynamic of hmaxima and hminima", func(c *config.Config) *int { return &c.H }},
	},
	floats: []floatFlag{
		{"arg", "Area opening threshold in pixels of the source image, scaled with the image", func(c *config.Config) *float64 { return &c.Arg }},
	},
	bools: []boolFlag{
		{"binary", "Image is binary", func(c *config.Config) *bool { return &c.Binary }},
		{"gc", "Run the garbage collector before each measurement", func(c *config.Config) *bool { return &c.Timing.GC }},
	},
	durations: []durationFlag{
		{"threshold", "Minimum duration of a calibrated batch", func(c *config.Config) *time.Duration { return &c.Timing.Threshold }},
		{"budget", "Maximum duration of one sweep, 0 is unbounded", func(c *config.Config) *time.Duration { return &c.Timing.Budget }},
	},
	intss: []intsFlag{
		{"cpus", "Pin the benchmark to these CPU cores", func(c *config.Config) *[]int { return &c.CPUs }},
	},
}

// loadConfig reads the configuration file, applies the flags of t the user
// set and validates the result
func loadConfig(cmd *cobra.Command, t flagTable) (config.Config, error) {

	path := cmd.Flag("config").Value.String()

	cfg, err := config.Load(path)

	if err != nil {
		return cfg, err
	}

	if err := t.apply(cmd, &cfg); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	if save, _ := cmd.Flags().GetBool("save-config"); save {
		if err := config.Save(path, cfg); err != nil {
			return cfg, fmt.Errorf("error saving configuration: %w", err)
		}

		logger.Info("configuration saved", "file", path)
	}

	logger.Debug("configuration loaded", "file", path, "operation", cfg.Operation,
		"a", cfg.BackendA, "b", cfg.BackendB)

	return cfg, nil
}
