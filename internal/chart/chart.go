// Package chart renders small declarative charts (grouped bar, line,
// scatter, radar, stacked area) from static data to inline SVG.
package chart

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidChart wraps every validation failure of a chart spec.
var ErrInvalidChart = errors.New("invalid chart")

// Kind selects the chart renderer.
type Kind string

const (
	KindBar     Kind = "bar"
	KindLine    Kind = "line"
	KindScatter Kind = "scatter"
	KindRadar   Kind = "radar"
	KindArea    Kind = "area"
)

const (
	DefaultWidth  = 640
	DefaultHeight = 400
)

// Palette is applied in order to series without an explicit color.
var Palette = []string{"#10b981", "#ef4444", "#f59e0b", "#60a5fa", "#8b5cf6", "#9ca3af"}

// Axis configures one axis. Nil bounds are derived from the data.
type Axis struct {
	Label string   `yaml:"label"`
	Min   *float64 `yaml:"min"`
	Max   *float64 `yaml:"max"`
}

// Series is one named dataset. Bar, radar and area charts use Values (one
// per category); line and scatter charts use Points as [x, y] pairs.
type Series struct {
	Name   string      `yaml:"name"`
	Color  string      `yaml:"color"`
	Values []float64   `yaml:"values"`
	Points [][]float64 `yaml:"points"`
	Labels []string    `yaml:"labels"`
}

// Chart is a parsed chart spec.
type Chart struct {
	Kind       Kind     `yaml:"kind"`
	Title      string   `yaml:"title"`
	Width      int      `yaml:"width"`
	Height     int      `yaml:"height"`
	X          Axis     `yaml:"x"`
	Y          Axis     `yaml:"y"`
	Categories []string `yaml:"categories"`
	Series     []Series `yaml:"series"`
	Data       string   `yaml:"data"` // CSV file in the content filesystem
}

// Parse decodes a YAML chart spec. When the spec names a data file it is
// read from data, which may be nil if no spec references one.
func Parse(src []byte, data fs.FS) (*Chart, error) {
	var c Chart
	if err := yaml.Unmarshal(src, &c); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidChart, err)
	}
	if c.Data != "" {
		if data == nil {
			return nil, fmt.Errorf("%w: data file %q but no data filesystem", ErrInvalidChart, c.Data)
		}
		f, err := data.Open(c.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %s", ErrInvalidChart, c.Data, err)
		}
		err = loadCSV(&c, f)
		f.Close()
		if err != nil {
			return nil, err
		}
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Chart) applyDefaults() {
	c.Kind = Kind(strings.ToLower(strings.TrimSpace(string(c.Kind))))
	if c.Width <= 0 {
		c.Width = DefaultWidth
	}
	if c.Height <= 0 {
		c.Height = DefaultHeight
	}
	for i := range c.Series {
		if c.Series[i].Color == "" {
			c.Series[i].Color = Palette[i%len(Palette)]
		}
		if c.Series[i].Name == "" {
			c.Series[i].Name = fmt.Sprintf("Series %d", i+1)
		}
	}
}

// Validate checks that the data fits the chart kind.
func (c *Chart) Validate() error {
	if len(c.Series) == 0 {
		return fmt.Errorf("%w: no series", ErrInvalidChart)
	}
	switch c.Kind {
	case KindBar, KindArea, KindRadar:
		if len(c.Categories) == 0 {
			return fmt.Errorf("%w: %s chart needs categories", ErrInvalidChart, c.Kind)
		}
		if c.Kind == KindRadar && len(c.Categories) < 3 {
			return fmt.Errorf("%w: radar chart needs at least 3 categories, got %d", ErrInvalidChart, len(c.Categories))
		}
		for _, s := range c.Series {
			if len(s.Values) != len(c.Categories) {
				return fmt.Errorf("%w: series %q has %d values for %d categories",
					ErrInvalidChart, s.Name, len(s.Values), len(c.Categories))
			}
			for _, v := range s.Values {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return fmt.Errorf("%w: series %q has a non-finite value", ErrInvalidChart, s.Name)
				}
				if c.Kind != KindBar && v < 0 {
					return fmt.Errorf("%w: %s chart series %q has negative value %g", ErrInvalidChart, c.Kind, s.Name, v)
				}
			}
		}
	case KindLine, KindScatter:
		for _, s := range c.Series {
			if len(s.Points) == 0 {
				return fmt.Errorf("%w: series %q has no points", ErrInvalidChart, s.Name)
			}
			for i, p := range s.Points {
				if len(p) != 2 {
					return fmt.Errorf("%w: series %q point %d is not an [x, y] pair", ErrInvalidChart, s.Name, i)
				}
			}
			if len(s.Labels) != 0 && len(s.Labels) != len(s.Points) {
				return fmt.Errorf("%w: series %q has %d labels for %d points",
					ErrInvalidChart, s.Name, len(s.Labels), len(s.Points))
			}
		}
	case "":
		return fmt.Errorf("%w: kind is required", ErrInvalidChart)
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidChart, c.Kind)
	}
	return nil
}
