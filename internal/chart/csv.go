package chart

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// loadCSV fills the chart's categories and series from a CSV table. The
// first row is the header; the first column holds categories (or x values
// for line and scatter charts) and each further column becomes a series.
func loadCSV(c *Chart, r io.Reader) error {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	records, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("%w: parse csv: %s", ErrInvalidChart, err)
	}
	if len(records) < 2 {
		return fmt.Errorf("%w: csv %s needs a header and at least one row", ErrInvalidChart, c.Data)
	}

	headers := records[0]
	if len(headers) < 2 {
		return fmt.Errorf("%w: csv %s needs at least two columns", ErrInvalidChart, c.Data)
	}
	rows := records[1:]

	// Series declared in YAML keep their colors when names match a column.
	declared := make(map[string]Series, len(c.Series))
	for _, s := range c.Series {
		declared[s.Name] = s
	}

	pointKind := c.Kind == KindLine || c.Kind == KindScatter
	series := make([]Series, len(headers)-1)
	for j := range series {
		name := strings.TrimSpace(headers[j+1])
		series[j] = Series{Name: name, Color: declared[name].Color}
	}
	categories := make([]string, 0, len(rows))

	for i, row := range rows {
		if len(row) != len(headers) {
			return fmt.Errorf("%w: csv row %d has %d fields, want %d", ErrInvalidChart, i+2, len(row), len(headers))
		}
		key := strings.TrimSpace(row[0])
		var x float64
		if pointKind {
			x, err = strconv.ParseFloat(key, 64)
			if err != nil {
				return fmt.Errorf("%w: csv row %d: x value %q: %s", ErrInvalidChart, i+2, key, err)
			}
		} else {
			categories = append(categories, key)
		}
		for j := 1; j < len(row); j++ {
			cell := strings.TrimSpace(row[j])
			if cell == "" && pointKind {
				continue // gaps are allowed in point series
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return fmt.Errorf("%w: csv row %d column %q: %s", ErrInvalidChart, i+2, headers[j], err)
			}
			if pointKind {
				series[j-1].Points = append(series[j-1].Points, []float64{x, v})
			} else {
				series[j-1].Values = append(series[j-1].Values, v)
			}
		}
	}

	if !pointKind {
		c.Categories = categories
	}
	c.Series = series
	return nil
}
