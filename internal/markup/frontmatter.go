package markup

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var fmDelim = []byte("---")

// FrontMatter is the YAML header of a post.
type FrontMatter struct {
	Title      string            `yaml:"title"`
	Date       Date              `yaml:"date"`
	Summary    string            `yaml:"summary"`
	Tags       []string          `yaml:"tags"`
	Draft      bool              `yaml:"draft"`
	References map[string]string `yaml:"references"`
	Citation   *Citation         `yaml:"citation"`
}

// Citation describes how a post should be cited.
type Citation struct {
	Author    string `yaml:"author"`
	Title     string `yaml:"title"`
	Year      int    `yaml:"year"`
	URL       string `yaml:"url"`
	DOI       string `yaml:"doi"`
	BibtexKey string `yaml:"bibtex_key"`
}

// Date is a calendar date that accepts "2006-01-02" and RFC 3339 values.
type Date struct {
	time.Time
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05", "January 2, 2006"}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	s := strings.TrimSpace(value.Value)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("line %d: unrecognized date %q", value.Line, s)
}

// String formats the date for display.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("January 2, 2006")
}

// SplitFrontMatter separates a leading "---" fenced YAML block from the
// body. Sources without one are returned unchanged with a nil header.
func SplitFrontMatter(src []byte) (header, body []byte) {
	rest := bytes.TrimPrefix(src, []byte("\xef\xbb\xbf"))
	if !bytes.HasPrefix(rest, fmDelim) {
		return nil, src
	}
	first := bytes.IndexByte(rest, '\n')
	if first < 0 || len(bytes.TrimSpace(rest[:first])) != len(fmDelim) {
		return nil, src
	}
	pos := first + 1
	for pos <= len(rest) {
		end := bytes.IndexByte(rest[pos:], '\n')
		var line []byte
		if end < 0 {
			line = rest[pos:]
		} else {
			line = rest[pos : pos+end]
		}
		if bytes.Equal(bytes.TrimRight(line, " \t\r"), fmDelim) {
			header = rest[first+1 : pos]
			if end < 0 {
				return header, nil
			}
			return header, rest[pos+end+1:]
		}
		if end < 0 {
			break
		}
		pos += end + 1
	}
	return nil, src
}

// ParseFrontMatter splits and decodes the front matter of src.
func ParseFrontMatter(src []byte) (FrontMatter, []byte, error) {
	var fm FrontMatter
	header, body := SplitFrontMatter(src)
	if header == nil {
		return fm, body, nil
	}
	if err := yaml.Unmarshal(header, &fm); err != nil {
		return fm, body, fmt.Errorf("front matter: %w", err)
	}
	return fm, body, nil
}
