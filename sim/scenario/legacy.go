package scenario

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// maxPrealloc caps slice capacity taken from counts in the file; the
// counts are untrusted and append grows past it.
const maxPrealloc = 1024

// ParseLegacy reads the plain-text scenario layout:
//
//	site_delay
//	dt
//	run_time
//	run_number
//	n
//	<site_id> <rate>                  (n lines)
//	m
//	<site_a> <site_b> <travel_time>   (m lines)
//
// Blank lines are skipped. Values are not range-checked; call Validate.
func ParseLegacy(r io.Reader) (*Scenario, error) {
	p := &legacyParser{scanner: bufio.NewScanner(r)}
	s := &Scenario{}

	var err error
	if s.SiteDelay, err = p.readFloat("site_delay"); err != nil {
		return nil, err
	}
	if s.DT, err = p.readFloat("dt"); err != nil {
		return nil, err
	}
	if s.RunTime, err = p.readFloat("run_time"); err != nil {
		return nil, err
	}
	if s.RunNumber, err = p.readInt("run_number"); err != nil {
		return nil, err
	}

	n, err := p.readCount("site count")
	if err != nil {
		return nil, err
	}
	s.Sites = make([]SiteSpec, 0, min(n, maxPrealloc))
	for i := 0; i < n; i++ {
		fields, err := p.readFields(fmt.Sprintf("site %d", i), 2)
		if err != nil {
			return nil, err
		}
		id, err := p.parseInt(fields[0], "site id")
		if err != nil {
			return nil, err
		}
		rate, err := p.parseFloat(fields[1], "site rate")
		if err != nil {
			return nil, err
		}
		s.Sites = append(s.Sites, SiteSpec{ID: id, Rate: rate})
	}

	m, err := p.readCount("road count")
	if err != nil {
		return nil, err
	}
	s.Roads = make([]RoadSpec, 0, min(m, maxPrealloc))
	for i := 0; i < m; i++ {
		fields, err := p.readFields(fmt.Sprintf("road %d", i), 3)
		if err != nil {
			return nil, err
		}
		from, err := p.parseInt(fields[0], "road endpoint")
		if err != nil {
			return nil, err
		}
		to, err := p.parseInt(fields[1], "road endpoint")
		if err != nil {
			return nil, err
		}
		tt, err := p.parseFloat(fields[2], "travel time")
		if err != nil {
			return nil, err
		}
		s.Roads = append(s.Roads, RoadSpec{From: from, To: to, TravelTime: tt})
	}
	if err := p.scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading legacy scenario: %w", err)
	}
	return s, nil
}

// LoadLegacy reads a legacy scenario file. The scenario is named after
// the file.
func LoadLegacy(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading legacy scenario: %w", err)
	}
	defer f.Close()
	s, err := ParseLegacy(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return s, nil
}

type legacyParser struct {
	scanner *bufio.Scanner
	line    int
}

// next returns the next non-blank line.
func (p *legacyParser) next(what string) (string, error) {
	for p.scanner.Scan() {
		p.line++
		if text := strings.TrimSpace(p.scanner.Text()); text != "" {
			return text, nil
		}
	}
	if err := p.scanner.Err(); err != nil {
		return "", fmt.Errorf("reading %s: %w", what, err)
	}
	return "", fmt.Errorf("line %d: unexpected end of input, expected %s", p.line+1, what)
}

func (p *legacyParser) readFields(what string, want int) ([]string, error) {
	text, err := p.next(what)
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(text)
	if len(fields) < want {
		return nil, fmt.Errorf("line %d: %s: want %d fields, got %d", p.line, what, want, len(fields))
	}
	return fields, nil
}

func (p *legacyParser) readFloat(what string) (float64, error) {
	text, err := p.next(what)
	if err != nil {
		return 0, err
	}
	return p.parseFloat(text, what)
}

func (p *legacyParser) readInt(what string) (int, error) {
	text, err := p.next(what)
	if err != nil {
		return 0, err
	}
	v, err := p.parseInt(text, what)
	return int(v), err
}

func (p *legacyParser) readCount(what string) (int, error) {
	n, err := p.readInt(what)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("line %d: %s must be non-negative, got %d", p.line, what, n)
	}
	return n, nil
}

func (p *legacyParser) parseFloat(text, what string) (float64, error) {
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: %s: %w", p.line, what, err)
	}
	return v, nil
}

func (p *legacyParser) parseInt(text, what string) (int64, error) {
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: %s: %w", p.line, what, err)
	}
	return v, nil
}
