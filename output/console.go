package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"ipsniffer/scanner"
)

// Format selects how a report is rendered.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported names.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat maps a user supplied name onto a Format. Matching ignores case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w %q (want text, json or yaml)", ErrUnknownFormat, s)
	}
}

// document is the serialized shape of a report.
type document struct {
	ID          string    `json:"id" yaml:"id"`
	Target      string    `json:"target" yaml:"target"`
	Workers     int       `json:"workers" yaml:"workers"`
	TimeoutMS   int64     `json:"timeout_ms" yaml:"timeout_ms"`
	PortsProbed int       `json:"ports_probed" yaml:"ports_probed"`
	OpenPorts   []uint16  `json:"open_ports" yaml:"open_ports"`
	Count       int       `json:"count" yaml:"count"`
	StartedAt   time.Time `json:"started_at" yaml:"started_at"`
	DurationMS  int64     `json:"duration_ms" yaml:"duration_ms"`
}

func newDocument(r *scanner.Report) document {
	open := r.Open
	if open == nil {
		open = []uint16{}
	}
	return document{
		ID:          r.ID.String(),
		Target:      r.Target.String(),
		Workers:     r.Workers,
		TimeoutMS:   r.Timeout.Milliseconds(),
		PortsProbed: r.Probed,
		OpenPorts:   open,
		Count:       len(open),
		StartedAt:   r.StartedAt.UTC(),
		DurationMS:  r.Duration.Milliseconds(),
	}
}

// Render writes a finished report to w.
// The text form prints one "<port> is open" line per port followed by a summary.
func Render(w io.Writer, r *scanner.Report, f Format) error {
	switch f {
	case FormatText:
		return renderText(w, r)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newDocument(r))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newDocument(r)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, f)
	}
}

func renderText(w io.Writer, r *scanner.Report) error {
	var b strings.Builder
	for _, p := range r.Open {
		fmt.Fprintf(&b, "%d is open\n", p)
	}
	noun := "ports"
	if r.Count() == 1 {
		noun = "port"
	}
	fmt.Fprintf(&b, "%d open %s on %s (%d probed, %d workers, %s)\n",
		r.Count(), noun, r.Target, r.Probed, r.Workers, r.Duration.Round(time.Millisecond))

	_, err := io.WriteString(w, b.String())
	return err
}
