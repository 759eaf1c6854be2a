package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Report is a serializable view of collected issues.
type Report struct {
	Issues []Issue `json:"issues" yaml:"issues" msgpack:"issues"`
}

// NewReport returns a report over the issues of the given suppliers.
func NewReport(suppliers ...Supplier) *Report {
	sink := NewSink()
	sink.Pull(suppliers...)
	return &Report{Issues: sink.Issues()}
}

// HasIssues returns true if the report is not empty.
func (r *Report) HasIssues() bool {
	return len(r.Issues) > 0
}

// HasFatal returns true if any issue is fatal under p.
func (r *Report) HasFatal(p Policy) bool {
	return p.Check(r.Issues) != nil
}

// String returns a human readable listing.
func (r *Report) String() string {
	if len(r.Issues) == 0 {
		return "No lint issues"
	}
	var sb strings.Builder
	sb.WriteString("Issues:\n")
	for _, i := range r.Issues {
		sb.WriteString("  - ")
		sb.WriteString(i.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// Format selects a report encoding.
type Format string

// Supported report encodings.
const (
	FormatText    Format = "text"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatMsgpack Format = "msgpack"
)

// Encode writes the report to w in the given format.
func (r *Report) Encode(w io.Writer, f Format) error {
	switch f {
	case FormatText, "":
		_, err := io.WriteString(w, r.String())
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(r)
	default:
		return fmt.Errorf("lint: unknown report format %q", f)
	}
}

// Decode reads a report previously written by Encode.
func Decode(rd io.Reader, f Format) (*Report, error) {
	r := &Report{}
	var err error
	switch f {
	case FormatJSON:
		err = json.NewDecoder(rd).Decode(r)
	case FormatYAML:
		err = yaml.NewDecoder(rd).Decode(r)
	case FormatMsgpack:
		err = msgpack.NewDecoder(rd).Decode(r)
	default:
		return nil, fmt.Errorf("lint: cannot decode report format %q", f)
	}
	if err != nil {
		return nil, fmt.Errorf("lint: decode %s report: %w", f, err)
	}
	return r, nil
}
