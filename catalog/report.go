package catalog

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// MatchReport is one segment hit emitted by the scanner.
type MatchReport struct {
	Name    string               `yaml:"name"`
	Offset  HexUint64            `yaml:"offset"`
	Size    uint32               `yaml:"size"`
	Symbols map[string]HexUint64 `yaml:"symbols"`
}

// ReportWriter emits match reports as a `---`-separated YAML document
// stream, one document per report, in the order Write is called.
type ReportWriter struct {
	enc *yaml.Encoder
}

func NewReportWriter(w io.Writer) *ReportWriter {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	return &ReportWriter{enc: enc}
}

func (rw *ReportWriter) Write(report MatchReport) error {
	if err := rw.enc.Encode(report); err != nil {
		return fmt.Errorf("encoding match report: %w", err)
	}
	return nil
}

func (rw *ReportWriter) Close() error {
	return rw.enc.Close()
}

// ReadReports decodes every document in a match stream, in order.
func ReadReports(r io.Reader) ([]MatchReport, error) {
	dec := yaml.NewDecoder(r)
	var reports []MatchReport
	for {
		var report MatchReport
		err := dec.Decode(&report)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding match report: %w", err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}
