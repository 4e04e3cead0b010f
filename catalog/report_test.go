package catalog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportWriterProducesDocumentStream(t *testing.T) {
	var buf bytes.Buffer
	rw := NewReportWriter(&buf)

	assert.NoError(t, rw.Write(MatchReport{
		Name:   "foo",
		Offset: 0,
		Size:   32,
		Symbols: map[string]HexUint64{
			"a": 0,
			"b": 16,
		},
	}))
	assert.NoError(t, rw.Write(MatchReport{
		Name:   "foo",
		Offset: 128,
		Size:   32,
		Symbols: map[string]HexUint64{
			"a": 128,
			"b": 144,
		},
	}))
	assert.NoError(t, rw.Close())

	assert.GreaterOrEqual(t, strings.Count(buf.String(), "---"), 1)

	reports, err := ReadReports(bytes.NewReader(buf.Bytes()))
	assert.NoError(t, err)
	assert.Len(t, reports, 2)
	assert.Equal(t, "foo", reports[0].Name)
	assert.Equal(t, HexUint64(0), reports[0].Offset)
	assert.Equal(t, HexUint64(128), reports[1].Offset)
	assert.Equal(t, HexUint64(16), reports[0].Symbols["b"])
}

func TestReadReportsEmptyStream(t *testing.T) {
	reports, err := ReadReports(bytes.NewReader(nil))
	assert.NoError(t, err)
	assert.Empty(t, reports)
}
