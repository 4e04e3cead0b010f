package catalog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleCatalog() *Catalog {
	return &Catalog{
		Version:   Version,
		Generator: "mipsmatch",
		Segments: []SegmentRecord{
			{
				Name:        "foo",
				Fingerprint: 0xDEADBEEF,
				Size:        32,
				Symbols: []SymbolRecord{
					{Name: "a", Offset: 0, Size: 16, Fingerprint: 0x1},
					{Name: "b", Offset: 16, Size: 16, Fingerprint: 0x2},
				},
			},
		},
	}
}

func TestCatalogRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	c := sampleCatalog()
	assert.NoError(t, Write(&buf, c))
	assert.Contains(t, buf.String(), "0xdeadbeef")

	got, err := Load(&buf)
	assert.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestLoadRejectsWrongVersion(t *testing.T) {
	r := strings.NewReader("version: 99\nsegments: []\n")
	_, err := Load(r)
	assert.Error(t, err)
	var verr *VersionError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, uint32(99), verr.Got)
}

func TestValidateDetectsGap(t *testing.T) {
	c := sampleCatalog()
	c.Segments[0].Symbols[1].Offset = 20 // gap between symbol a and b
	assert.Error(t, c.Validate())
}

func TestValidateDetectsSizeMismatch(t *testing.T) {
	c := sampleCatalog()
	c.Segments[0].Size = 31 // doesn't match sum of symbol sizes
	assert.Error(t, c.Validate())
}

func TestValidateAcceptsContiguousOffsets(t *testing.T) {
	c := sampleCatalog()
	assert.NoError(t, c.Validate())
}
