package catalog

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// HexUint32 marshals to YAML as a 0x-prefixed hex scalar, per the fingerprint
// fields in the catalog and match-stream schemas.
type HexUint32 uint32

func (h HexUint32) MarshalYAML() (interface{}, error) {
	return fmt.Sprintf("0x%08x", uint32(h)), nil
}

func (h *HexUint32) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	var v uint32
	if _, err := fmt.Sscanf(s, "0x%x", &v); err != nil {
		return fmt.Errorf("invalid hex uint32 %q: %w", s, err)
	}
	*h = HexUint32(v)
	return nil
}

// HexUint64 marshals to YAML as a 0x-prefixed hex scalar, used for byte
// offsets in the match stream.
type HexUint64 uint64

func (h HexUint64) MarshalYAML() (interface{}, error) {
	return fmt.Sprintf("0x%x", uint64(h)), nil
}

func (h *HexUint64) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	var v uint64
	if _, err := fmt.Sscanf(s, "0x%x", &v); err != nil {
		return fmt.Errorf("invalid hex uint64 %q: %w", s, err)
	}
	*h = HexUint64(v)
	return nil
}
