package proto

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Snapshot is the on-disk envelope for a prototype tree.
type Snapshot struct {
	Version uint8      `cbor:"1,keyasint"`
	Main    *Prototype `cbor:"2,keyasint"`
}

// SnapshotVersion is the current snapshot format version.
const SnapshotVersion uint8 = 1

// cborEncMode uses canonical mode for deterministic encoding: equal
// prototype trees always produce identical bytes. Floats are written as
// raw float64 so -0.0 and NaN payloads survive the round trip.
var cborEncMode cbor.EncMode

func init() {
	opts := cbor.CanonicalEncOptions()
	opts.ShortestFloat = cbor.ShortestFloatNone
	opts.NaNConvert = cbor.NaNConvertNone
	opts.InfConvert = cbor.InfConvertNone
	em, err := opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("proto: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalSnapshot serializes a prototype tree to canonical CBOR bytes.
func MarshalSnapshot(p *Prototype) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("proto: marshal snapshot: nil prototype")
	}
	return cborEncMode.Marshal(Snapshot{Version: SnapshotVersion, Main: p})
}

// UnmarshalSnapshot deserializes a prototype tree from CBOR bytes.
func UnmarshalSnapshot(data []byte) (*Prototype, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("proto: unmarshal snapshot: %w", err)
	}
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("proto: unmarshal snapshot: unsupported version %d", s.Version)
	}
	if s.Main == nil {
		return nil, fmt.Errorf("proto: unmarshal snapshot: missing main prototype")
	}
	return s.Main, nil
}

// Fingerprint returns the canonical CBOR encoding of p alone, without
// the snapshot envelope. Equal trees have equal fingerprints.
func Fingerprint(p *Prototype) ([]byte, error) {
	return cborEncMode.Marshal(p)
}
