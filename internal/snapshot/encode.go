package snapshot

import (
	"encoding/json"
	"fmt"
)

// Encode serializes an envelope to its canonical byte form: two-space indent,
// struct fields in declaration order, map keys sorted, trailing newline.
// Identical logical content always produces identical bytes; downstream
// diffing and the publisher's content hash depend on this.
func Encode(env *Envelope) ([]byte, error) {
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return append(data, '\n'), nil
}
