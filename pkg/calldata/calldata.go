// Package calldata encodes dispatcher call arguments with msgpack.
package calldata

import (
	"bytes"

	"github.com/fox-one/msgpack"
)

// Encode packs values into a single msgpack body.
func Encode(values ...interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	for _, v := range values {
		if err := enc.Encode(v); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// Scan unpacks a body produced by Encode into the given pointers, in order.
func Scan(data []byte, values ...interface{}) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	for _, v := range values {
		if err := dec.Decode(v); err != nil {
			return err
		}
	}

	return nil
}
