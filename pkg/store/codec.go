package store

import (
	"encoding/json"

	"github.com/matzehuels/canvaskit/pkg/errors"
)

// Marshal encodes a record as JSON, the at-rest form of the memory, file,
// sqlite and redis backends.
func Marshal(rec *Record) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode document %s", rec.ID)
	}
	return data, nil
}

// Unmarshal decodes a record written by Marshal.
func Unmarshal(data []byte) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode document")
	}
	return &rec, nil
}
