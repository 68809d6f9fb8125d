package reservation

import (
	"bytes"
	"encoding/json"
)

// Optional is a tri-state JSON field: absent, explicit null, or a value.
// Partial updates need the distinction so "clear this field" and "leave it
// alone" are not ambiguous for nullable fields.
type Optional[T any] struct {
	Set   bool // the field appeared in the document
	Valid bool // the value was not null
	Value T
}

// UnmarshalJSON implements json.Unmarshaler. encoding/json only invokes it
// for fields present in the document, so Set is true whenever it runs.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}
