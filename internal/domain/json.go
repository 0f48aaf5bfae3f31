package domain

import (
	"database/sql/driver"
	"encoding/json"
)

// JSON is a helper type for JSONB columns. A nil map serializes to an empty
// object so NOT NULL columns accept it.
type JSON map[string]interface{}

func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(j)
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(b, j)
}

// Strings is a JSONB-backed string slice. Order is preserved. A nil slice
// serializes to an empty array so NOT NULL columns accept it.
type Strings []string

func (s Strings) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s)
}

func (s *Strings) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(b, s)
}
