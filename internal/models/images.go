package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ImageList is an ordered sequence of image URLs (or encoded image data)
// stored as a single JSON text column. Order must survive a round trip
// through the database.
type ImageList []string

// Value serializes the list for storage. A nil list is stored as an empty
// JSON array so the column never holds SQL NULL.
func (l ImageList) Value() (driver.Value, error) {
	if l == nil {
		l = ImageList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize image list: %w", err)
	}
	return string(b), nil
}

// Scan deserializes the stored JSON column back into the list.
func (l *ImageList) Scan(value interface{}) error {
	if value == nil {
		*l = ImageList{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported image list column type %T", value)
	}
	if len(data) == 0 {
		*l = ImageList{}
		return nil
	}
	if err := json.Unmarshal(data, l); err != nil {
		return fmt.Errorf("failed to deserialize image list: %w", err)
	}
	return nil
}
