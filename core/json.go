package core

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"

	"github.com/pkg/errors"
)

// JSONMap maps a postgres jsonb column onto a free-form object. Nested
// structures (addresses, social media handles, pricing grids) are stored
// as-is rather than normalized.
type JSONMap map[string]interface{}

var (
	_ driver.Valuer = (JSONMap)(nil)
	_ sql.Scanner   = (*JSONMap)(nil)
)

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.Errorf("unsupported jsonb source type %T", src)
	}
	return json.Unmarshal(data, m)
}
