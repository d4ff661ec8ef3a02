package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/siherrmann/timegrapher/helper"
)

// Metadata represents JSONB metadata stored in PostgreSQL
type Metadata map[string]interface{}

// Value implements the driver.Valuer interface for database storage
func (m Metadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface for database retrieval
func (m *Metadata) Scan(value interface{}) error {
	if s, ok := value.(Metadata); ok {
		*m = s
		return nil
	}
	*m = Metadata{}
	return scanJSONB(value, m)
}

// Value implements the driver.Valuer interface for database storage
func (s DAGStats) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements the sql.Scanner interface for database retrieval
func (s *DAGStats) Scan(value interface{}) error {
	*s = DAGStats{}
	return scanJSONB(value, s)
}

// scanJSONB decodes a JSONB column into target. NULL leaves target untouched.
func scanJSONB(value interface{}, target interface{}) error {
	var b []byte
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return helper.NewError("byte assertion", errors.New("type assertion to []byte failed"))
	}

	err := json.Unmarshal(b, target)
	if err != nil {
		return helper.NewError("unmarshal jsonb", err)
	}
	return nil
}
