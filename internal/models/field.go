package models

import (
	"database/sql"
	"encoding/json"
	"strings"
)

// FieldState describes how a nested document field was found in storage
type FieldState int

const (
	FieldPresent FieldState = iota
	FieldMissing
	FieldCorrupt
)

func (s FieldState) String() string {
	switch s {
	case FieldPresent:
		return "present"
	case FieldMissing:
		return "missing"
	case FieldCorrupt:
		return "corrupt"
	default:
		return "unknown"
	}
}

// DecodeField decodes a JSON column, falling back to def() when the column
// is NULL, empty or not decodable into T.
func DecodeField[T any](raw sql.NullString, def func() T) (T, FieldState) {
	if !raw.Valid || strings.TrimSpace(raw.String) == "" || raw.String == "null" {
		return def(), FieldMissing
	}
	var v T
	if err := json.Unmarshal([]byte(raw.String), &v); err != nil {
		return def(), FieldCorrupt
	}
	return v, FieldPresent
}

// EncodeField encodes a nested document for a JSON column
func EncodeField(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
