package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Item is the domain model for a todo entry.
// The ID is assigned by the store and never changes afterwards.
type Item struct {
	ID        ID     `json:"id"`
	Body      string `json:"body"`
	Completed bool   `json:"completed"`
}

// UnmarshalJSON accepts both `id` and the legacy Mongo-style `_id` key.
func (it *Item) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID        *ID    `json:"id"`
		MongoID   *ID    `json:"_id"`
		Body      string `json:"body"`
		Completed bool   `json:"completed"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*it = Item{Body: raw.Body, Completed: raw.Completed}
	switch {
	case raw.ID != nil:
		it.ID = *raw.ID
	case raw.MongoID != nil:
		it.ID = *raw.MongoID
	}
	return nil
}

// ID identifies an item. Stores hand out either numbers or strings; the
// client treats both as opaque and echoes them back in their original form.
type ID struct {
	v   string
	num bool
}

// NumericID wraps an integer identifier.
func NumericID(n int64) ID { return ID{v: strconv.FormatInt(n, 10), num: true} }

// StringID wraps a string identifier.
func StringID(s string) ID { return ID{v: s} }

func (id ID) String() string { return id.v }

// IsZero reports whether the id was never assigned.
func (id ID) IsZero() bool { return id.v == "" }

func (id ID) MarshalJSON() ([]byte, error) {
	if id.num {
		return []byte(id.v), nil
	}
	return json.Marshal(id.v)
}

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ID{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = StringID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: want number or string, got %s", b)
	}
	*id = ID{v: n.String(), num: true}
	return nil
}
