package schema

import "encoding/json"

// Schema is the contract shared by every typed payload exchanged with a
// language model.
type Schema interface {
	String() string
}

// Stringify renders a schema the way it is sent to a model: String values
// pass through untouched, everything else is JSON encoded.
func Stringify(s Schema) string {
	if v, ok := s.(String); ok {
		return string(v)
	}
	bs, _ := json.Marshal(s)
	return string(bs)
}

// ToBytes returns the wire bytes for a schema value.
func ToBytes(s Schema) []byte {
	if v, ok := s.(String); ok {
		return []byte(v)
	}
	bs, _ := json.Marshal(s)
	return bs
}
