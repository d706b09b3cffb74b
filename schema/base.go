package schema

// Base is a base schema embedded by concrete input/output structs.
type Base struct{}

// String implements Schema interface
func (r Base) String() string {
	return ""
}
