package types

type unsetType struct{}

// Unset marks a request field as "not provided". Fields whose value is
// Unset (or a nil interface) are omitted from the serialized payload
// entirely, as opposed to being sent as JSON null.
var Unset any = unsetType{}

// IsUnset reports whether v is the Unset sentinel.
func IsUnset(v any) bool {
	_, ok := v.(unsetType)
	return ok
}
