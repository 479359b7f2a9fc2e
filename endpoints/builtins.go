package endpoints

type BuiltinEndpointType = string

const (
	MemoryEndpointType BuiltinEndpointType = "memory"
	HTTPEndpointType   BuiltinEndpointType = "http"
)

// RegisterBuiltins registers all built-in endpoint types with the default
// registry, or only the specific ones if types are provided.
func RegisterBuiltins(types ...BuiltinEndpointType) {
	if len(types) == 0 {
		types = []BuiltinEndpointType{MemoryEndpointType, HTTPEndpointType}
	}

	for _, t := range types {
		switch t {
		case MemoryEndpointType:
			Register(t, ProviderFunc(newMemoryFromConfig))
		case HTTPEndpointType:
			Register(t, ProviderFunc(newHTTPFromConfig))
		}
	}
}
