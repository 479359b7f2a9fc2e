package pathops

import "fmt"

// Kinds an endpoint may report in [PathError.Kind].
const (
	PathKindNotFound         = "not-found"
	PathKindPermissionDenied = "permission-denied"
	PathKindGenericFileError = "generic-file-error"
)

// APIError is a request-level protocol failure: the endpoint rejected or
// could not serve the request as a whole.
type APIError struct {
	Code    int    // HTTP-style status code
	Status  string // status text
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// PathError is a protocol failure scoped to a single path.
type PathError struct {
	Kind    string
	Message string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s - %s", e.Kind, e.Message)
}
