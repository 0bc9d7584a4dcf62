package api

// Error types shared by the attempt scanner, label store, server and CLI.
type (
	// AuthenticationError indicates a missing or wrong review token
	AuthenticationError struct{ Message string }
	// NotFoundError indicates a resource was not found
	NotFoundError struct{ Message string }
	// ValidationError indicates invalid input
	ValidationError struct{ Message string }
)

func (e AuthenticationError) Error() string { return e.Message }
func (e NotFoundError) Error() string       { return e.Message }
func (e ValidationError) Error() string     { return e.Message }
