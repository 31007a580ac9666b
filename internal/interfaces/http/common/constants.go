package common

const (
	// MaxRequestBody limits JSON request bodies for the inquiry endpoint.
	MaxRequestBody = 1 << 20
	// DefaultPageLimit is used by listing endpoints when no limit is given.
	DefaultPageLimit = 50
	// MaxPageLimit caps listing page sizes.
	MaxPageLimit = 200
)
