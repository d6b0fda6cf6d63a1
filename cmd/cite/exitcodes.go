package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (unreadable config, missing API key)
	ExitDataError   = 3 // Data error (missing source line, malformed record payload)
	ExitRemoteError = 4 // Remote extraction failed (transport, rate limit, malformed answer)
)
