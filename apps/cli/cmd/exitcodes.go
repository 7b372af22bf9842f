package cmd

// Exit codes for the quiver CLI
const (
	// ExitSuccess indicates the command completed normally
	ExitSuccess = 0

	// ExitSendFailure indicates a send ended in a transport failure
	ExitSendFailure = 1

	// ExitNotFound indicates a referenced entity does not exist
	ExitNotFound = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)
