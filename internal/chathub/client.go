package chathub

import "chatline/backend/internal/models"

// Client is the interface for any type of connection attached to the hub.
// It abstracts the underlying transport so the hub can treat every live
// connection uniformly through an opaque handle.
type Client interface {
	// GetHandle returns the connection handle, unique per live connection.
	// Two tabs of the same user are two handles.
	GetHandle() string
	// GetUserID returns the user identity supplied at connect time.
	GetUserID() string

	// GetSendChannel returns the channel the hub writes outbound frames to.
	GetSendChannel() chan<- models.ServerEvent

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the client's outbound channel, which stops its write
	// pump and closes the underlying connection.
	Close()
}
