package feedapi

import "errors"

var (
	// ErrConnectivity means the transport did not yield a usable HTTP exchange.
	ErrConnectivity = errors.New("feedapi: connectivity")
	// ErrInvalidData means the exchange completed but the status was not 200
	// or the body did not decode into a feed.
	ErrInvalidData = errors.New("feedapi: invalid data")
)
