// Package client talks to the roster HTTP API on behalf of the admin CLI.
//
// HTTPClient covers the account endpoints: Register, Login, WhoAmI and Health.
// Transport failures surface as ErrUnavailable; 401 and 404 answers map to
// ErrUnauthorized and ErrNotFound so callers can match them with errors.Is.
// Other failures keep the *netx.StatusError with the server's message.
package client
