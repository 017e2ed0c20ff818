package httpparse

import "errors"

// These mirror the teacher's http11/errors.go style: small sentinel errors
// rather than a generic fmt.Errorf per failure.
var (
	ErrRequestTooLarge = errors.New("httpparse: request exceeds read buffer")
	ErrMalformedLine   = errors.New("httpparse: malformed CRLF line")
	ErrPeerClosed      = errors.New("httpparse: peer closed connection")
)
