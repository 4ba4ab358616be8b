// internal/websocket/errors.go
package websocket

import "errors"

var (
	ErrChannelForbidden = errors.New("channel requires admin role")
	ErrUnknownChannel   = errors.New("unknown channel")
)
