package client

import "errors"

var (
	ErrNoSurface   = errors.New("client: surface is required")
	ErrNoSubmitter = errors.New("client: submitter is required")
	ErrStopped     = errors.New("client: event loop stopped")
)
