package server

import "errors"

var (
	ErrMissingAddress       = errors.New("server: address is required")
	ErrIncompleteTLS        = errors.New("server: TLS needs both a certificate and a key file")
	ErrLoadCertificate      = errors.New("server: load certificate")
	ErrServerAlreadyRunning = errors.New("server: already running")
	ErrListen               = errors.New("server: listen")
	ErrShutdown             = errors.New("server: shutdown")
)
