package database

import "errors"

// ErrNotReady indicates the startup ping has not yet succeeded.
var ErrNotReady = errors.New("database not ready")
