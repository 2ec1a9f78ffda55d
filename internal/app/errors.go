package app

import "errors"

// ErrUnknownProvider reports a provider name the service is not
// configured for.
var ErrUnknownProvider = errors.New("unknown provider")
