package ai

import "errors"

// ErrMissingConfig indicates that a required credential or endpoint was not
// configured for the selected provider. Adapters return it (wrapped with
// detail) before attempting any network call.
var ErrMissingConfig = errors.New("provider configuration missing")

// ErrNotImplemented indicates that no adapter is registered for the
// requested provider id.
var ErrNotImplemented = errors.New("provider not implemented")
