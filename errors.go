package blake3

import "errors"

// ErrInvalidKeyLength is returned by [NewKeyed] when the supplied key is not
// exactly 32 bytes.
var ErrInvalidKeyLength = errors.New("blake3: key must be 32 bytes")
