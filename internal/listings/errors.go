package listings

import "errors"

// ErrListingNotFound is returned when a listing does not exist or is not
// published.
var ErrListingNotFound = errors.New("listing not found")
