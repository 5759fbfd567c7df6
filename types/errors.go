package types

import "errors"

var (
	// ErrConfigurationMissing marks an expected custom field or choice set
	// that does not exist in NetBox.
	ErrConfigurationMissing = errors.New("configuration missing")

	// ErrUpstreamFetch marks a failed NetBox or NSX read.
	ErrUpstreamFetch = errors.New("upstream fetch failed")

	// ErrUpstreamWrite marks a failed NSX create or patch.
	ErrUpstreamWrite = errors.New("upstream write failed")
)
