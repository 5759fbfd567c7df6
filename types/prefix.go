package types

type Vrf struct {
	Name string `json:"name"`
}

type PrefixStatus struct {
	Value string `json:"value"`
}

// Prefix is a NetBox prefix record with related objects expanded, so Vrf and
// Status come back as objects rather than ids.
type Prefix struct {
	Prefix       string         `json:"prefix"`
	Vrf          *Vrf           `json:"vrf"`
	Status       *PrefixStatus  `json:"status"`
	CustomFields map[string]any `json:"custom_fields"`
}
