package types

type IPAddressEntry struct {
	IP string `json:"ip"`
}

type SecurityGroup struct {
	ID          string           `json:"_id,omitempty"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Scope       string           `json:"scope,omitempty"`
	Tag         string           `json:"tag,omitempty"`
	IPAddresses []IPAddressEntry `json:"ipAddresses"`
}

// SecurityGroupPatch always carries the full desired membership list, never
// an incremental add or remove.
type SecurityGroupPatch struct {
	IPAddresses []IPAddressEntry `json:"ipAddresses"`
}
