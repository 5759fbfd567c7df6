package types

// Dimension describes one grouping axis: which NetBox custom field holds the
// grouping keys, how prefixes are filtered server-side, and how the matching
// security groups are named and tagged.
type Dimension struct {
	Name            string
	CustomFieldName string
	FilterField     string
	GroupNamePrefix string
	ScopeTag        string
}

var (
	ConsumerDimension = Dimension{
		Name:            "consumer",
		CustomFieldName: "domain",
		FilterField:     "cf_domain",
		GroupNamePrefix: "nsg-consumer-",
		ScopeTag:        "consumer",
	}

	EnvironmentDimension = Dimension{
		Name:            "environment",
		CustomFieldName: "env",
		FilterField:     "cf_env",
		GroupNamePrefix: "nsg-environment-",
		ScopeTag:        "environment",
	}
)

// GroupName must match existing groups bit-exact, e.g. nsg-consumer-acme.
func (dimension Dimension) GroupName(key string) string {
	return dimension.GroupNamePrefix + key
}
