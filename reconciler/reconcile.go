package reconciler

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nhc-net/nsg-sync/netbox"
	"github.com/nhc-net/nsg-sync/nsx"
	"github.com/nhc-net/nsg-sync/types"
)

const (
	groupDescription    = "Managed by NAM"
	statusContainer     = "container"
	excludedChoiceValue = "na"
)

type IReconcilerClient interface {
	ReconcileConsumerGroups(ctx context.Context) ([]types.GroupChange, error)
	ReconcileEnvironmentGroups(ctx context.Context) ([]types.GroupChange, error)
	Reconcile(ctx context.Context, dimension types.Dimension) ([]types.GroupChange, error)
}

type ReconcilerClient struct {
	NetboxClient netbox.INetboxClient
	NsxClient    nsx.INsxClient
	VrfName      string
	Apply        bool
	Logger       *logrus.Logger
}

func NewReconcilerClient(netboxClient netbox.INetboxClient, nsxClient nsx.INsxClient, vrfName string, apply bool, logger *logrus.Logger) *ReconcilerClient {
	return &ReconcilerClient{
		NetboxClient: netboxClient,
		NsxClient:    nsxClient,
		VrfName:      vrfName,
		Apply:        apply,
		Logger:       logger,
	}
}

func (reconcilerClient *ReconcilerClient) ReconcileConsumerGroups(ctx context.Context) ([]types.GroupChange, error) {
	return reconcilerClient.Reconcile(ctx, types.ConsumerDimension)
}

func (reconcilerClient *ReconcilerClient) ReconcileEnvironmentGroups(ctx context.Context) ([]types.GroupChange, error) {
	return reconcilerClient.Reconcile(ctx, types.EnvironmentDimension)
}

// Reconcile processes every grouping key of one dimension. Key discovery and
// the up-front group listing are fatal to the dimension; a failure scoped to
// a single key is logged, recorded as a Failed change, and never prevents the
// remaining keys from being processed.
func (reconcilerClient *ReconcilerClient) Reconcile(ctx context.Context, dimension types.Dimension) ([]types.GroupChange, error) {
	keys, err := reconcilerClient.discoverGroupingKeys(ctx, dimension)
	if err != nil {
		return nil, err
	}
	reconcilerClient.Logger.Infof("Found %d %s grouping keys on %s", len(keys), dimension.Name, reconcilerClient.NetboxClient.Hostname())

	// One list fetch amortized across all keys. The snapshot is not
	// refreshed mid-loop; names are unique per key so this cannot collide.
	groups, err := reconcilerClient.NsxClient.GetSecurityGroups(ctx)
	if err != nil {
		return nil, err
	}

	changes := []types.GroupChange{}
	for _, key := range keys {
		change, err := reconcilerClient.reconcileKey(ctx, dimension, key, groups)
		if err != nil {
			reconcilerClient.Logger.WithFields(logrus.Fields{
				"dimension": dimension.Name,
				"key":       key,
			}).Errorf("Failed to reconcile security group: %v", err)
			changes = append(changes, types.GroupChange{
				Dimension: dimension.Name,
				Key:       key,
				GroupName: dimension.GroupName(key),
				Action:    types.ChangeActionFailed,
				Error:     err.Error(),
			})
			continue
		}
		changes = append(changes, change)
	}
	return changes, nil
}

// discoverGroupingKeys resolves the dimension's custom field to its choice
// set and returns the choice values, excluding the "na" placeholder. A
// missing field or choice set is an explicit configuration error.
func (reconcilerClient *ReconcilerClient) discoverGroupingKeys(ctx context.Context, dimension types.Dimension) ([]string, error) {
	fields, err := reconcilerClient.NetboxClient.GetCustomFields(ctx)
	if err != nil {
		return nil, err
	}

	var field *types.CustomField
	for i := range fields {
		if fields[i].Name == dimension.CustomFieldName {
			field = &fields[i]
			break
		}
	}
	if field == nil {
		return nil, fmt.Errorf("%w: custom field %q not found on %s", types.ErrConfigurationMissing, dimension.CustomFieldName, reconcilerClient.NetboxClient.Hostname())
	}
	if field.ChoiceSet == nil {
		return nil, fmt.Errorf("%w: custom field %q has no choice set", types.ErrConfigurationMissing, dimension.CustomFieldName)
	}

	choiceSet, err := reconcilerClient.NetboxClient.GetCustomFieldChoiceSet(ctx, field.ChoiceSet.ID)
	if err != nil {
		return nil, err
	}

	keys := []string{}
	for _, choice := range choiceSet.ExtraChoices {
		if choice[0] == excludedChoiceValue {
			continue
		}
		keys = append(keys, choice[0])
	}
	return keys, nil
}

func (reconcilerClient *ReconcilerClient) reconcileKey(ctx context.Context, dimension types.Dimension, key string, groups []types.SecurityGroup) (types.GroupChange, error) {
	prefixes, err := reconcilerClient.NetboxClient.GetPrefixes(ctx, dimension.FilterField, key)
	if err != nil {
		return types.GroupChange{}, err
	}

	eligible := reconcilerClient.filterEligiblePrefixes(prefixes)
	groupName := dimension.GroupName(key)

	change := types.GroupChange{
		Dimension: dimension.Name,
		Key:       key,
		GroupName: groupName,
		Action:    types.ChangeActionNone,
	}

	existing := findGroupByName(groups, groupName)
	if existing == nil {
		change.Action = types.ChangeActionCreate
		change.Added = cidrList(eligible)

		if reconcilerClient.Apply {
			group := types.SecurityGroup{
				Name:        groupName,
				Description: groupDescription,
				Scope:       dimension.ScopeTag,
				Tag:         key,
				IPAddresses: ipAddressEntries(eligible),
			}
			if err := reconcilerClient.NsxClient.AddSecurityGroup(ctx, group); err != nil {
				return types.GroupChange{}, err
			}
		}

		reconcilerClient.Logger.WithFields(logrus.Fields{
			"dimension": dimension.Name,
			"group":     groupName,
			"added":     change.Added,
			"apply":     reconcilerClient.Apply,
		}).Infof("Created security group %s with %d members", groupName, len(change.Added))
		return change, nil
	}

	added, removed := diffMembership(cidrList(eligible), memberList(existing))
	if len(added) == 0 && len(removed) == 0 {
		return change, nil
	}

	change.Action = types.ChangeActionUpdate
	change.Added = added
	change.Removed = removed

	if reconcilerClient.Apply {
		// The patch overwrites the membership with the full desired list.
		patch := types.SecurityGroupPatch{IPAddresses: ipAddressEntries(eligible)}
		if err := reconcilerClient.NsxClient.PatchSecurityGroup(ctx, existing.ID, patch); err != nil {
			return types.GroupChange{}, err
		}
	}

	reconcilerClient.Logger.WithFields(logrus.Fields{
		"dimension": dimension.Name,
		"group":     groupName,
		"added":     added,
		"removed":   removed,
		"apply":     reconcilerClient.Apply,
	}).Infof("Updated security group %s membership", groupName)
	return change, nil
}

// filterEligiblePrefixes keeps prefixes in the configured VRF whose status is
// not container. The prefix API cannot express this server-side together
// with the custom-field filter.
func (reconcilerClient *ReconcilerClient) filterEligiblePrefixes(prefixes []types.Prefix) []types.Prefix {
	eligible := []types.Prefix{}
	for _, prefix := range prefixes {
		if prefix.Vrf == nil || prefix.Vrf.Name != reconcilerClient.VrfName {
			continue
		}
		if prefix.Status != nil && prefix.Status.Value == statusContainer {
			continue
		}
		eligible = append(eligible, prefix)
	}
	return eligible
}

func findGroupByName(groups []types.SecurityGroup, name string) *types.SecurityGroup {
	for i := range groups {
		if groups[i].Name == name {
			return &groups[i]
		}
	}
	return nil
}

func cidrList(prefixes []types.Prefix) []string {
	cidrs := []string{}
	for _, prefix := range prefixes {
		cidrs = append(cidrs, prefix.Prefix)
	}
	return cidrs
}

func memberList(group *types.SecurityGroup) []string {
	members := []string{}
	for _, entry := range group.IPAddresses {
		members = append(members, entry.IP)
	}
	return members
}

func ipAddressEntries(prefixes []types.Prefix) []types.IPAddressEntry {
	entries := []types.IPAddressEntry{}
	for _, prefix := range prefixes {
		entries = append(entries, types.IPAddressEntry{IP: prefix.Prefix})
	}
	return entries
}

// diffMembership returns desired−current and current−desired over CIDR
// strings, preserving input order.
func diffMembership(desired []string, current []string) ([]string, []string) {
	currentSet := make(map[string]bool, len(current))
	for _, cidr := range current {
		currentSet[cidr] = true
	}
	desiredSet := make(map[string]bool, len(desired))
	for _, cidr := range desired {
		desiredSet[cidr] = true
	}

	added := []string{}
	for _, cidr := range desired {
		if !currentSet[cidr] {
			added = append(added, cidr)
		}
	}
	removed := []string{}
	for _, cidr := range current {
		if !desiredSet[cidr] {
			removed = append(removed, cidr)
		}
	}
	return added, removed
}
