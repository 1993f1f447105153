// Package cluster groups contact records fetched from multiple accounts into
// duplicate clusters and a residual safe set. Two strategies are provided
// behind one interface: the default email-graph strategy matches on shared
// name and shared email across accounts; the name-match strategy matches on
// name alone and defers each collision to an external decider, memoized by
// the per-run decision cache.
package cluster

import (
	"context"

	"github.com/agentstation/contactmirror/pkg/contacts"
)

// Type represents the type of clustering strategy.
type Type string

// String returns the string representation of a strategy type.
func (t Type) String() string {
	return string(t)
}

const (
	// TypeEmailGraph buckets records by normalized name and connects records
	// that share an email value across accounts.
	TypeEmailGraph Type = "email-graph"
	// TypeNameMatch matches on normalized name alone and asks a decider to
	// confirm each collision.
	TypeNameMatch Type = "name-match"
)

// Strategy groups records into duplicate clusters and a safe set.
//
// The returned partition is total and disjoint: every input record appears
// exactly once, either in one cluster or in safe. Every returned cluster has
// at least two members spanning at least two distinct accounts; matches
// within a single account are never treated as duplicates.
type Strategy interface {
	// Type returns the strategy type
	Type() Type

	// Description returns a human-readable description
	Description() string

	// Cluster partitions records into duplicate clusters and a safe set.
	Cluster(ctx context.Context, records []contacts.ContactRecord) (clusters [][]contacts.ContactRecord, safe []contacts.ContactRecord, err error)
}

// distinctAccounts counts the distinct account IDs among the given records.
func distinctAccounts(records []contacts.ContactRecord, indices []int) int {
	seen := make(map[contacts.AccountID]struct{}, len(indices))
	for _, i := range indices {
		seen[records[i].AccountID] = struct{}{}
	}
	return len(seen)
}
