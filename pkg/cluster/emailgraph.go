package cluster

import (
	"context"
	"sort"

	"github.com/agentstation/contactmirror/pkg/contacts"
	"github.com/agentstation/contactmirror/pkg/logging"
)

// EmailGraphStrategy is the default clustering strategy. Records are first
// bucketed by normalized name; within a bucket, an edge connects every pair
// of records that share an email value case-insensitively and belong to
// different accounts. Connected components with members from at least two
// accounts become duplicate clusters.
type EmailGraphStrategy struct{}

// NewEmailGraphStrategy creates the default email-graph clustering strategy.
func NewEmailGraphStrategy() Strategy {
	return &EmailGraphStrategy{}
}

// Type returns the strategy type.
func (s *EmailGraphStrategy) Type() Type {
	return TypeEmailGraph
}

// Description returns a human-readable description.
func (s *EmailGraphStrategy) Description() string {
	return "Matches records that share both a normalized name and a cross-account email value"
}

// Cluster partitions records into duplicate clusters and a safe set.
// Clustering is pure and cannot fail; malformed values (such as empty email
// strings) simply never participate in edge building.
func (s *EmailGraphStrategy) Cluster(ctx context.Context, records []contacts.ContactRecord) ([][]contacts.ContactRecord, []contacts.ContactRecord, error) {
	logger := logging.FromContext(ctx)

	// Bucket record indices by normalized name. Records with an empty
	// normalized name go straight to the safe set.
	buckets := make(map[string][]int)
	for i, record := range records {
		key := contacts.NormalizedName(record)
		if key == "" {
			continue
		}
		buckets[key] = append(buckets[key], i)
	}

	// Process buckets in a stable order so cluster output is deterministic.
	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var clusters [][]contacts.ContactRecord
	claimed := make([]bool, len(records))

	for _, key := range keys {
		bucket := buckets[key]
		if len(bucket) < 2 {
			continue
		}

		for _, comp := range s.connect(records, bucket).components() {
			if len(comp) < 2 {
				continue
			}

			// Map component positions back to record indices.
			indices := make([]int, len(comp))
			for i, pos := range comp {
				indices[i] = bucket[pos]
			}

			if distinctAccounts(records, indices) < 2 {
				// Duplicates within one account are not this engine's concern.
				continue
			}

			members := make([]contacts.ContactRecord, len(indices))
			for i, idx := range indices {
				members[i] = records[idx]
				claimed[idx] = true
			}
			clusters = append(clusters, members)
		}
	}

	// Everything not claimed by a cluster passes through unchanged.
	var safe []contacts.ContactRecord
	for i, record := range records {
		if !claimed[i] {
			safe = append(safe, record)
		}
	}

	logger.Debug().
		Int("records", len(records)).
		Int("clusters", len(clusters)).
		Int("safe", len(safe)).
		Msg("Clustered records by name bucket and shared email")

	return clusters, safe, nil
}

// connect builds the shared-email graph over one name bucket and returns its
// union-find structure. Positions are indices into bucket, not into records.
func (s *EmailGraphStrategy) connect(records []contacts.ContactRecord, bucket []int) *unionFind {
	uf := newUnionFind(len(bucket))

	// Group bucket positions by normalized email value.
	byEmail := make(map[string][]int)
	for pos, idx := range bucket {
		for _, email := range records[idx].Emails {
			value := contacts.NormalizeEmail(email.Value)
			if value == "" {
				continue
			}
			byEmail[value] = append(byEmail[value], pos)
		}
	}

	// Edge-connect every cross-account pair that shares a value. Records
	// sharing an email within the same account stay disconnected.
	for _, positions := range byEmail {
		for i := 0; i < len(positions); i++ {
			for j := i + 1; j < len(positions); j++ {
				a, b := bucket[positions[i]], bucket[positions[j]]
				if records[a].AccountID != records[b].AccountID {
					uf.union(positions[i], positions[j])
				}
			}
		}
	}

	return uf
}
