package cluster

import (
	"context"
	"sort"

	"github.com/agentstation/contactmirror/pkg/contacts"
	"github.com/agentstation/contactmirror/pkg/logging"
)

// Decider answers whether two same-named records represent the same person.
// Implementations are typically interactive (a review prompt); the strategy
// memoizes verdicts by normalized name in the DecisionCache so the question
// is asked at most once per name per run.
type Decider interface {
	SamePerson(ctx context.Context, a, b contacts.ContactRecord) (bool, error)
}

// DeciderFunc adapts a function to the Decider interface.
type DeciderFunc func(ctx context.Context, a, b contacts.ContactRecord) (bool, error)

// SamePerson implements Decider.
func (f DeciderFunc) SamePerson(ctx context.Context, a, b contacts.ContactRecord) (bool, error) {
	return f(ctx, a, b)
}

// NameMatchStrategy is the lighter-weight alternative clustering strategy:
// records are matched on normalized name alone, and every cross-account
// collision is confirmed by the decider.
type NameMatchStrategy struct {
	decider Decider
	cache   *DecisionCache
}

// NewNameMatchStrategy creates a name-match strategy. A nil cache gets a
// private one; a nil decider rejects every collision, so all records pass
// through to the safe set.
func NewNameMatchStrategy(decider Decider, cache *DecisionCache) Strategy {
	if cache == nil {
		cache = NewDecisionCache()
	}
	return &NameMatchStrategy{
		decider: decider,
		cache:   cache,
	}
}

// Type returns the strategy type.
func (s *NameMatchStrategy) Type() Type {
	return TypeNameMatch
}

// DecisionCache returns the cache the strategy memoizes verdicts in, so the
// run orchestrator can reset it between runs.
func (s *NameMatchStrategy) DecisionCache() *DecisionCache {
	return s.cache
}

// Description returns a human-readable description.
func (s *NameMatchStrategy) Description() string {
	return "Matches records by normalized name with per-pair confirmation, memoized by name"
}

// Cluster partitions records into duplicate clusters and a safe set.
// The only error source is the decider itself (for example, a canceled
// interactive prompt); decider errors abort clustering.
func (s *NameMatchStrategy) Cluster(ctx context.Context, records []contacts.ContactRecord) ([][]contacts.ContactRecord, []contacts.ContactRecord, error) {
	logger := logging.FromContext(ctx)

	buckets := make(map[string][]int)
	for i, record := range records {
		key := contacts.NormalizedName(record)
		if key == "" {
			continue
		}
		buckets[key] = append(buckets[key], i)
	}

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

		uf := newUnionFind(len(bucket))
		for i := 0; i < len(bucket); i++ {
			for j := i + 1; j < len(bucket); j++ {
				a, b := records[bucket[i]], records[bucket[j]]
				if a.AccountID == b.AccountID {
					continue
				}

				same, err := s.verdict(ctx, key, a, b)
				if err != nil {
					return nil, nil, err
				}
				if same {
					uf.union(i, j)
				}
			}
		}

		for _, comp := range uf.components() {
			if len(comp) < 2 {
				continue
			}

			indices := make([]int, len(comp))
			for i, pos := range comp {
				indices[i] = bucket[pos]
			}
			if distinctAccounts(records, indices) < 2 {
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

	var safe []contacts.ContactRecord
	for i, record := range records {
		if !claimed[i] {
			safe = append(safe, record)
		}
	}

	logger.Debug().
		Int("records", len(records)).
		Int("clusters", len(clusters)).
		Int("decisions", s.cache.Len()).
		Msg("Clustered records by name with decider confirmation")

	return clusters, safe, nil
}

// verdict resolves one collision, consulting the cache first.
func (s *NameMatchStrategy) verdict(ctx context.Context, key string, a, b contacts.ContactRecord) (bool, error) {
	if verdict, ok := s.cache.Get(key); ok {
		return verdict, nil
	}
	if s.decider == nil {
		s.cache.Set(key, false)
		return false, nil
	}

	verdict, err := s.decider.SamePerson(ctx, a, b)
	if err != nil {
		return false, err
	}
	s.cache.Set(key, verdict)
	return verdict, nil
}
