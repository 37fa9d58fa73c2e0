// Package businessflow contains the core business logic and use cases for subscription onboarding workflows
package businessflow

import (
	"context"
	"fmt"
	"sort"

	"github.com/lazparking/subscription-onboarding/models"
	"github.com/lazparking/subscription-onboarding/repository"
)

// IdentifierAllocator computes and tracks account and subscription IDs over
// the durable store's submitted and active sets.
//
// IDs are densely sequential starting at 1 over submitted ∪ active per scope.
// After a deletion the surviving entities are renumbered to restore density,
// so IDs look contiguous in the legacy export format but are NOT stable across
// mutations: callers needing stable identity must combine the member ID with
// array position instead.
type IdentifierAllocator interface {
	// NextAccountID returns |submitted ∪ active account sets| + 1. It is an
	// idempotent read; calling it twice without a reserve in between returns
	// the same value.
	NextAccountID(ctx context.Context) (int, error)
	// NextSubscriptionID is the same formula over the subscription sets.
	NextSubscriptionID(ctx context.Context) (int, error)
	// ReserveActiveAccount idempotently adds id to the active account set and
	// persists immediately.
	ReserveActiveAccount(ctx context.Context, id int) error
	// ReserveActiveSubscription idempotently adds id to the active
	// subscription set and persists immediately.
	ReserveActiveSubscription(ctx context.Context, id int) error
	// CommitActiveToSubmitted merges active sets into submitted sets and
	// clears the active sets. Called once per successful export.
	CommitActiveToSubmitted(ctx context.Context) error
	// ResetAll clears all four sets. Destructive and irreversible; the caller
	// is responsible for user confirmation.
	ResetAll(ctx context.Context) error
	// SubmittedAccountCount returns the size of the submitted account set.
	SubmittedAccountCount(ctx context.Context) (int, error)
	// SubmittedSubscriptionCount returns the size of the submitted
	// subscription set.
	SubmittedSubscriptionCount(ctx context.Context) (int, error)
	// RenumberAccounts reassigns dense IDs to the surviving accounts after a
	// deletion: AccountID = submittedAccountCount + 1 + index in list order,
	// and SubscriptionID continues a single running counter seeded at
	// submittedSubscriptionCount + 1 across all accounts in order. Member
	// back-references follow their plan. The active sets are replaced with
	// exactly the new ID sets.
	RenumberAccounts(ctx context.Context, accounts []*models.Account) error
	// RenumberPlans reassigns dense subscription IDs to the plans of the
	// account at accountIdx only, seeded at submittedSubscriptionCount + 1,
	// propagating the new IDs to members. The active subscription set is
	// replaced with the full session plan ID set.
	RenumberPlans(ctx context.Context, accounts []*models.Account, accountIdx int) error
}

type IdentifierAllocatorImpl struct {
	store repository.IDSetRepository
}

// NewIdentifierAllocator creates an allocator over the given durable store.
func NewIdentifierAllocator(store repository.IDSetRepository) IdentifierAllocator {
	return &IdentifierAllocatorImpl{store: store}
}

func (a *IdentifierAllocatorImpl) NextAccountID(ctx context.Context) (int, error) {
	return a.nextID(ctx, repository.KeySubmittedAccountIDs, repository.KeyActiveAccountIDs)
}

func (a *IdentifierAllocatorImpl) NextSubscriptionID(ctx context.Context) (int, error) {
	return a.nextID(ctx, repository.KeySubmittedSubscriptionIDs, repository.KeyActiveSubscriptionIDs)
}

func (a *IdentifierAllocatorImpl) nextID(ctx context.Context, submittedKey, activeKey string) (int, error) {
	union, err := a.unionSize(ctx, submittedKey, activeKey)
	if err != nil {
		return 0, err
	}
	return union + 1, nil
}

func (a *IdentifierAllocatorImpl) unionSize(ctx context.Context, submittedKey, activeKey string) (int, error) {
	submitted, err := a.store.Get(ctx, submittedKey)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", submittedKey, err)
	}
	active, err := a.store.Get(ctx, activeKey)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", activeKey, err)
	}

	seen := make(map[int]struct{}, len(submitted)+len(active))
	for _, id := range submitted {
		seen[id] = struct{}{}
	}
	for _, id := range active {
		seen[id] = struct{}{}
	}
	return len(seen), nil
}

func (a *IdentifierAllocatorImpl) ReserveActiveAccount(ctx context.Context, id int) error {
	return a.reserve(ctx, repository.KeyActiveAccountIDs, id)
}

func (a *IdentifierAllocatorImpl) ReserveActiveSubscription(ctx context.Context, id int) error {
	return a.reserve(ctx, repository.KeyActiveSubscriptionIDs, id)
}

func (a *IdentifierAllocatorImpl) reserve(ctx context.Context, activeKey string, id int) error {
	active, err := a.store.Get(ctx, activeKey)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", activeKey, err)
	}
	for _, existing := range active {
		if existing == id {
			return nil
		}
	}
	return a.store.Set(ctx, activeKey, append(active, id))
}

func (a *IdentifierAllocatorImpl) CommitActiveToSubmitted(ctx context.Context) error {
	if err := a.commit(ctx, repository.KeySubmittedAccountIDs, repository.KeyActiveAccountIDs); err != nil {
		return err
	}
	return a.commit(ctx, repository.KeySubmittedSubscriptionIDs, repository.KeyActiveSubscriptionIDs)
}

func (a *IdentifierAllocatorImpl) commit(ctx context.Context, submittedKey, activeKey string) error {
	submitted, err := a.store.Get(ctx, submittedKey)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", submittedKey, err)
	}
	active, err := a.store.Get(ctx, activeKey)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", activeKey, err)
	}

	seen := make(map[int]struct{}, len(submitted)+len(active))
	merged := make([]int, 0, len(submitted)+len(active))
	for _, id := range submitted {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			merged = append(merged, id)
		}
	}
	for _, id := range active {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			merged = append(merged, id)
		}
	}
	sort.Ints(merged)

	if err := a.store.Set(ctx, submittedKey, merged); err != nil {
		return err
	}
	return a.store.Set(ctx, activeKey, []int{})
}

func (a *IdentifierAllocatorImpl) ResetAll(ctx context.Context) error {
	for _, key := range repository.IDSetKeys {
		if err := a.store.Set(ctx, key, []int{}); err != nil {
			return fmt.Errorf("failed to reset %s: %w", key, err)
		}
	}
	return nil
}

func (a *IdentifierAllocatorImpl) SubmittedAccountCount(ctx context.Context) (int, error) {
	ids, err := a.store.Get(ctx, repository.KeySubmittedAccountIDs)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (a *IdentifierAllocatorImpl) SubmittedSubscriptionCount(ctx context.Context) (int, error) {
	ids, err := a.store.Get(ctx, repository.KeySubmittedSubscriptionIDs)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (a *IdentifierAllocatorImpl) RenumberAccounts(ctx context.Context, accounts []*models.Account) error {
	submittedAccounts, err := a.SubmittedAccountCount(ctx)
	if err != nil {
		return err
	}
	submittedSubscriptions, err := a.SubmittedSubscriptionCount(ctx)
	if err != nil {
		return err
	}

	accountIDs := make([]int, 0, len(accounts))
	subscriptionIDs := make([]int, 0)
	nextSubscriptionID := submittedSubscriptions + 1

	for i, account := range accounts {
		account.AccountID = submittedAccounts + 1 + i
		accountIDs = append(accountIDs, account.AccountID)

		for _, plan := range account.SubscriptionPlans {
			plan.SubscriptionID = nextSubscriptionID
			subscriptionIDs = append(subscriptionIDs, plan.SubscriptionID)
			nextSubscriptionID++
			for _, member := range plan.SubscriptionMembers {
				member.SubscriptionID = plan.SubscriptionID
			}
		}
	}

	// Replacement, not union: the active sets become exactly the new IDs.
	if err := a.store.Set(ctx, repository.KeyActiveAccountIDs, accountIDs); err != nil {
		return err
	}
	return a.store.Set(ctx, repository.KeyActiveSubscriptionIDs, subscriptionIDs)
}

func (a *IdentifierAllocatorImpl) RenumberPlans(ctx context.Context, accounts []*models.Account, accountIdx int) error {
	if accountIdx < 0 || accountIdx >= len(accounts) {
		return ErrAccountIndexOutOfRange
	}

	submittedSubscriptions, err := a.SubmittedSubscriptionCount(ctx)
	if err != nil {
		return err
	}

	account := accounts[accountIdx]
	nextSubscriptionID := submittedSubscriptions + 1
	for _, plan := range account.SubscriptionPlans {
		plan.SubscriptionID = nextSubscriptionID
		nextSubscriptionID++
		for _, member := range plan.SubscriptionMembers {
			member.SubscriptionID = plan.SubscriptionID
		}
	}

	subscriptionIDs := make([]int, 0)
	for _, acc := range accounts {
		for _, plan := range acc.SubscriptionPlans {
			subscriptionIDs = append(subscriptionIDs, plan.SubscriptionID)
		}
	}
	return a.store.Set(ctx, repository.KeyActiveSubscriptionIDs, subscriptionIDs)
}
