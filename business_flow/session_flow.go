// Package businessflow contains the core business logic and use cases for subscription onboarding workflows
package businessflow

import (
	"context"
	"fmt"
	"sync"

	"github.com/lazparking/subscription-onboarding/app/dto"
	"github.com/lazparking/subscription-onboarding/models"
	"github.com/lazparking/subscription-onboarding/utils"
)

// SessionSnapshot is the state the presentation layer renders: the account
// list, the active selection, the current error map, and import status.
type SessionSnapshot struct {
	Accounts           []*models.Account `json:"accounts"`
	ActiveAccountIndex int               `json:"activeAccountIndex"`
	Errors             map[string]string `json:"errors"`
	ImportInProgress   bool              `json:"importInProgress"`
	ImportMessage      string            `json:"importMessage"`
}

// SessionFlow owns the in-memory hierarchy Account → SubscriptionPlan →
// Member and every structural operation over it. All operations leave the
// session in a consistent state: IDs stay dense, member back-references match
// their containing plan, collection caps hold, and at least one account with
// one plan exists at all times.
type SessionFlow interface {
	StartSession(ctx context.Context) error
	Snapshot() *SessionSnapshot
	SetActiveAccount(idx int) error

	AddAccount(ctx context.Context) (*models.Account, error)
	DeleteAccount(ctx context.Context, idx int) error
	UpdateAccount(idx int, patch *dto.AccountPatch) error
	CopyBillingFromAccount(idx int) error

	AddPlan(ctx context.Context, accountIdx int) (*models.SubscriptionPlan, error)
	RemovePlan(ctx context.Context, accountIdx, planID int) error
	UpdatePlan(accountIdx, planID int, patch *dto.PlanPatch) error

	AddMember(accountIdx int) (*models.Member, error)
	RemoveMember(accountIdx, memberID int) error
	MoveMember(accountIdx, memberID, fromPlanID, toPlanID int) (string, error)
	UpdateMember(accountIdx, planID, memberID int, patch *dto.MemberPatch) error

	AddAccessCode(accountIdx, planID, memberID int, code, codeType string) (*models.AccessCode, error)
	UpdateAccessCode(accountIdx, planID, memberID int, itemID string, field models.AccessCodeField, value string) error
	RemoveAccessCode(itemID string) error

	AddAssignedUnit(accountIdx, planID, memberID int, unit string) (*models.AssignedUnit, error)
	UpdateAssignedUnit(accountIdx, planID, memberID int, itemID string, field models.AssignedUnitField, value string) error
	RemoveAssignedUnit(itemID string) error

	AddVehicle(accountIdx, planID, memberID int, input *dto.VehicleInput) (*models.Vehicle, error)
	UpdateVehicle(accountIdx, planID, memberID int, itemID string, field models.VehicleField, value string) error
	RemoveVehicle(itemID string) error

	ResetAll(ctx context.Context) error
}

type SessionFlowImpl struct {
	mu        sync.Mutex
	allocator IdentifierAllocator

	accounts         []*models.Account
	activeIdx        int
	errors           map[string]string
	importInProgress bool
	importMessage    string
}

// NewSessionFlow creates a session flow over the given allocator. Call
// StartSession before use.
func NewSessionFlow(allocator IdentifierAllocator) *SessionFlowImpl {
	return &SessionFlowImpl{
		allocator: allocator,
		errors:    make(map[string]string),
	}
}

// StartSession initializes the session to a single account holding one empty
// subscription plan, with both IDs reserved as active.
func (s *SessionFlowImpl) StartSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, err := s.newAccount(ctx)
	if err != nil {
		return err
	}

	s.accounts = []*models.Account{account}
	s.activeIdx = 0
	s.errors = make(map[string]string)
	return nil
}

// newAccount allocates and reserves IDs for a fresh account with one empty
// plan. Reservation happens before the entity becomes visible in the session.
func (s *SessionFlowImpl) newAccount(ctx context.Context) (*models.Account, error) {
	accountID, err := s.allocator.NextAccountID(ctx)
	if err != nil {
		return nil, NewBusinessError("ALLOCATE_ACCOUNT_ID_FAILED", "Failed to allocate account ID", err)
	}
	if err := s.allocator.ReserveActiveAccount(ctx, accountID); err != nil {
		return nil, NewBusinessError("RESERVE_ACCOUNT_ID_FAILED", "Failed to reserve account ID", err)
	}

	subscriptionID, err := s.allocator.NextSubscriptionID(ctx)
	if err != nil {
		return nil, NewBusinessError("ALLOCATE_SUBSCRIPTION_ID_FAILED", "Failed to allocate subscription ID", err)
	}
	if err := s.allocator.ReserveActiveSubscription(ctx, subscriptionID); err != nil {
		return nil, NewBusinessError("RESERVE_SUBSCRIPTION_ID_FAILED", "Failed to reserve subscription ID", err)
	}

	return &models.Account{
		AccountID: accountID,
		SubscriptionPlans: []*models.SubscriptionPlan{
			{
				SubscriptionID:      subscriptionID,
				SubscriptionMembers: []*models.Member{},
			},
		},
	}, nil
}

// Snapshot returns the current presentation state. The account pointers are
// live; the session model is synchronous and single-user, so the caller must
// not retain them across mutations.
func (s *SessionFlowImpl) Snapshot() *SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts := make([]*models.Account, len(s.accounts))
	copy(accounts, s.accounts)

	errs := make(map[string]string, len(s.errors))
	for k, v := range s.errors {
		errs[k] = v
	}

	return &SessionSnapshot{
		Accounts:           accounts,
		ActiveAccountIndex: s.activeIdx,
		Errors:             errs,
		ImportInProgress:   s.importInProgress,
		ImportMessage:      s.importMessage,
	}
}

func (s *SessionFlowImpl) SetActiveAccount(idx int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx < 0 || idx >= len(s.accounts) {
		return ErrAccountIndexOutOfRange
	}
	s.activeIdx = idx
	s.revalidate()
	return nil
}

func (s *SessionFlowImpl) AddAccount(ctx context.Context) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, err := s.newAccount(ctx)
	if err != nil {
		return nil, err
	}

	s.accounts = append(s.accounts, account)
	s.activeIdx = len(s.accounts) - 1
	s.revalidate()
	return account, nil
}

func (s *SessionFlowImpl) DeleteAccount(ctx context.Context, idx int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx < 0 || idx >= len(s.accounts) {
		return ErrAccountIndexOutOfRange
	}
	if len(s.accounts) == 1 {
		return ErrLastAccount
	}

	s.accounts = append(s.accounts[:idx], s.accounts[idx+1:]...)
	if err := s.allocator.RenumberAccounts(ctx, s.accounts); err != nil {
		return NewBusinessError("RENUMBER_ACCOUNTS_FAILED", "Failed to renumber accounts", err)
	}

	// Shift the selection left when a preceding account disappears, then
	// clamp to the valid range.
	if idx < s.activeIdx {
		s.activeIdx--
	}
	if s.activeIdx >= len(s.accounts) {
		s.activeIdx = len(s.accounts) - 1
	}
	s.revalidate()
	return nil
}

func (s *SessionFlowImpl) UpdateAccount(idx int, patch *dto.AccountPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx < 0 || idx >= len(s.accounts) {
		return ErrAccountIndexOutOfRange
	}

	patch.ApplyTo(s.accounts[idx])
	s.revalidate()
	return nil
}

// CopyBillingFromAccount snapshots the holder fields into the billing fields.
// The copy is one-time: later holder edits do not re-sync the billing side.
func (s *SessionFlowImpl) CopyBillingFromAccount(idx int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx < 0 || idx >= len(s.accounts) {
		return ErrAccountIndexOutOfRange
	}

	s.accounts[idx].CopyBillingFromHolder()
	s.revalidate()
	return nil
}

func (s *SessionFlowImpl) AddPlan(ctx context.Context, accountIdx int) (*models.SubscriptionPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if accountIdx < 0 || accountIdx >= len(s.accounts) {
		return nil, ErrAccountIndexOutOfRange
	}
	account := s.accounts[accountIdx]

	subscriptionID, err := s.allocator.NextSubscriptionID(ctx)
	if err != nil {
		return nil, NewBusinessError("ALLOCATE_SUBSCRIPTION_ID_FAILED", "Failed to allocate subscription ID", err)
	}
	if err := s.allocator.ReserveActiveSubscription(ctx, subscriptionID); err != nil {
		return nil, NewBusinessError("RESERVE_SUBSCRIPTION_ID_FAILED", "Failed to reserve subscription ID", err)
	}

	// Each new plan starts with one member mirroring the account holder.
	mirror := &models.Member{
		SubscriptionMemberID: account.MaxMemberID() + 1,
		SubscriptionID:       subscriptionID,
		FirstName:            account.AccountFirstName,
		LastName:             account.AccountLastName,
		Email:                account.AccountEmail,
		Phone:                account.AccountPhone,
		AccessCodes:          []models.AccessCode{},
		AssignedUnits:        []models.AssignedUnit{},
		Vehicles:             []models.Vehicle{},
		CreatedAt:            utils.UTCNow(),
	}

	plan := &models.SubscriptionPlan{
		SubscriptionID:      subscriptionID,
		SubscriptionMembers: []*models.Member{mirror},
	}
	account.SubscriptionPlans = append(account.SubscriptionPlans, plan)
	s.revalidate()
	return plan, nil
}

func (s *SessionFlowImpl) RemovePlan(ctx context.Context, accountIdx, planID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if accountIdx < 0 || accountIdx >= len(s.accounts) {
		return ErrAccountIndexOutOfRange
	}
	account := s.accounts[accountIdx]
	if len(account.SubscriptionPlans) == 1 {
		return ErrLastPlan
	}

	found := false
	plans := make([]*models.SubscriptionPlan, 0, len(account.SubscriptionPlans)-1)
	for _, plan := range account.SubscriptionPlans {
		if plan.SubscriptionID == planID {
			found = true
			continue
		}
		plans = append(plans, plan)
	}
	if !found {
		return ErrPlanNotFound
	}
	account.SubscriptionPlans = plans

	if err := s.allocator.RenumberPlans(ctx, s.accounts, accountIdx); err != nil {
		return NewBusinessError("RENUMBER_PLANS_FAILED", "Failed to renumber subscription plans", err)
	}
	s.revalidate()
	return nil
}

func (s *SessionFlowImpl) UpdatePlan(accountIdx, planID int, patch *dto.PlanPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, err := s.planByID(accountIdx, planID)
	if err != nil {
		return err
	}

	patch.ApplyTo(plan)
	s.revalidate()
	return nil
}

// AddMember inserts a new member into the FIRST plan of the account (fixed
// policy), with SubscriptionMemberID one above the account's current maximum.
func (s *SessionFlowImpl) AddMember(accountIdx int) (*models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if accountIdx < 0 || accountIdx >= len(s.accounts) {
		return nil, ErrAccountIndexOutOfRange
	}
	account := s.accounts[accountIdx]
	if len(account.SubscriptionPlans) == 0 {
		return nil, ErrPlanNotFound
	}

	first := account.SubscriptionPlans[0]
	member := &models.Member{
		SubscriptionMemberID: account.MaxMemberID() + 1,
		SubscriptionID:       first.SubscriptionID,
		AccessCodes:          []models.AccessCode{},
		AssignedUnits:        []models.AssignedUnit{},
		Vehicles:             []models.Vehicle{},
		CreatedAt:            utils.UTCNow(),
	}
	first.SubscriptionMembers = append(first.SubscriptionMembers, member)
	s.revalidate()
	return member, nil
}

// RemoveMember deletes a member by identity from whichever plan currently
// holds it. Member IDs are not renumbered; sparse holes are acceptable.
func (s *SessionFlowImpl) RemoveMember(accountIdx, memberID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if accountIdx < 0 || accountIdx >= len(s.accounts) {
		return ErrAccountIndexOutOfRange
	}

	for _, plan := range s.accounts[accountIdx].SubscriptionPlans {
		for i, member := range plan.SubscriptionMembers {
			if member.SubscriptionMemberID == memberID {
				plan.SubscriptionMembers = append(plan.SubscriptionMembers[:i], plan.SubscriptionMembers[i+1:]...)
				s.revalidate()
				return nil
			}
		}
	}
	return ErrMemberNotFound
}

// MoveMember reassigns a member from one plan to another within the same
// account. The returned warning is non-blocking; it is set when the source
// plan is left without members.
func (s *SessionFlowImpl) MoveMember(accountIdx, memberID, fromPlanID, toPlanID int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if accountIdx < 0 || accountIdx >= len(s.accounts) {
		return "", ErrAccountIndexOutOfRange
	}
	account := s.accounts[accountIdx]

	source := account.PlanByID(fromPlanID)
	target := account.PlanByID(toPlanID)
	if source == nil || target == nil {
		return "", ErrPlanNotFound
	}

	var moved *models.Member
	for i, member := range source.SubscriptionMembers {
		if member.SubscriptionMemberID == memberID {
			moved = member
			source.SubscriptionMembers = append(source.SubscriptionMembers[:i], source.SubscriptionMembers[i+1:]...)
			break
		}
	}
	if moved == nil {
		return "", ErrMemberNotFound
	}

	moved.SubscriptionID = toPlanID
	target.SubscriptionMembers = append(target.SubscriptionMembers, moved)
	s.revalidate()

	if len(source.SubscriptionMembers) == 0 {
		return fmt.Sprintf("subscription plan %d no longer has any members", fromPlanID), nil
	}
	return "", nil
}

func (s *SessionFlowImpl) UpdateMember(accountIdx, planID, memberID int, patch *dto.MemberPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	member, err := s.memberByID(accountIdx, planID, memberID)
	if err != nil {
		return err
	}

	patch.ApplyTo(member)
	s.revalidate()
	return nil
}

func (s *SessionFlowImpl) AddAccessCode(accountIdx, planID, memberID int, code, codeType string) (*models.AccessCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	member, err := s.memberByID(accountIdx, planID, memberID)
	if err != nil {
		return nil, err
	}
	if len(member.AccessCodes) >= models.MaxAccessCodesPerMember {
		return nil, ErrAccessCodeLimitReached
	}

	item := models.AccessCode{ID: models.NewItemID(), Code: code, Type: codeType}
	member.AccessCodes = append(member.AccessCodes, item)
	s.revalidate()
	return &item, nil
}

// UpdateAccessCode overwrites one field of an access code. Unknown item IDs
// are a no-op.
func (s *SessionFlowImpl) UpdateAccessCode(accountIdx, planID, memberID int, itemID string, field models.AccessCodeField, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	member, err := s.memberByID(accountIdx, planID, memberID)
	if err != nil {
		return err
	}

	for i := range member.AccessCodes {
		if member.AccessCodes[i].ID != itemID {
			continue
		}
		switch field {
		case models.AccessCodeFieldCode:
			member.AccessCodes[i].Code = value
		case models.AccessCodeFieldType:
			member.AccessCodes[i].Type = value
		}
		break
	}
	s.revalidate()
	return nil
}

// RemoveAccessCode filters the item out of every member of the active
// account. Item IDs are generated tokens, but the scope stays account-local
// so behavior is defined even for a duplicated ID.
func (s *SessionFlowImpl) RemoveAccessCode(itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.forEachActiveMember(func(member *models.Member) {
		kept := member.AccessCodes[:0]
		for _, item := range member.AccessCodes {
			if item.ID != itemID {
				kept = append(kept, item)
			}
		}
		member.AccessCodes = kept
	})
	s.revalidate()
	return nil
}

func (s *SessionFlowImpl) AddAssignedUnit(accountIdx, planID, memberID int, unit string) (*models.AssignedUnit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	member, err := s.memberByID(accountIdx, planID, memberID)
	if err != nil {
		return nil, err
	}
	if len(member.AssignedUnits) >= models.MaxAssignedUnitsPerMember {
		return nil, ErrAssignedUnitLimitReached
	}

	item := models.AssignedUnit{ID: models.NewItemID(), Unit: unit}
	member.AssignedUnits = append(member.AssignedUnits, item)
	s.revalidate()
	return &item, nil
}

func (s *SessionFlowImpl) UpdateAssignedUnit(accountIdx, planID, memberID int, itemID string, field models.AssignedUnitField, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	member, err := s.memberByID(accountIdx, planID, memberID)
	if err != nil {
		return err
	}

	for i := range member.AssignedUnits {
		if member.AssignedUnits[i].ID != itemID {
			continue
		}
		if field == models.AssignedUnitFieldUnit {
			member.AssignedUnits[i].Unit = value
		}
		break
	}
	s.revalidate()
	return nil
}

func (s *SessionFlowImpl) RemoveAssignedUnit(itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.forEachActiveMember(func(member *models.Member) {
		kept := member.AssignedUnits[:0]
		for _, item := range member.AssignedUnits {
			if item.ID != itemID {
				kept = append(kept, item)
			}
		}
		member.AssignedUnits = kept
	})
	s.revalidate()
	return nil
}

func (s *SessionFlowImpl) AddVehicle(accountIdx, planID, memberID int, input *dto.VehicleInput) (*models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	member, err := s.memberByID(accountIdx, planID, memberID)
	if err != nil {
		return nil, err
	}
	if len(member.Vehicles) >= models.MaxVehiclesPerMember {
		return nil, ErrVehicleLimitReached
	}

	item := models.Vehicle{
		ID:          models.NewItemID(),
		Name:        input.Name,
		PlateNumber: input.PlateNumber,
		Make:        input.Make,
		Model:       input.Model,
		Color:       input.Color,
		State:       input.State,
	}
	member.Vehicles = append(member.Vehicles, item)
	s.revalidate()
	return &item, nil
}

func (s *SessionFlowImpl) UpdateVehicle(accountIdx, planID, memberID int, itemID string, field models.VehicleField, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	member, err := s.memberByID(accountIdx, planID, memberID)
	if err != nil {
		return err
	}

	for i := range member.Vehicles {
		if member.Vehicles[i].ID != itemID {
			continue
		}
		switch field {
		case models.VehicleFieldName:
			member.Vehicles[i].Name = value
		case models.VehicleFieldPlateNumber:
			member.Vehicles[i].PlateNumber = value
		case models.VehicleFieldMake:
			member.Vehicles[i].Make = value
		case models.VehicleFieldModel:
			member.Vehicles[i].Model = value
		case models.VehicleFieldColor:
			member.Vehicles[i].Color = value
		case models.VehicleFieldState:
			member.Vehicles[i].State = value
		}
		break
	}
	s.revalidate()
	return nil
}

func (s *SessionFlowImpl) RemoveVehicle(itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.forEachActiveMember(func(member *models.Member) {
		kept := member.Vehicles[:0]
		for _, item := range member.Vehicles {
			if item.ID != itemID {
				kept = append(kept, item)
			}
		}
		member.Vehicles = kept
	})
	s.revalidate()
	return nil
}

// ResetAll clears all four durable ID sets and reinitializes the session.
// Destructive and irreversible; the presentation layer confirms first.
func (s *SessionFlowImpl) ResetAll(ctx context.Context) error {
	s.mu.Lock()
	if err := s.allocator.ResetAll(ctx); err != nil {
		s.mu.Unlock()
		return NewBusinessError("RESET_FAILED", "Failed to reset the durable ID store", err)
	}
	s.mu.Unlock()
	return s.StartSession(ctx)
}

// planByID locates a plan; callers hold the session lock.
func (s *SessionFlowImpl) planByID(accountIdx, planID int) (*models.SubscriptionPlan, error) {
	if accountIdx < 0 || accountIdx >= len(s.accounts) {
		return nil, ErrAccountIndexOutOfRange
	}
	plan := s.accounts[accountIdx].PlanByID(planID)
	if plan == nil {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

// memberByID locates a member; callers hold the session lock.
func (s *SessionFlowImpl) memberByID(accountIdx, planID, memberID int) (*models.Member, error) {
	plan, err := s.planByID(accountIdx, planID)
	if err != nil {
		return nil, err
	}
	member := plan.MemberByID(memberID)
	if member == nil {
		return nil, ErrMemberNotFound
	}
	return member, nil
}

// forEachActiveMember runs fn over every member of the active account;
// callers hold the session lock.
func (s *SessionFlowImpl) forEachActiveMember(fn func(*models.Member)) {
	if s.activeIdx < 0 || s.activeIdx >= len(s.accounts) {
		return
	}
	for _, plan := range s.accounts[s.activeIdx].SubscriptionPlans {
		for _, member := range plan.SubscriptionMembers {
			fn(member)
		}
	}
}

// revalidate recomputes the error map for the active account; callers hold
// the session lock. Validation never blocks editing, only export. Keys use
// the same accounts[i]. prefix as export-time validation so the presentation
// layer sees one key shape.
func (s *SessionFlowImpl) revalidate() {
	errs := make(map[string]string)
	if s.activeIdx >= 0 && s.activeIdx < len(s.accounts) {
		account := s.accounts[s.activeIdx]
		prefix := fmt.Sprintf("accounts[%d].", s.activeIdx)
		for field, msg := range ValidateAccount(account) {
			errs[prefix+field] = msg
		}
		for path, msg := range ValidateSubscriptionPlans(account.SubscriptionPlans) {
			errs[prefix+path] = msg
		}
	}
	s.errors = errs
}
