package businessflow

import (
	"context"
	"testing"

	"github.com/lazparking/subscription-onboarding/app/dto"
	"github.com/lazparking/subscription-onboarding/models"
	testingutil "github.com/lazparking/subscription-onboarding/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) *SessionFlowImpl {
	t.Helper()
	session := NewSessionFlow(NewIdentifierAllocator(testingutil.NewIDSetStore()))
	require.NoError(t, session.StartSession(context.Background()))
	return session
}

func TestStartSession(t *testing.T) {
	session := newTestSession(t)
	snap := session.Snapshot()

	require.Len(t, snap.Accounts, 1)
	assert.Equal(t, 1, snap.Accounts[0].AccountID)
	assert.Equal(t, 0, snap.ActiveAccountIndex)
	require.Len(t, snap.Accounts[0].SubscriptionPlans, 1)
	assert.Equal(t, 1, snap.Accounts[0].SubscriptionPlans[0].SubscriptionID)
	assert.Empty(t, snap.Accounts[0].SubscriptionPlans[0].SubscriptionMembers)
}

func TestAccountLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("AddAccountAllocatesSequentialIDs", func(t *testing.T) {
		session := newTestSession(t)

		second, err := session.AddAccount(ctx)
		require.NoError(t, err)
		third, err := session.AddAccount(ctx)
		require.NoError(t, err)

		assert.Equal(t, 2, second.AccountID)
		assert.Equal(t, 3, third.AccountID)
		assert.Equal(t, 2, second.SubscriptionPlans[0].SubscriptionID)
		assert.Equal(t, 3, third.SubscriptionPlans[0].SubscriptionID)
		assert.Equal(t, 2, session.Snapshot().ActiveAccountIndex)
	})

	t.Run("DeleteAccountRenumbersSurvivors", func(t *testing.T) {
		session := newTestSession(t)
		_, err := session.AddAccount(ctx)
		require.NoError(t, err)
		_, err = session.AddAccount(ctx)
		require.NoError(t, err)

		require.NoError(t, session.DeleteAccount(ctx, 1))

		snap := session.Snapshot()
		require.Len(t, snap.Accounts, 2)
		assert.Equal(t, 1, snap.Accounts[0].AccountID)
		assert.Equal(t, 2, snap.Accounts[1].AccountID)
		assert.Equal(t, 1, snap.Accounts[0].SubscriptionPlans[0].SubscriptionID)
		assert.Equal(t, 2, snap.Accounts[1].SubscriptionPlans[0].SubscriptionID)
	})

	t.Run("DeleteLastAccountRejected", func(t *testing.T) {
		session := newTestSession(t)
		err := session.DeleteAccount(ctx, 0)
		assert.True(t, IsLastAccount(err))
	})

	t.Run("DeleteShiftsActiveSelection", func(t *testing.T) {
		session := newTestSession(t)
		_, err := session.AddAccount(ctx)
		require.NoError(t, err)
		_, err = session.AddAccount(ctx)
		require.NoError(t, err)
		require.NoError(t, session.SetActiveAccount(2))

		require.NoError(t, session.DeleteAccount(ctx, 0))
		assert.Equal(t, 1, session.Snapshot().ActiveAccountIndex)

		require.NoError(t, session.DeleteAccount(ctx, 1))
		assert.Equal(t, 0, session.Snapshot().ActiveAccountIndex)
	})

	t.Run("UpdateAccountAppliesNonNilFieldsOnly", func(t *testing.T) {
		session := newTestSession(t)
		first := "Dana"
		require.NoError(t, session.UpdateAccount(0, &dto.AccountPatch{AccountFirstName: &first}))

		account := session.Snapshot().Accounts[0]
		assert.Equal(t, "Dana", account.AccountFirstName)
		assert.Empty(t, account.AccountLastName)
	})
}

func TestCopyBillingFromAccount(t *testing.T) {
	session := newTestSession(t)

	email := "holder@example.com"
	city := "Toronto"
	require.NoError(t, session.UpdateAccount(0, &dto.AccountPatch{AccountEmail: &email, AccountCity: &city}))
	require.NoError(t, session.CopyBillingFromAccount(0))

	account := session.Snapshot().Accounts[0]
	assert.Equal(t, "holder@example.com", account.AccountBillToEmail)
	assert.Equal(t, "Toronto", account.AccountBillToCity)

	// One-time snapshot: later holder edits do not re-sync billing.
	updated := "changed@example.com"
	require.NoError(t, session.UpdateAccount(0, &dto.AccountPatch{AccountEmail: &updated}))
	account = session.Snapshot().Accounts[0]
	assert.Equal(t, "changed@example.com", account.AccountEmail)
	assert.Equal(t, "holder@example.com", account.AccountBillToEmail)
}

func TestPlanLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("AddPlanCreatesMirrorMember", func(t *testing.T) {
		session := newTestSession(t)
		first := "Sam"
		last := "Rivera"
		require.NoError(t, session.UpdateAccount(0, &dto.AccountPatch{AccountFirstName: &first, AccountLastName: &last}))

		plan, err := session.AddPlan(ctx, 0)
		require.NoError(t, err)

		assert.Equal(t, 2, plan.SubscriptionID)
		require.Len(t, plan.SubscriptionMembers, 1)
		mirror := plan.SubscriptionMembers[0]
		assert.Equal(t, 1, mirror.SubscriptionMemberID)
		assert.Equal(t, "Sam", mirror.FirstName)
		assert.Equal(t, "Rivera", mirror.LastName)
		assert.Equal(t, plan.SubscriptionID, mirror.SubscriptionID)
	})

	t.Run("RemoveLastPlanRejected", func(t *testing.T) {
		session := newTestSession(t)
		err := session.RemovePlan(ctx, 0, 1)
		assert.True(t, IsLastPlan(err))
	})

	t.Run("RemovePlanRenumbersAndFollowsMembers", func(t *testing.T) {
		session := newTestSession(t)
		_, err := session.AddPlan(ctx, 0)
		require.NoError(t, err)
		_, err = session.AddPlan(ctx, 0)
		require.NoError(t, err)

		require.NoError(t, session.RemovePlan(ctx, 0, 2))

		account := session.Snapshot().Accounts[0]
		require.Len(t, account.SubscriptionPlans, 2)
		assert.Equal(t, 1, account.SubscriptionPlans[0].SubscriptionID)
		assert.Equal(t, 2, account.SubscriptionPlans[1].SubscriptionID)
		for _, plan := range account.SubscriptionPlans {
			for _, member := range plan.SubscriptionMembers {
				assert.Equal(t, plan.SubscriptionID, member.SubscriptionID)
			}
		}
	})

	t.Run("RemoveUnknownPlan", func(t *testing.T) {
		session := newTestSession(t)
		_, err := session.AddPlan(ctx, 0)
		require.NoError(t, err)
		err = session.RemovePlan(ctx, 0, 99)
		assert.True(t, IsPlanNotFound(err))
	})

	t.Run("UpdatePlan", func(t *testing.T) {
		session := newTestSession(t)
		name := "Monthly Reserved"
		planType := models.SubscriptionTypeTermed
		require.NoError(t, session.UpdatePlan(0, 1, &dto.PlanPatch{
			SubscriptionName: &name,
			SubscriptionType: &planType,
		}))

		plan := session.Snapshot().Accounts[0].SubscriptionPlans[0]
		assert.Equal(t, "Monthly Reserved", plan.SubscriptionName)
		assert.Equal(t, models.SubscriptionTypeTermed, plan.SubscriptionType)
	})
}

func TestMemberLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("AddMemberGoesToFirstPlanWithMaxPlusOne", func(t *testing.T) {
		session := newTestSession(t)
		_, err := session.AddPlan(ctx, 0) // plan 2 with mirror member 1
		require.NoError(t, err)

		member, err := session.AddMember(0)
		require.NoError(t, err)

		assert.Equal(t, 2, member.SubscriptionMemberID)
		assert.Equal(t, 1, member.SubscriptionID)
		first := session.Snapshot().Accounts[0].SubscriptionPlans[0]
		require.Len(t, first.SubscriptionMembers, 1)
		assert.Same(t, member, first.SubscriptionMembers[0])
	})

	t.Run("RemoveMemberLeavesSparseIDs", func(t *testing.T) {
		session := newTestSession(t)
		_, err := session.AddMember(0)
		require.NoError(t, err)
		second, err := session.AddMember(0)
		require.NoError(t, err)

		require.NoError(t, session.RemoveMember(0, 1))

		third, err := session.AddMember(0)
		require.NoError(t, err)
		assert.Equal(t, 2, second.SubscriptionMemberID)
		assert.Equal(t, 3, third.SubscriptionMemberID)
	})

	t.Run("RemoveUnknownMember", func(t *testing.T) {
		session := newTestSession(t)
		err := session.RemoveMember(0, 42)
		assert.True(t, IsMemberNotFound(err))
	})

	t.Run("MoveMemberWarnsWhenSourceEmpties", func(t *testing.T) {
		session := newTestSession(t)
		member, err := session.AddMember(0)
		require.NoError(t, err)
		_, err = session.AddPlan(ctx, 0) // plan 2 with its own mirror member
		require.NoError(t, err)

		warning, err := session.MoveMember(0, member.SubscriptionMemberID, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, "subscription plan 1 no longer has any members", warning)
		assert.Equal(t, 2, member.SubscriptionID)

		account := session.Snapshot().Accounts[0]
		assert.Empty(t, account.SubscriptionPlans[0].SubscriptionMembers)
		assert.Len(t, account.SubscriptionPlans[1].SubscriptionMembers, 2)
	})

	t.Run("MoveMemberNoWarningWhenSourceStillPopulated", func(t *testing.T) {
		session := newTestSession(t)
		member, err := session.AddMember(0)
		require.NoError(t, err)
		_, err = session.AddMember(0)
		require.NoError(t, err)
		_, err = session.AddPlan(ctx, 0)
		require.NoError(t, err)

		warning, err := session.MoveMember(0, member.SubscriptionMemberID, 1, 2)
		require.NoError(t, err)
		assert.Empty(t, warning)
	})

	t.Run("UpdateMember", func(t *testing.T) {
		session := newTestSession(t)
		member, err := session.AddMember(0)
		require.NoError(t, err)

		name := "Riley"
		ratePlan := "Premium Monthly"
		require.NoError(t, session.UpdateMember(0, 1, member.SubscriptionMemberID, &dto.MemberPatch{
			FirstName:                      &name,
			SubscriptionMemberRateplanName: &ratePlan,
		}))

		assert.Equal(t, "Riley", member.FirstName)
		assert.Equal(t, "Premium Monthly", member.SubscriptionMemberRateplanName)
	})
}

func TestMemberItems(t *testing.T) {
	addMember := func(t *testing.T) (*SessionFlowImpl, *models.Member) {
		session := newTestSession(t)
		member, err := session.AddMember(0)
		require.NoError(t, err)
		return session, member
	}

	t.Run("AccessCodeCapEnforced", func(t *testing.T) {
		session, member := addMember(t)

		for i := 0; i < models.MaxAccessCodesPerMember; i++ {
			_, err := session.AddAccessCode(0, 1, member.SubscriptionMemberID, "A100", models.AccessCodeTypePermit)
			require.NoError(t, err)
		}

		_, err := session.AddAccessCode(0, 1, member.SubscriptionMemberID, "A200", models.AccessCodeTypePermit)
		assert.True(t, IsCollectionLimitReached(err))
		assert.Len(t, member.AccessCodes, models.MaxAccessCodesPerMember)
	})

	t.Run("AssignedUnitCapIsOne", func(t *testing.T) {
		session, member := addMember(t)

		_, err := session.AddAssignedUnit(0, 1, member.SubscriptionMemberID, "12B")
		require.NoError(t, err)
		_, err = session.AddAssignedUnit(0, 1, member.SubscriptionMemberID, "14C")
		assert.True(t, IsCollectionLimitReached(err))
	})

	t.Run("VehicleCapEnforced", func(t *testing.T) {
		session, member := addMember(t)

		for i := 0; i < models.MaxVehiclesPerMember; i++ {
			_, err := session.AddVehicle(0, 1, member.SubscriptionMemberID, &dto.VehicleInput{Name: "Car", PlateNumber: "ABC123"})
			require.NoError(t, err)
		}
		_, err := session.AddVehicle(0, 1, member.SubscriptionMemberID, &dto.VehicleInput{Name: "Extra"})
		assert.True(t, IsCollectionLimitReached(err))
	})

	t.Run("UpdateAccessCodeByField", func(t *testing.T) {
		session, member := addMember(t)
		item, err := session.AddAccessCode(0, 1, member.SubscriptionMemberID, "A100", models.AccessCodeTypePermit)
		require.NoError(t, err)

		require.NoError(t, session.UpdateAccessCode(0, 1, member.SubscriptionMemberID, item.ID, models.AccessCodeFieldType, models.AccessCodeTypeProxCard))
		assert.Equal(t, models.AccessCodeTypeProxCard, member.AccessCodes[0].Type)
	})

	t.Run("UpdateUnknownItemIsNoOp", func(t *testing.T) {
		session, member := addMember(t)
		_, err := session.AddAccessCode(0, 1, member.SubscriptionMemberID, "A100", models.AccessCodeTypePermit)
		require.NoError(t, err)

		require.NoError(t, session.UpdateAccessCode(0, 1, member.SubscriptionMemberID, "no-such-id", models.AccessCodeFieldCode, "B200"))
		assert.Equal(t, "A100", member.AccessCodes[0].Code)
	})

	t.Run("RemoveItemSearchesWholeActiveAccount", func(t *testing.T) {
		session, member := addMember(t)
		item, err := session.AddVehicle(0, 1, member.SubscriptionMemberID, &dto.VehicleInput{Name: "Car", PlateNumber: "ABC123"})
		require.NoError(t, err)

		require.NoError(t, session.RemoveVehicle(item.ID))
		assert.Empty(t, member.Vehicles)
	})
}

func TestResetAll(t *testing.T) {
	ctx := context.Background()
	session := newTestSession(t)

	_, err := session.AddAccount(ctx)
	require.NoError(t, err)
	_, err = session.AddPlan(ctx, 0)
	require.NoError(t, err)

	require.NoError(t, session.ResetAll(ctx))

	snap := session.Snapshot()
	require.Len(t, snap.Accounts, 1)
	assert.Equal(t, 1, snap.Accounts[0].AccountID)
	assert.Equal(t, 1, snap.Accounts[0].SubscriptionPlans[0].SubscriptionID)
}

func TestErrorKeysCarryAccountPrefix(t *testing.T) {
	session := newTestSession(t)

	email := "holder@example.com"
	require.NoError(t, session.UpdateAccount(0, &dto.AccountPatch{AccountEmail: &email}))

	errs := session.Snapshot().Errors
	assert.Contains(t, errs, "accounts[0].AccountFirstName")
	assert.Contains(t, errs, "accounts[0].subscriptionPlans[0].SubscriptionName")
	assert.NotContains(t, errs, "AccountFirstName")
}
