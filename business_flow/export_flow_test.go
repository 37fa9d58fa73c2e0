package businessflow

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"testing"

	"github.com/lazparking/subscription-onboarding/models"
	"github.com/lazparking/subscription-onboarding/repository"
	testingutil "github.com/lazparking/subscription-onboarding/testing"
	"github.com/lazparking/subscription-onboarding/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func todayISO() string {
	return utils.UTCNowFormat("2006-01-02")
}

func TestExportColumns(t *testing.T) {
	// 34 scalar columns + 3 access code pairs + 1 assigned unit + 3 vehicles
	// of 6 fields each.
	assert.Len(t, ExportColumns, 34+6+1+18)
	assert.Equal(t, "AccountId", ExportColumns[0])
	assert.Equal(t, "AccountLastName", ExportColumns[3])
	assert.Equal(t, "SubscriptionId", ExportColumns[23])
	assert.Equal(t, "SubscriptionMemberId", ExportColumns[28])
	assert.Equal(t, "AccessCode1", ExportColumns[34])
	assert.Equal(t, "AssignedUnit1", ExportColumns[40])
	assert.Equal(t, "Vehicle1Name", ExportColumns[41])
	assert.Equal(t, "Vehicle3Model", ExportColumns[len(ExportColumns)-1])
}

func TestFlatten(t *testing.T) {
	t.Run("OneRowPerMemberInMemoryOrder", func(t *testing.T) {
		first := testingutil.ValidAccount(1, 1)
		first.SubscriptionPlans = append(first.SubscriptionPlans, testingutil.ValidPlan(2, first))
		first.SubscriptionPlans[1].SubscriptionMembers = append(first.SubscriptionPlans[1].SubscriptionMembers,
			testingutil.ValidMember(2, 2, first))
		second := testingutil.ValidAccount(2, 3)

		rows := Flatten([]*models.Account{first, second})

		require.Len(t, rows, 4)
		assert.Equal(t, []string{"1", "1", "1"}, []string{rows[0][0], rows[0][23], rows[0][28]})
		assert.Equal(t, []string{"1", "2", "1"}, []string{rows[1][0], rows[1][23], rows[1][28]})
		assert.Equal(t, []string{"1", "2", "2"}, []string{rows[2][0], rows[2][23], rows[2][28]})
		assert.Equal(t, []string{"2", "3", "1"}, []string{rows[3][0], rows[3][23], rows[3][28]})
	})

	t.Run("EveryRowCarriesEveryColumn", func(t *testing.T) {
		account := testingutil.ValidAccount(1, 1)
		member := account.SubscriptionPlans[0].SubscriptionMembers[0]
		member.AccessCodes = []models.AccessCode{{ID: models.NewItemID(), Code: "A1", Type: models.AccessCodeTypePermit}}
		member.Vehicles = []models.Vehicle{{ID: models.NewItemID(), Name: "Car", PlateNumber: "XYZ987", State: "MA", Color: "Blue", Make: "Honda", Model: "Civic"}}

		rows := Flatten([]*models.Account{account})

		require.Len(t, rows, 1)
		require.Len(t, rows[0], len(ExportColumns))
		assert.Equal(t, "A1", rows[0][34])
		assert.Equal(t, models.AccessCodeTypePermit, rows[0][35])
		assert.Empty(t, rows[0][36]) // unused second access code slot
		assert.Equal(t, "Car", rows[0][41])
		assert.Equal(t, "XYZ987", rows[0][42])
		assert.Empty(t, rows[0][47]) // unused second vehicle slot
	})
}

func newExportableSession(t *testing.T) *SessionFlowImpl {
	t.Helper()
	session := newTestSession(t)
	account := testingutil.ValidAccount(1, 1)
	session.accounts = []*models.Account{account}
	session.revalidate()
	return session
}

func TestExportCSV(t *testing.T) {
	ctx := context.Background()

	t.Run("ArtifactRoundTrips", func(t *testing.T) {
		session := newExportableSession(t)

		filename, data, err := session.ExportCSV(ctx)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("subscription_Holder1_%s.csv", todayISO()), filename)

		records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, ExportColumns, records[0])
		assert.Equal(t, "1", records[1][0])
		assert.Equal(t, "Holder1", records[1][3])
	})

	t.Run("ValidationErrorsBlockExport", func(t *testing.T) {
		session := newTestSession(t) // fresh session is not export-ready

		_, _, err := session.ExportCSV(ctx)
		require.Error(t, err)
		assert.True(t, IsValidationFailed(err))

		errs := session.Snapshot().Errors
		assert.Contains(t, errs, "accounts[0].AccountFirstName")
	})

	t.Run("SuccessfulExportCommitsActiveIDs", func(t *testing.T) {
		store := testingutil.NewIDSetStore()
		allocator := NewIdentifierAllocator(store)
		session := NewSessionFlow(allocator)
		require.NoError(t, session.StartSession(ctx))
		session.accounts = []*models.Account{testingutil.ValidAccount(1, 1)}
		session.revalidate()

		_, _, err := session.ExportCSV(ctx)
		require.NoError(t, err)

		submitted, err := store.Get(ctx, repository.KeySubmittedAccountIDs)
		require.NoError(t, err)
		assert.Equal(t, []int{1}, submitted)
		active, err := store.Get(ctx, repository.KeyActiveAccountIDs)
		require.NoError(t, err)
		assert.Empty(t, active)

		// The next session continues above the committed IDs.
		next, err := allocator.NextAccountID(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, next)
	})

	t.Run("FailedExportSkipsCommit", func(t *testing.T) {
		store := testingutil.NewIDSetStore()
		allocator := NewIdentifierAllocator(store)
		session := NewSessionFlow(allocator)
		require.NoError(t, session.StartSession(ctx))

		_, _, err := session.ExportCSV(ctx)
		require.Error(t, err)

		submitted, err := store.Get(ctx, repository.KeySubmittedAccountIDs)
		require.NoError(t, err)
		assert.Empty(t, submitted)
	})
}

func TestExportWorkbook(t *testing.T) {
	ctx := context.Background()
	session := newExportableSession(t)

	filename, data, err := session.ExportWorkbook(ctx)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("subscription_Holder1_%s.xlsx", todayISO()), filename)

	xl, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer xl.Close()

	rows, err := xl.GetRows(xl.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "AccountId", rows[0][0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "Holder1", rows[1][3])
}
