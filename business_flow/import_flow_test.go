package businessflow

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"testing"

	"github.com/lazparking/subscription-onboarding/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func csvArtifact(t *testing.T, rows [][]string) io.Reader {
	t.Helper()
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	require.NoError(t, w.WriteAll(rows))
	return buf
}

func xlsxArtifact(t *testing.T, rows [][]string) io.Reader {
	t.Helper()
	xl := excelize.NewFile()
	defer xl.Close()
	sheet := xl.GetSheetName(0)
	for i := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, xl.SetSheetRow(sheet, cellRef, &rows[i]))
	}
	buf, err := xl.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestImportAccounts(t *testing.T) {
	ctx := context.Background()

	header := []string{"First Name", "Last Name", "Email", "Phone", "Address1", "City", "State", "Country", "ZipCode", "Use Billing = Account? (Y/N)"}

	t.Run("OneAccountPerRowWithSequentialIDs", func(t *testing.T) {
		session := newTestSession(t)

		res, err := session.ImportAccounts(ctx, csvArtifact(t, [][]string{
			header,
			{"Avery", "Stone", "avery@example.com", "5551234567", "1 Main St", "Boston", "MA", "us", "02101", "Y"},
			{"Blake", "Reed", "blake@example.com", "", "", "", "", "", "", "N"},
		}), ImportFormatCSV)
		require.NoError(t, err)

		assert.Equal(t, 2, res.Total)
		assert.Equal(t, 2, res.Imported)
		assert.Equal(t, 0, res.Skipped)

		snap := session.Snapshot()
		require.Len(t, snap.Accounts, 3) // the starting account plus two imported
		avery := snap.Accounts[1]
		assert.Equal(t, 2, avery.AccountID)
		assert.Equal(t, "Avery", avery.AccountFirstName)
		assert.Equal(t, "(555)123-4567", avery.AccountPhone)
		assert.Equal(t, "US", avery.AccountCountry)
		assert.Equal(t, 3, snap.Accounts[2].AccountID)
		assert.Equal(t, 2, snap.ActiveAccountIndex)
	})

	t.Run("BillingFlagCopiesHolderFields", func(t *testing.T) {
		session := newTestSession(t)

		_, err := session.ImportAccounts(ctx, csvArtifact(t, [][]string{
			header,
			{"Avery", "Stone", "avery@example.com", "", "", "", "", "US", "", "Yes"},
			{"Blake", "Reed", "blake@example.com", "", "", "", "", "US", "", "N"},
		}), ImportFormatCSV)
		require.NoError(t, err)

		accounts := session.Snapshot().Accounts
		assert.Equal(t, "avery@example.com", accounts[1].AccountBillToEmail)
		assert.Empty(t, accounts[2].AccountBillToEmail)
	})

	t.Run("EachAccountGetsMirrorMemberOne", func(t *testing.T) {
		session := newTestSession(t)

		_, err := session.ImportAccounts(ctx, csvArtifact(t, [][]string{
			header,
			{"Avery", "Stone", "avery@example.com", "", "", "", "", "US", "", "N"},
		}), ImportFormatCSV)
		require.NoError(t, err)

		account := session.Snapshot().Accounts[1]
		require.Len(t, account.SubscriptionPlans, 1)
		members := account.SubscriptionPlans[0].SubscriptionMembers
		require.Len(t, members, 1)
		assert.Equal(t, 1, members[0].SubscriptionMemberID)
		assert.Equal(t, "Avery", members[0].FirstName)
		assert.Equal(t, account.SubscriptionPlans[0].SubscriptionID, members[0].SubscriptionID)
	})

	t.Run("EmptyRowsSkipped", func(t *testing.T) {
		session := newTestSession(t)

		res, err := session.ImportAccounts(ctx, csvArtifact(t, [][]string{
			header,
			{"Avery", "Stone", "avery@example.com", "", "", "", "", "", "", ""},
			{"", "", "", "", "", "", "", "", "", ""},
		}), ImportFormatCSV)
		require.NoError(t, err)

		assert.Equal(t, 1, res.Imported)
		assert.Equal(t, 1, res.Skipped)
	})

	t.Run("MissingRequiredColumnAborts", func(t *testing.T) {
		session := newTestSession(t)

		_, err := session.ImportAccounts(ctx, csvArtifact(t, [][]string{
			{"First Name", "Email"},
			{"Avery", "avery@example.com"},
		}), ImportFormatCSV)
		require.Error(t, err)
		assert.True(t, IsMissingRequiredColumns(err))
		assert.Len(t, session.Snapshot().Accounts, 1)
	})

	t.Run("EmptyFileRejected", func(t *testing.T) {
		session := newTestSession(t)
		_, err := session.ImportAccounts(ctx, bytes.NewReader(nil), ImportFormatCSV)
		assert.True(t, IsEmptyImport(err))
	})

	t.Run("HeaderLookupIgnoresCaseAndOrder", func(t *testing.T) {
		session := newTestSession(t)

		_, err := session.ImportAccounts(ctx, csvArtifact(t, [][]string{
			{"EMAIL", "last name", " First Name "},
			{"avery@example.com", "Stone", "Avery"},
		}), ImportFormatCSV)
		require.NoError(t, err)

		account := session.Snapshot().Accounts[1]
		assert.Equal(t, "Avery", account.AccountFirstName)
		assert.Equal(t, "Stone", account.AccountLastName)
	})

	t.Run("XLSXArtifactAccepted", func(t *testing.T) {
		session := newTestSession(t)

		res, err := session.ImportAccounts(ctx, xlsxArtifact(t, [][]string{
			{"First Name", "Last Name", "Email"},
			{"Avery", "Stone", "avery@example.com"},
		}), ImportFormatXLSX)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Imported)
	})
}

func TestImportParkers(t *testing.T) {
	ctx := context.Background()

	header := []string{"First Name", "Last Name", "Email", "Phone", "Rate Plan Name", "Subscription Plan ID",
		"Access Code 1", "Access Code Type 1", "Assigned Unit 1", "Vehicle 1 Name", "Vehicle 1 Plate Number"}

	t.Run("AppendsMembersToReferencedPlans", func(t *testing.T) {
		session := newTestSession(t)
		_, err := session.AddPlan(ctx, 0) // plan 2 with mirror member 1
		require.NoError(t, err)

		res, err := session.ImportParkers(ctx, csvArtifact(t, [][]string{
			header,
			{"Avery", "Stone", "avery@example.com", "5551234567", "Standard", "1", "A100", "permit", "12B", "Sedan", "XYZ987"},
			{"Blake", "Reed", "", "", "Premium", "2", "", "", "", "", ""},
		}), ImportFormatCSV)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Imported)

		account := session.Snapshot().Accounts[0]
		planOne := account.PlanByID(1)
		require.Len(t, planOne.SubscriptionMembers, 1)
		avery := planOne.SubscriptionMembers[0]
		assert.Equal(t, 2, avery.SubscriptionMemberID) // above the mirror member's ID
		assert.Equal(t, "(555)123-4567", avery.Phone)
		require.Len(t, avery.AccessCodes, 1)
		assert.Equal(t, "A100", avery.AccessCodes[0].Code)
		assert.Equal(t, models.AccessCodeTypePermit, avery.AccessCodes[0].Type)
		require.Len(t, avery.AssignedUnits, 1)
		assert.Equal(t, "12B", avery.AssignedUnits[0].Unit)
		require.Len(t, avery.Vehicles, 1)
		assert.Equal(t, "XYZ987", avery.Vehicles[0].PlateNumber)

		planTwo := account.PlanByID(2)
		require.Len(t, planTwo.SubscriptionMembers, 2)
		blake := planTwo.SubscriptionMembers[1]
		assert.Equal(t, 3, blake.SubscriptionMemberID)
		assert.Equal(t, "Blake", blake.FirstName)
	})

	t.Run("UnknownPlanRejectsWholeBatch", func(t *testing.T) {
		session := newTestSession(t)

		_, err := session.ImportParkers(ctx, csvArtifact(t, [][]string{
			header,
			{"Avery", "Stone", "avery@example.com", "", "Standard", "1", "", "", "", "", ""},
			{"Blake", "Reed", "", "", "Premium", "999", "", "", "", "", ""},
			{"Casey", "Wu", "", "", "Premium", "abc", "", "", "", "", ""},
		}), ImportFormatCSV)
		require.Error(t, err)

		refErr := AsImportReferenceError(err)
		require.NotNil(t, refErr)
		require.Len(t, refErr.Rows, 2)
		assert.Equal(t, 2, refErr.Rows[0].Row)
		assert.Equal(t, "999", refErr.Rows[0].Value)
		assert.Equal(t, 3, refErr.Rows[1].Row)
		assert.Contains(t, refErr.Report(), `Row 2: "999"`)

		// No member from any row was added.
		account := session.Snapshot().Accounts[0]
		assert.Empty(t, account.SubscriptionPlans[0].SubscriptionMembers)
	})

	t.Run("MissingColumnsReportedBeforeParsing", func(t *testing.T) {
		session := newTestSession(t)

		_, err := session.ImportParkers(ctx, csvArtifact(t, [][]string{
			{"First Name", "Email"},
			{"Avery", "avery@example.com"},
		}), ImportFormatCSV)
		require.Error(t, err)
		assert.True(t, IsMissingRequiredColumns(err))
		assert.Contains(t, err.Error(), "last name")
		assert.Contains(t, err.Error(), "rate plan name")
		assert.Contains(t, err.Error(), "subscription plan id")
	})

	t.Run("AllRowsEmptyRejected", func(t *testing.T) {
		session := newTestSession(t)

		_, err := session.ImportParkers(ctx, csvArtifact(t, [][]string{
			header,
			{"", "", "", "", "", "", "", "", "", "", ""},
		}), ImportFormatCSV)
		assert.True(t, IsEmptyImport(err))
	})

	t.Run("XLSXArtifactAccepted", func(t *testing.T) {
		session := newTestSession(t)

		res, err := session.ImportParkers(ctx, xlsxArtifact(t, [][]string{
			{"First Name", "Last Name", "Email", "Rate Plan Name", "Subscription Plan ID"},
			{"Avery", "Stone", "avery@example.com", "Standard", "1"},
		}), ImportFormatXLSX)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Imported)
	})
}

func TestImportRejectedWhileInProgress(t *testing.T) {
	ctx := context.Background()
	session := newTestSession(t)
	session.importInProgress = true

	_, err := session.ImportAccounts(ctx, csvArtifact(t, [][]string{
		{"First Name", "Last Name", "Email"},
		{"Jordan", "Stone", "jordan@example.com"},
	}), ImportFormatCSV)
	require.Error(t, err)
	assert.True(t, IsImportInProgress(err))
	assert.Len(t, session.accounts, 1)

	_, err = session.ImportParkers(ctx, csvArtifact(t, [][]string{
		{"First Name", "Last Name", "Email", "Rate Plan Name", "Subscription Plan ID"},
		{"Avery", "Stone", "avery@example.com", "Standard", "1"},
	}), ImportFormatCSV)
	require.Error(t, err)
	assert.True(t, IsImportInProgress(err))
}
