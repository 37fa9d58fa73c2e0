// Package businessflow contains the core business logic and use cases for subscription onboarding workflows
package businessflow

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/lazparking/subscription-onboarding/models"
	"github.com/lazparking/subscription-onboarding/utils"
	"github.com/xuri/excelize/v2"
)

// ExportFlow produces the flattened legacy artifact from the session
// hierarchy. A successful export commits the active ID sets to submitted; an
// artifact failure skips the commit so the session can retry without ID
// drift.
type ExportFlow interface {
	ExportWorkbook(ctx context.Context) (string, []byte, error)
	ExportCSV(ctx context.Context) (string, []byte, error)
}

// ExportColumns is the fixed, total column enumeration of the legacy tabular
// layout. Every export row carries every column (empty beyond the populated
// counts) so downstream consumers can rely on schema stability.
var ExportColumns = buildExportColumns()

func buildExportColumns() []string {
	cols := []string{
		"AccountId",
		"AccountType",
		"AccountFirstName",
		"AccountLastName",
		"AccountEmail",
		"AccountPhone",
		"AccountAddress1",
		"AccountAddress2",
		"AccountCity",
		"AccountState",
		"AccountCountry",
		"AccountZipCode",
		"AccountDefaultLanguage",
		"AccountBillToFirstName",
		"AccountBillToLastName",
		"AccountBillToEmail",
		"AccountBillToPhone",
		"AccountBillToAddress1",
		"AccountBillToAddress2",
		"AccountBillToCity",
		"AccountBillToState",
		"AccountBillToCountry",
		"AccountBillToZipCode",
		"SubscriptionId",
		"SubscriptionName",
		"SubscriptionType",
		"SubscriptionEffectiveDate",
		"SubscriptionInvoiceTemplate",
		"SubscriptionMemberId",
		"SubscriptionMemberFirstName",
		"SubscriptionMemberLastName",
		"SubscriptionMemberEmail",
		"SubscriptionMemberPhone",
		"SubscriptionMemberRateplanName",
	}
	for i := 1; i <= models.MaxAccessCodesPerMember; i++ {
		cols = append(cols, fmt.Sprintf("AccessCode%d", i), fmt.Sprintf("AccessCodeType%d", i))
	}
	cols = append(cols, "AssignedUnit1")
	for i := 1; i <= models.MaxVehiclesPerMember; i++ {
		cols = append(cols,
			fmt.Sprintf("Vehicle%dName", i),
			fmt.Sprintf("Vehicle%dPlateNumber", i),
			fmt.Sprintf("Vehicle%dState", i),
			fmt.Sprintf("Vehicle%dColor", i),
			fmt.Sprintf("Vehicle%dMake", i),
			fmt.Sprintf("Vehicle%dModel", i),
		)
	}
	return cols
}

// Flatten produces one row per (account × plan × member) triple in memory
// order: account order, then plan order, then member order, no implicit sort.
// Shared account and plan fields repeat on every row of the plan.
func Flatten(accounts []*models.Account) [][]string {
	rows := make([][]string, 0)
	for _, account := range accounts {
		for _, plan := range account.SubscriptionPlans {
			for _, member := range plan.SubscriptionMembers {
				rows = append(rows, flattenMember(account, plan, member))
			}
		}
	}
	return rows
}

func flattenMember(account *models.Account, plan *models.SubscriptionPlan, member *models.Member) []string {
	row := make([]string, 0, len(ExportColumns))
	row = append(row,
		strconv.Itoa(account.AccountID),
		account.AccountType,
		account.AccountFirstName,
		account.AccountLastName,
		account.AccountEmail,
		account.AccountPhone,
		account.AccountAddress1,
		account.AccountAddress2,
		account.AccountCity,
		account.AccountState,
		account.AccountCountry,
		account.AccountZipCode,
		account.AccountDefaultLanguage,
		account.AccountBillToFirstName,
		account.AccountBillToLastName,
		account.AccountBillToEmail,
		account.AccountBillToPhone,
		account.AccountBillToAddress1,
		account.AccountBillToAddress2,
		account.AccountBillToCity,
		account.AccountBillToState,
		account.AccountBillToCountry,
		account.AccountBillToZipCode,
		strconv.Itoa(plan.SubscriptionID),
		plan.SubscriptionName,
		plan.SubscriptionType,
		plan.SubscriptionEffectiveDate,
		plan.SubscriptionInvoiceTemplate,
		strconv.Itoa(member.SubscriptionMemberID),
		member.FirstName,
		member.LastName,
		member.Email,
		member.Phone,
		member.SubscriptionMemberRateplanName,
	)

	for i := 0; i < models.MaxAccessCodesPerMember; i++ {
		if i < len(member.AccessCodes) {
			row = append(row, member.AccessCodes[i].Code, member.AccessCodes[i].Type)
		} else {
			row = append(row, "", "")
		}
	}

	if len(member.AssignedUnits) > 0 {
		row = append(row, member.AssignedUnits[0].Unit)
	} else {
		row = append(row, "")
	}

	for i := 0; i < models.MaxVehiclesPerMember; i++ {
		if i < len(member.Vehicles) {
			v := member.Vehicles[i]
			row = append(row, v.Name, v.PlateNumber, v.State, v.Color, v.Make, v.Model)
		} else {
			row = append(row, "", "", "", "", "", "")
		}
	}

	return row
}

// ExportWorkbook flattens the session into a single-sheet xlsx artifact.
// Validation errors across any account block the export; the durable ID
// commit happens only after the artifact bytes exist.
func (s *SessionFlowImpl) ExportWorkbook(ctx context.Context) (string, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.prepareExport()
	if err != nil {
		return "", nil, err
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := xl.GetSheetName(0)
	header := ExportColumns
	if err := xl.SetSheetRow(sheet, "A1", &header); err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write workbook header", err)
	}
	for ri := range rows {
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		if err := xl.SetSheetRow(sheet, cellRef, &rows[ri]); err != nil {
			return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write workbook row", err)
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write workbook", err)
	}

	if err := s.allocator.CommitActiveToSubmitted(ctx); err != nil {
		return "", nil, NewBusinessError("COMMIT_IDS_FAILED", "Export succeeded but committing IDs failed", err)
	}
	return s.exportFilename(rows, "xlsx"), buf.Bytes(), nil
}

// ExportCSV is the CSV variant of the export artifact.
func (s *SessionFlowImpl) ExportCSV(ctx context.Context) (string, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.prepareExport()
	if err != nil {
		return "", nil, err
	}

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(ExportColumns); err != nil {
		return "", nil, NewBusinessError("CSV_WRITE_ERROR", "Failed to write CSV header", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return "", nil, NewBusinessError("CSV_WRITE_ERROR", "Failed to write CSV row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", nil, NewBusinessError("CSV_WRITE_ERROR", "Failed to flush CSV", err)
	}

	if err := s.allocator.CommitActiveToSubmitted(ctx); err != nil {
		return "", nil, NewBusinessError("COMMIT_IDS_FAILED", "Export succeeded but committing IDs failed", err)
	}
	return s.exportFilename(rows, "csv"), buf.Bytes(), nil
}

// prepareExport validates every account and flattens the session; callers
// hold the session lock.
func (s *SessionFlowImpl) prepareExport() ([][]string, error) {
	errs := make(map[string]string)
	for i, account := range s.accounts {
		prefix := fmt.Sprintf("accounts[%d].", i)
		for field, msg := range ValidateAccount(account) {
			errs[prefix+field] = msg
		}
		for path, msg := range ValidateSubscriptionPlans(account.SubscriptionPlans) {
			errs[prefix+path] = msg
		}
	}
	if len(errs) > 0 {
		s.errors = errs
		return nil, NewBusinessError("VALIDATION_ERROR", fmt.Sprintf("%d field(s) failed validation", len(errs)), ErrValidationFailed)
	}

	return Flatten(s.accounts), nil
}

// exportFilename follows the legacy pattern
// subscription_{lastNameOfFirstRow|"export"}_{ISO-date}.{ext}.
func (s *SessionFlowImpl) exportFilename(rows [][]string, ext string) string {
	name := "export"
	if len(rows) > 0 {
		if lastName := strings.TrimSpace(rows[0][3]); lastName != "" {
			name = lastName
		}
	}
	return fmt.Sprintf("subscription_%s_%s.%s", name, utils.UTCNowFormat("2006-01-02"), ext)
}
