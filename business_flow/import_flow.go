// Package businessflow contains the core business logic and use cases for subscription onboarding workflows
package businessflow

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lazparking/subscription-onboarding/app/dto"
	"github.com/lazparking/subscription-onboarding/models"
	"github.com/lazparking/subscription-onboarding/utils"
	"github.com/xuri/excelize/v2"
)

// Import formats accepted by both templates.
const (
	ImportFormatXLSX = "xlsx"
	ImportFormatCSV  = "csv"
)

// ImportFlow parses tabular artifacts back into the hierarchy. Both templates
// map cells by case-insensitive, trimmed header-name lookup, never by column
// position, so reordering template columns is tolerated; renaming or omitting
// a required column is not.
type ImportFlow interface {
	// ImportAccounts creates one new account (with one plan and one member)
	// per data row of the account template. New IDs are allocated and
	// reserved per row, not batched.
	ImportAccounts(ctx context.Context, reader io.Reader, format string) (*dto.ImportAccountsResponse, error)
	// ImportParkers appends members to existing plans of the currently
	// selected account. If any row references an unknown plan ID the whole
	// batch is rejected with a per-row report and no state change.
	ImportParkers(ctx context.Context, reader io.Reader, format string) (*dto.ImportParkersResponse, error)
}

func (s *SessionFlowImpl) ImportAccounts(ctx context.Context, reader io.Reader, format string) (*dto.ImportAccountsResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The mutex serializes imports; concurrent callers queue rather than
	// observe the flag. It is kept as part of the status contract so the
	// snapshot and the rejection path stay stable if parsing ever moves
	// outside the critical section.
	if s.importInProgress {
		return nil, ErrImportInProgress
	}
	s.importInProgress = true
	defer func() { s.importInProgress = false }()

	grid, err := readGrid(reader, format)
	if err != nil {
		return nil, err
	}
	header, dataRows, err := splitHeader(grid)
	if err != nil {
		return nil, err
	}
	cols := headerIndex(header)

	firstIdx, ok := columnIndex(cols, "first name", "firstname", "account first name")
	if !ok {
		return nil, missingColumns("first name")
	}
	lastIdx, ok := columnIndex(cols, "last name", "lastname", "account last name")
	if !ok {
		return nil, missingColumns("last name")
	}
	emailIdx, ok := columnIndex(cols, "email", "account email")
	if !ok {
		return nil, missingColumns("email")
	}

	phoneIdx, _ := columnIndex(cols, "phone", "phone number")
	address1Idx, _ := columnIndex(cols, "address1", "address 1")
	address2Idx, _ := columnIndex(cols, "address2", "address 2")
	cityIdx, _ := columnIndex(cols, "city")
	stateIdx, _ := columnIndex(cols, "state")
	countryIdx, _ := columnIndex(cols, "country")
	zipIdx, _ := columnIndex(cols, "zipcode", "zip code", "zip")
	billingIdx, hasBilling := billingFlagIndex(cols)

	imported := 0
	skipped := 0
	for _, row := range dataRows {
		if rowEmpty(row) {
			skipped++
			continue
		}

		account, err := s.newAccount(ctx)
		if err != nil {
			return nil, err
		}
		account.AccountFirstName = cellAt(row, firstIdx)
		account.AccountLastName = cellAt(row, lastIdx)
		account.AccountEmail = cellAt(row, emailIdx)
		account.AccountPhone = FormatPhone(cellAt(row, phoneIdx))
		account.AccountAddress1 = cellAt(row, address1Idx)
		account.AccountAddress2 = cellAt(row, address2Idx)
		account.AccountCity = cellAt(row, cityIdx)
		account.AccountState = cellAt(row, stateIdx)
		account.AccountCountry = strings.ToUpper(cellAt(row, countryIdx))
		account.AccountZipCode = cellAt(row, zipIdx)

		// A Y-prefixed flag copies the holder fields into billing verbatim;
		// anything else leaves billing empty.
		if hasBilling && strings.HasPrefix(strings.ToLower(cellAt(row, billingIdx)), "y") {
			account.CopyBillingFromHolder()
		}

		plan := account.SubscriptionPlans[0]
		plan.SubscriptionMembers = append(plan.SubscriptionMembers, &models.Member{
			SubscriptionMemberID: 1,
			SubscriptionID:       plan.SubscriptionID,
			FirstName:            account.AccountFirstName,
			LastName:             account.AccountLastName,
			Email:                account.AccountEmail,
			Phone:                account.AccountPhone,
			AccessCodes:          []models.AccessCode{},
			AssignedUnits:        []models.AssignedUnit{},
			Vehicles:             []models.Vehicle{},
			CreatedAt:            utils.UTCNow(),
		})

		s.accounts = append(s.accounts, account)
		imported++
	}

	if imported > 0 {
		s.activeIdx = len(s.accounts) - 1
	}
	s.revalidate()
	s.importMessage = fmt.Sprintf("Imported %d account(s), skipped %d empty row(s)", imported, skipped)

	return &dto.ImportAccountsResponse{
		Message:  s.importMessage,
		Total:    len(dataRows),
		Imported: imported,
		Skipped:  skipped,
	}, nil
}

// parkerRow is one parsed member-template row before insertion.
type parkerRow struct {
	num    int // 1-indexed data row, header excluded
	planID int
	member *models.Member
}

func (s *SessionFlowImpl) ImportParkers(ctx context.Context, reader io.Reader, format string) (*dto.ImportParkersResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.importInProgress {
		return nil, ErrImportInProgress
	}
	s.importInProgress = true
	defer func() { s.importInProgress = false }()

	if s.activeIdx < 0 || s.activeIdx >= len(s.accounts) {
		return nil, ErrAccountIndexOutOfRange
	}
	account := s.accounts[s.activeIdx]

	grid, err := readGrid(reader, format)
	if err != nil {
		return nil, err
	}
	header, dataRows, err := splitHeader(grid)
	if err != nil {
		return nil, err
	}
	cols := headerIndex(header)

	// All required columns are checked before any row is parsed.
	required := []struct {
		label string
		names []string
	}{
		{"first name", []string{"first name", "firstname"}},
		{"last name", []string{"last name", "lastname"}},
		{"email", []string{"email"}},
		{"rate plan name", []string{"rate plan name", "rateplan name", "rate plan"}},
		{"subscription plan id", []string{"subscription plan id", "subscription id", "plan id"}},
	}
	indexes := make(map[string]int, len(required))
	var missing []string
	for _, col := range required {
		idx, ok := columnIndex(cols, col.names...)
		if !ok {
			missing = append(missing, col.label)
			continue
		}
		indexes[col.label] = idx
	}
	if len(missing) > 0 {
		return nil, missingColumns(missing...)
	}

	phoneIdx, _ := columnIndex(cols, "phone", "phone number")

	parsed := make([]parkerRow, 0, len(dataRows))
	var badRows []ImportRowError
	rowNum := 0
	for _, row := range dataRows {
		rowNum++
		if rowEmpty(row) {
			continue
		}

		planValue := cellAt(row, indexes["subscription plan id"])
		planID, convErr := strconv.Atoi(planValue)
		if convErr != nil || account.PlanByID(planID) == nil {
			badRows = append(badRows, ImportRowError{Row: rowNum, Value: planValue})
			continue
		}

		member := &models.Member{
			SubscriptionID: planID,
			FirstName:      cellAt(row, indexes["first name"]),
			LastName:       cellAt(row, indexes["last name"]),
			Email:          cellAt(row, indexes["email"]),
			Phone:          FormatPhone(cellAt(row, phoneIdx)),

			SubscriptionMemberRateplanName: cellAt(row, indexes["rate plan name"]),

			AccessCodes:   parseAccessCodes(cols, row),
			AssignedUnits: parseAssignedUnits(cols, row),
			Vehicles:      parseVehicles(cols, row),
			CreatedAt:     utils.UTCNow(),
		}
		parsed = append(parsed, parkerRow{num: rowNum, planID: planID, member: member})
	}

	// Partial success is disallowed: one bad reference rejects every row so
	// no orphaned members are silently created.
	if len(badRows) > 0 {
		return nil, &ImportReferenceError{Rows: badRows}
	}
	if len(parsed) == 0 {
		return nil, ErrEmptyImport
	}

	// Fresh member IDs start above the account's current maximum and are
	// assigned in row order; rows group to their target plan by append order.
	nextMemberID := account.MaxMemberID() + 1
	for _, pr := range parsed {
		pr.member.SubscriptionMemberID = nextMemberID
		nextMemberID++
		plan := account.PlanByID(pr.planID)
		plan.SubscriptionMembers = append(plan.SubscriptionMembers, pr.member)
	}

	s.revalidate()
	s.importMessage = fmt.Sprintf("Imported %d member(s) into account %d", len(parsed), account.AccountID)

	return &dto.ImportParkersResponse{
		Message:  s.importMessage,
		Total:    rowNum,
		Imported: len(parsed),
	}, nil
}

func parseAccessCodes(cols map[string]int, row []string) []models.AccessCode {
	codes := make([]models.AccessCode, 0, models.MaxAccessCodesPerMember)
	for i := 1; i <= models.MaxAccessCodesPerMember; i++ {
		codeIdx, ok := columnIndex(cols, fmt.Sprintf("access code %d", i))
		if !ok {
			continue
		}
		code := cellAt(row, codeIdx)
		if code == "" {
			continue
		}
		typeIdx, _ := columnIndex(cols, fmt.Sprintf("access code type %d", i))
		codes = append(codes, models.AccessCode{
			ID:   models.NewItemID(),
			Code: code,
			Type: strings.ToUpper(cellAt(row, typeIdx)),
		})
	}
	return codes
}

func parseAssignedUnits(cols map[string]int, row []string) []models.AssignedUnit {
	unitIdx, ok := columnIndex(cols, "assigned unit 1", "assigned unit")
	if !ok {
		return []models.AssignedUnit{}
	}
	unit := cellAt(row, unitIdx)
	if unit == "" {
		return []models.AssignedUnit{}
	}
	return []models.AssignedUnit{{ID: models.NewItemID(), Unit: unit}}
}

func parseVehicles(cols map[string]int, row []string) []models.Vehicle {
	vehicles := make([]models.Vehicle, 0, models.MaxVehiclesPerMember)
	for i := 1; i <= models.MaxVehiclesPerMember; i++ {
		nameIdx, hasName := columnIndex(cols, fmt.Sprintf("vehicle %d name", i))
		plateIdx, hasPlate := columnIndex(cols, fmt.Sprintf("vehicle %d plate number", i))
		if !hasName && !hasPlate {
			continue
		}
		name := cellAt(row, nameIdx)
		plate := cellAt(row, plateIdx)
		if name == "" && plate == "" {
			continue
		}

		stateIdx, _ := columnIndex(cols, fmt.Sprintf("vehicle %d state", i))
		colorIdx, _ := columnIndex(cols, fmt.Sprintf("vehicle %d color", i))
		makeIdx, _ := columnIndex(cols, fmt.Sprintf("vehicle %d make", i))
		modelIdx, _ := columnIndex(cols, fmt.Sprintf("vehicle %d model", i))
		vehicles = append(vehicles, models.Vehicle{
			ID:          models.NewItemID(),
			Name:        name,
			PlateNumber: plate,
			State:       cellAt(row, stateIdx),
			Color:       cellAt(row, colorIdx),
			Make:        cellAt(row, makeIdx),
			Model:       cellAt(row, modelIdx),
		})
	}
	return vehicles
}

// readGrid loads the whole artifact into an in-memory grid. Parsing is a
// blocking, non-streaming operation; the bridge only sees the grid or the
// failure.
func readGrid(reader io.Reader, format string) ([][]string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", ImportFormatXLSX:
		xl, err := excelize.OpenReader(reader)
		if err != nil {
			return nil, NewBusinessError("EXCEL_READ_ERROR", "Failed to open workbook", err)
		}
		defer func() { _ = xl.Close() }()
		rows, err := xl.GetRows(xl.GetSheetName(0))
		if err != nil {
			return nil, NewBusinessError("EXCEL_READ_ERROR", "Failed to read workbook rows", err)
		}
		return rows, nil
	case ImportFormatCSV:
		r := csv.NewReader(bufio.NewReader(reader))
		r.TrimLeadingSpace = true
		r.FieldsPerRecord = -1
		rows, err := r.ReadAll()
		if err != nil {
			return nil, NewBusinessError("CSV_READ_ERROR", "Failed to read CSV", err)
		}
		return rows, nil
	default:
		return nil, NewBusinessError("UNSUPPORTED_FORMAT", fmt.Sprintf("Unsupported import format %q", format), nil)
	}
}

func splitHeader(grid [][]string) ([]string, [][]string, error) {
	if len(grid) == 0 {
		return nil, nil, ErrEmptyImport
	}
	return grid[0], grid[1:], nil
}

// headerIndex maps lowercased, trimmed header names to column positions.
func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return cols
}

// columnIndex returns the position of the first matching header name.
func columnIndex(cols map[string]int, names ...string) (int, bool) {
	for _, name := range names {
		if idx, ok := cols[name]; ok {
			return idx, true
		}
	}
	return -1, false
}

// billingFlagIndex tolerates punctuation drift in the legacy flag header
// ("use billing = account? (Y/N)").
func billingFlagIndex(cols map[string]int) (int, bool) {
	for name, idx := range cols {
		if strings.HasPrefix(name, "use billing") {
			return idx, true
		}
	}
	return -1, false
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func missingColumns(names ...string) error {
	return NewBusinessError(
		"IMPORT_HEADER_ERROR",
		fmt.Sprintf("Import file must contain column(s): %s", strings.Join(names, ", ")),
		ErrMissingRequiredColumns,
	)
}
