package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/usecase"
)

func dayKey(id string, t time.Time) string {
	return id + "|" + t.UTC().Format(time.DateOnly)
}

// MockLedgerAccountRepository is an in-memory LedgerAccountRepository.
type MockLedgerAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.LedgerAccount
	inUse    map[string]bool

	CreateFunc     func(ctx context.Context, tx usecase.Transaction, account *domain.LedgerAccount) error
	GetByCodeFunc  func(ctx context.Context, tx usecase.Transaction, code string) (*domain.LedgerAccount, error)
	DeleteFunc     func(ctx context.Context, tx usecase.Transaction, code string) error
	HasEntriesFunc func(ctx context.Context, tx usecase.Transaction, code string) (bool, error)
}

func NewMockLedgerAccountRepository() *MockLedgerAccountRepository {
	return &MockLedgerAccountRepository{
		accounts: make(map[string]*domain.LedgerAccount),
		inUse:    make(map[string]bool),
	}
}

// Add seeds an account.
func (m *MockLedgerAccountRepository) Add(accounts ...*domain.LedgerAccount) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range accounts {
		m.accounts[a.Code] = a
	}
}

// MarkInUse makes HasEntries report true for code.
func (m *MockLedgerAccountRepository) MarkInUse(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inUse[code] = true
}

func (m *MockLedgerAccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.LedgerAccount) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[account.Code]; ok {
		return domain.ErrAccountExists
	}
	m.accounts[account.Code] = account
	return nil
}

func (m *MockLedgerAccountRepository) GetByCode(ctx context.Context, tx usecase.Transaction, code string) (*domain.LedgerAccount, error) {
	if m.GetByCodeFunc != nil {
		return m.GetByCodeFunc(ctx, tx, code)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.accounts[code]; ok {
		return a, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockLedgerAccountRepository) List(ctx context.Context) ([]*domain.LedgerAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	accounts := make([]*domain.LedgerAccount, 0, len(m.accounts))
	for _, a := range m.accounts {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Code < accounts[j].Code })
	return accounts, nil
}

func (m *MockLedgerAccountRepository) Delete(ctx context.Context, tx usecase.Transaction, code string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tx, code)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[code]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(m.accounts, code)
	return nil
}

func (m *MockLedgerAccountRepository) HasEntries(ctx context.Context, tx usecase.Transaction, code string) (bool, error) {
	if m.HasEntriesFunc != nil {
		return m.HasEntriesFunc(ctx, tx, code)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inUse[code], nil
}

// MockJournalRepository is an in-memory JournalRepository.
type MockJournalRepository struct {
	mu      sync.RWMutex
	entries []*domain.JournalEntry

	CreateFunc      func(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error
	SumByPeriodFunc func(ctx context.Context, tx usecase.Transaction, periodKey string) (decimal.Decimal, decimal.Decimal, error)
}

func NewMockJournalRepository() *MockJournalRepository {
	return &MockJournalRepository{}
}

// Entries returns everything posted so far.
func (m *MockJournalRepository) Entries() []*domain.JournalEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.JournalEntry(nil), m.entries...)
}

func (m *MockJournalRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockJournalRepository) SumByPeriod(ctx context.Context, tx usecase.Transaction, periodKey string) (decimal.Decimal, decimal.Decimal, error) {
	if m.SumByPeriodFunc != nil {
		return m.SumByPeriodFunc(ctx, tx, periodKey)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	debits, credits := decimal.Zero, decimal.Zero
	for _, e := range m.entries {
		if e.PeriodKey == periodKey {
			debits = debits.Add(e.Debit)
			credits = credits.Add(e.Credit)
		}
	}
	return debits, credits, nil
}

func (m *MockJournalRepository) SumByAccountForPeriod(ctx context.Context, periodKey string) ([]domain.AccountTotals, error) {
	return m.sumWhere(func(e *domain.JournalEntry) bool { return e.PeriodKey == periodKey }), nil
}

func (m *MockJournalRepository) SumByAccountBetween(ctx context.Context, start, end time.Time) ([]domain.AccountTotals, error) {
	return m.sumWhere(func(e *domain.JournalEntry) bool {
		return !e.TransactionDate.Before(start) && e.TransactionDate.Before(end)
	}), nil
}

func (m *MockJournalRepository) SumByAccountUntil(ctx context.Context, asOf time.Time) ([]domain.AccountTotals, error) {
	return m.sumWhere(func(e *domain.JournalEntry) bool { return e.TransactionDate.Before(asOf) }), nil
}

func (m *MockJournalRepository) sumWhere(match func(*domain.JournalEntry) bool) []domain.AccountTotals {
	m.mu.RLock()
	defer m.mu.RUnlock()
	byCode := make(map[string]*domain.AccountTotals)
	var order []string
	for _, e := range m.entries {
		if !match(e) {
			continue
		}
		t, ok := byCode[e.AccountCode]
		if !ok {
			t = &domain.AccountTotals{AccountCode: e.AccountCode, Debits: decimal.Zero, Credits: decimal.Zero}
			byCode[e.AccountCode] = t
			order = append(order, e.AccountCode)
		}
		t.Debits = t.Debits.Add(e.Debit)
		t.Credits = t.Credits.Add(e.Credit)
	}
	totals := make([]domain.AccountTotals, 0, len(order))
	for _, code := range order {
		totals = append(totals, *byCode[code])
	}
	return totals
}

// MockFiscalPeriodRepository is an in-memory FiscalPeriodRepository. It
// hands out copies so callers cannot change stored state without Update.
type MockFiscalPeriodRepository struct {
	mu      sync.RWMutex
	periods map[string]*domain.FiscalPeriod

	GetForUpdateFunc func(ctx context.Context, tx usecase.Transaction, period domain.Period) (*domain.FiscalPeriod, error)
	UpdateFunc       func(ctx context.Context, tx usecase.Transaction, fp *domain.FiscalPeriod) error
}

func NewMockFiscalPeriodRepository() *MockFiscalPeriodRepository {
	return &MockFiscalPeriodRepository{
		periods: make(map[string]*domain.FiscalPeriod),
	}
}

// Add seeds a period record.
func (m *MockFiscalPeriodRepository) Add(fp *domain.FiscalPeriod) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *fp
	m.periods[fp.Period().Key()] = &c
}

// Stored returns a copy of the stored record, or nil.
func (m *MockFiscalPeriodRepository) Stored(period domain.Period) *domain.FiscalPeriod {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fp, ok := m.periods[period.Key()]
	if !ok {
		return nil
	}
	c := *fp
	return &c
}

func (m *MockFiscalPeriodRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction, period domain.Period) (*domain.FiscalPeriod, error) {
	if m.GetForUpdateFunc != nil {
		return m.GetForUpdateFunc(ctx, tx, period)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	fp, ok := m.periods[period.Key()]
	if !ok {
		now := time.Now().UTC()
		fp = &domain.FiscalPeriod{
			ID:        "period-" + period.Key(),
			Month:     period.Month,
			Year:      period.Year,
			Status:    domain.PeriodStatusOpen,
			CreatedAt: now,
			UpdatedAt: now,
		}
		m.periods[period.Key()] = fp
	}
	c := *fp
	return &c, nil
}

func (m *MockFiscalPeriodRepository) Get(ctx context.Context, tx usecase.Transaction, period domain.Period) (*domain.FiscalPeriod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fp, ok := m.periods[period.Key()]
	if !ok {
		return nil, domain.ErrPeriodNotFound
	}
	c := *fp
	return &c, nil
}

func (m *MockFiscalPeriodRepository) Update(ctx context.Context, tx usecase.Transaction, fp *domain.FiscalPeriod) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, fp)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := fp.Period().Key()
	if _, ok := m.periods[key]; !ok {
		return domain.ErrPeriodNotFound
	}
	c := *fp
	m.periods[key] = &c
	return nil
}

func (m *MockFiscalPeriodRepository) List(ctx context.Context, limit, offset int) ([]*domain.FiscalPeriod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	periods := make([]*domain.FiscalPeriod, 0, len(m.periods))
	for _, fp := range m.periods {
		c := *fp
		periods = append(periods, &c)
	}
	sort.Slice(periods, func(i, j int) bool {
		return periods[i].Period().Key() > periods[j].Period().Key()
	})
	if offset >= len(periods) {
		return []*domain.FiscalPeriod{}, nil
	}
	periods = periods[offset:]
	if limit < len(periods) {
		periods = periods[:limit]
	}
	return periods, nil
}

// MockLoanRepository is an in-memory LoanRepository.
type MockLoanRepository struct {
	mu    sync.RWMutex
	loans map[string]*domain.Loan

	ListByStatusesFunc func(ctx context.Context, tx usecase.Transaction, statuses []domain.LoanStatus) ([]*domain.Loan, error)
	UpdateBalancesFunc func(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error
	UpdateStatusFunc   func(ctx context.Context, tx usecase.Transaction, id string, status domain.LoanStatus, updatedAt time.Time) error
}

func NewMockLoanRepository() *MockLoanRepository {
	return &MockLoanRepository{
		loans: make(map[string]*domain.Loan),
	}
}

// Add seeds loans.
func (m *MockLoanRepository) Add(loans ...*domain.Loan) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range loans {
		c := *l
		m.loans[l.ID] = &c
	}
}

func (m *MockLoanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.loans[id]
	if !ok {
		return nil, domain.ErrLoanNotFound
	}
	c := *l
	return &c, nil
}

func (m *MockLoanRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Loan, error) {
	return m.GetByID(ctx, id)
}

func (m *MockLoanRepository) ListByStatuses(ctx context.Context, tx usecase.Transaction, statuses []domain.LoanStatus) ([]*domain.Loan, error) {
	if m.ListByStatusesFunc != nil {
		return m.ListByStatusesFunc(ctx, tx, statuses)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	want := make(map[domain.LoanStatus]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}
	var loans []*domain.Loan
	for _, l := range m.loans {
		if want[l.Status] {
			c := *l
			loans = append(loans, &c)
		}
	}
	sort.Slice(loans, func(i, j int) bool { return loans[i].ID < loans[j].ID })
	return loans, nil
}

func (m *MockLoanRepository) UpdateBalances(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	if m.UpdateBalancesFunc != nil {
		return m.UpdateBalancesFunc(ctx, tx, loan)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.loans[loan.ID]; !ok {
		return domain.ErrLoanNotFound
	}
	c := *loan
	m.loans[loan.ID] = &c
	return nil
}

func (m *MockLoanRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.LoanStatus, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.loans[id]
	if !ok {
		return domain.ErrLoanNotFound
	}
	l.Status = status
	l.UpdatedAt = updatedAt
	return nil
}

func (m *MockLoanRepository) ListOverdue(ctx context.Context, tx usecase.Transaction, now time.Time) ([]*domain.Loan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var loans []*domain.Loan
	for _, l := range m.loans {
		if l.Status == domain.LoanStatusActive && l.MaturityDate != nil && l.MaturityDate.Before(now) {
			c := *l
			loans = append(loans, &c)
		}
	}
	sort.Slice(loans, func(i, j int) bool { return loans[i].ID < loans[j].ID })
	return loans, nil
}

// MockLoanPaymentRepository is an in-memory LoanPaymentRepository.
type MockLoanPaymentRepository struct {
	mu       sync.RWMutex
	payments []*domain.LoanPayment

	ListCompletedBetweenFunc func(ctx context.Context, tx usecase.Transaction, loanID string, start, end time.Time, types []domain.PaymentType) ([]*domain.LoanPayment, error)
}

func NewMockLoanPaymentRepository() *MockLoanPaymentRepository {
	return &MockLoanPaymentRepository{}
}

// Payments returns everything stored.
func (m *MockLoanPaymentRepository) Payments() []*domain.LoanPayment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.LoanPayment(nil), m.payments...)
}

func (m *MockLoanPaymentRepository) Create(ctx context.Context, tx usecase.Transaction, payment *domain.LoanPayment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments = append(m.payments, payment)
	return nil
}

func (m *MockLoanPaymentRepository) ListCompletedBetween(ctx context.Context, tx usecase.Transaction, loanID string, start, end time.Time, types []domain.PaymentType) ([]*domain.LoanPayment, error) {
	if m.ListCompletedBetweenFunc != nil {
		return m.ListCompletedBetweenFunc(ctx, tx, loanID, start, end, types)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	want := make(map[domain.PaymentType]bool, len(types))
	for _, t := range types {
		want[t] = true
	}
	var out []*domain.LoanPayment
	for _, p := range m.payments {
		if p.LoanID != loanID || p.Status != domain.PaymentStatusCompleted || !want[p.PaymentType] {
			continue
		}
		if p.PaymentDate.Before(start) || !p.PaymentDate.Before(end) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *MockLoanPaymentRepository) SumInterestPaidByMember(ctx context.Context, tx usecase.Transaction, memberID string, year int) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := decimal.Zero
	for _, p := range m.payments {
		if p.MemberID == memberID && p.Status == domain.PaymentStatusCompleted && p.PaymentDate.Year() == year {
			total = total.Add(p.InterestPaid)
		}
	}
	return total, nil
}

// MockLoanSnapshotRepository is an in-memory LoanSnapshotRepository keyed by
// (loan, balance date).
type MockLoanSnapshotRepository struct {
	mu        sync.RWMutex
	snapshots map[string]*domain.LoanBalanceSnapshot

	CreateFunc func(ctx context.Context, tx usecase.Transaction, snapshot *domain.LoanBalanceSnapshot) error
}

func NewMockLoanSnapshotRepository() *MockLoanSnapshotRepository {
	return &MockLoanSnapshotRepository{
		snapshots: make(map[string]*domain.LoanBalanceSnapshot),
	}
}

// Count returns the number of stored snapshots.
func (m *MockLoanSnapshotRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.snapshots)
}

func (m *MockLoanSnapshotRepository) Exists(ctx context.Context, tx usecase.Transaction, loanID string, balanceDate time.Time) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.snapshots[dayKey(loanID, balanceDate)]
	return ok, nil
}

func (m *MockLoanSnapshotRepository) Create(ctx context.Context, tx usecase.Transaction, snapshot *domain.LoanBalanceSnapshot) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, snapshot)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := dayKey(snapshot.LoanID, snapshot.BalanceDate)
	if _, ok := m.snapshots[key]; ok {
		return domain.ErrSnapshotExists
	}
	m.snapshots[key] = snapshot
	return nil
}

func (m *MockLoanSnapshotRepository) ListByDate(ctx context.Context, balanceDate time.Time) ([]*domain.LoanBalanceSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	day := balanceDate.UTC().Format(time.DateOnly)
	var out []*domain.LoanBalanceSnapshot
	for _, s := range m.snapshots {
		if s.BalanceDate.UTC().Format(time.DateOnly) == day {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LoanID < out[j].LoanID })
	return out, nil
}

func (m *MockLoanSnapshotRepository) MarkVerified(ctx context.Context, tx usecase.Transaction, balanceDate time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	day := balanceDate.UTC().Format(time.DateOnly)
	var n int64
	for _, s := range m.snapshots {
		if s.BalanceDate.UTC().Format(time.DateOnly) == day && !s.Verified {
			s.Verified = true
			n++
		}
	}
	return n, nil
}

// MockSavingAccountRepository is an in-memory SavingAccountRepository.
type MockSavingAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.SavingAccount

	// LockedIDs records every id list passed to GetByIDsForUpdate.
	LockedIDs [][]string

	UpdateBalanceFunc func(ctx context.Context, tx usecase.Transaction, account *domain.SavingAccount) error
}

func NewMockSavingAccountRepository() *MockSavingAccountRepository {
	return &MockSavingAccountRepository{
		accounts: make(map[string]*domain.SavingAccount),
	}
}

// Add seeds accounts.
func (m *MockSavingAccountRepository) Add(accounts ...*domain.SavingAccount) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range accounts {
		c := *a
		m.accounts[a.ID] = &c
	}
}

// Stored returns a copy of the stored account, or nil.
func (m *MockSavingAccountRepository) Stored(id string) *domain.SavingAccount {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil
	}
	c := *a
	return &c
}

func (m *MockSavingAccountRepository) ListActive(ctx context.Context, tx usecase.Transaction) ([]*domain.SavingAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.SavingAccount
	for _, a := range m.accounts {
		if a.Active {
			c := *a
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockSavingAccountRepository) GetByMember(ctx context.Context, tx usecase.Transaction, memberID string) (*domain.SavingAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.accounts {
		if a.MemberID == memberID {
			c := *a
			return &c, nil
		}
	}
	return nil, domain.ErrSavingAccountNotFound
}

func (m *MockSavingAccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.SavingAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LockedIDs = append(m.LockedIDs, append([]string(nil), ids...))
	var out []*domain.SavingAccount
	for _, id := range ids {
		if a, ok := m.accounts[id]; ok {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *MockSavingAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, account *domain.SavingAccount) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[account.ID]; !ok {
		return domain.ErrSavingAccountNotFound
	}
	c := *account
	m.accounts[account.ID] = &c
	return nil
}

// MockSavingSnapshotRepository is an in-memory SavingSnapshotRepository.
type MockSavingSnapshotRepository struct {
	mu        sync.RWMutex
	snapshots map[string]*domain.SavingBalanceSnapshot
}

func NewMockSavingSnapshotRepository() *MockSavingSnapshotRepository {
	return &MockSavingSnapshotRepository{
		snapshots: make(map[string]*domain.SavingBalanceSnapshot),
	}
}

// Count returns the number of stored snapshots.
func (m *MockSavingSnapshotRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.snapshots)
}

func (m *MockSavingSnapshotRepository) Exists(ctx context.Context, tx usecase.Transaction, accountID string, balanceDate time.Time) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.snapshots[dayKey(accountID, balanceDate)]
	return ok, nil
}

func (m *MockSavingSnapshotRepository) Create(ctx context.Context, tx usecase.Transaction, snapshot *domain.SavingBalanceSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := dayKey(snapshot.SavingAccountID, snapshot.BalanceDate)
	if _, ok := m.snapshots[key]; ok {
		return domain.ErrSnapshotExists
	}
	m.snapshots[key] = snapshot
	return nil
}

// MockMemberRepository is an in-memory MemberRepository.
type MockMemberRepository struct {
	mu      sync.RWMutex
	members []*domain.Member
}

func NewMockMemberRepository(members ...*domain.Member) *MockMemberRepository {
	return &MockMemberRepository{members: members}
}

func (m *MockMemberRepository) ListActive(ctx context.Context, tx usecase.Transaction) ([]*domain.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Member
	for _, mem := range m.members {
		if mem.Active {
			out = append(out, mem)
		}
	}
	return out, nil
}

// MockDividendRepository is an in-memory DividendRepository.
type MockDividendRepository struct {
	mu            sync.RWMutex
	distributions map[int]*domain.DividendDistribution
	recipients    map[string][]*domain.DividendRecipient

	CreateRecipientFunc func(ctx context.Context, tx usecase.Transaction, recipient *domain.DividendRecipient) error
}

func NewMockDividendRepository() *MockDividendRepository {
	return &MockDividendRepository{
		distributions: make(map[int]*domain.DividendDistribution),
		recipients:    make(map[string][]*domain.DividendRecipient),
	}
}

// Recipients returns the stored recipients of a distribution.
func (m *MockDividendRepository) Recipients(distributionID string) []*domain.DividendRecipient {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.DividendRecipient(nil), m.recipients[distributionID]...)
}

func (m *MockDividendRepository) GetByYear(ctx context.Context, year int) (*domain.DividendDistribution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.distributions[year]
	if !ok {
		return nil, domain.ErrDistributionNotFound
	}
	c := *d
	return &c, nil
}

func (m *MockDividendRepository) GetByYearForUpdate(ctx context.Context, tx usecase.Transaction, year int) (*domain.DividendDistribution, error) {
	return m.GetByYear(ctx, year)
}

func (m *MockDividendRepository) Create(ctx context.Context, tx usecase.Transaction, dist *domain.DividendDistribution) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.distributions[dist.Year]; ok {
		return domain.ErrDistributionExists
	}
	c := *dist
	m.distributions[dist.Year] = &c
	return nil
}

func (m *MockDividendRepository) Update(ctx context.Context, tx usecase.Transaction, dist *domain.DividendDistribution) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.distributions[dist.Year]; !ok {
		return domain.ErrDistributionNotFound
	}
	c := *dist
	m.distributions[dist.Year] = &c
	return nil
}

func (m *MockDividendRepository) CreateRecipient(ctx context.Context, tx usecase.Transaction, recipient *domain.DividendRecipient) error {
	if m.CreateRecipientFunc != nil {
		return m.CreateRecipientFunc(ctx, tx, recipient)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.recipients[recipient.DistributionID] {
		if r.MemberID == recipient.MemberID {
			return fmt.Errorf("%w: recipient for member %s", domain.ErrConflict, recipient.MemberID)
		}
	}
	c := *recipient
	m.recipients[recipient.DistributionID] = append(m.recipients[recipient.DistributionID], &c)
	return nil
}

func (m *MockDividendRepository) ListRecipients(ctx context.Context, tx usecase.Transaction, distributionID string) ([]*domain.DividendRecipient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.DividendRecipient, 0, len(m.recipients[distributionID]))
	for _, r := range m.recipients[distributionID] {
		c := *r
		out = append(out, &c)
	}
	return out, nil
}

func (m *MockDividendRepository) MarkRecipientPaid(ctx context.Context, tx usecase.Transaction, id string, paidAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rs := range m.recipients {
		for _, r := range rs {
			if r.ID == id {
				at := paidAt
				r.PaidAt = &at
				return nil
			}
		}
	}
	return fmt.Errorf("%w: dividend recipient %s", domain.ErrNotFound, id)
}

// MockOutboxRepository is an in-memory OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

// Events returns every stored event.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.OutboxEvent(nil), m.events...)
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published {
			out = append(out, e)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			at := publishedAt
			e.Published = true
			e.PublishedAt = &at
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.events[:0]
	for _, e := range m.events {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	m.events = kept
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager. It
// keeps every transaction it began.
type MockTransactionManager struct {
	mu           sync.Mutex
	Transactions []*MockTransaction

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	tx := &MockTransaction{}
	m.mu.Lock()
	m.Transactions = append(m.Transactions, tx)
	m.mu.Unlock()
	return tx, nil
}

// Commits returns how many transactions committed.
func (m *MockTransactionManager) Commits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, tx := range m.Transactions {
		if tx.Committed {
			n++
		}
	}
	return n
}

// MockTransaction is a mock implementation of Transaction. Rollback after a
// commit is a no-op, as with pgx.
type MockTransaction struct {
	Committed  bool
	RolledBack bool

	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		if err := m.CommitFunc(ctx); err != nil {
			return err
		}
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	if !m.Committed {
		m.RolledBack = true
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%04d", m.counter)
}

// MockRetrier runs the operation up to Attempts times while RetryIf accepts
// the error. The zero value runs it once.
type MockRetrier struct {
	Attempts int
	RetryIf  func(error) bool
	Calls    int
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	attempts := m.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		m.Calls++
		if err = operation(); err == nil {
			return nil
		}
		if m.RetryIf == nil || !m.RetryIf(err) {
			return err
		}
	}
	return err
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}
