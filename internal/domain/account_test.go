package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCategoryFromCode(t *testing.T) {
	tests := []struct {
		code        string
		want        AccountCategory
		expectError bool
	}{
		{code: "1100", want: CategoryAsset},
		{code: "2100", want: CategoryLiability},
		{code: "3100", want: CategoryEquity},
		{code: "4100", want: CategoryIncome},
		{code: "5100", want: CategoryExpense},
		{code: "6100", expectError: true},
		{code: "x1", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, err := CategoryFromCode(tt.code)

			if tt.expectError {
				if !errors.Is(err, ErrInvalidAccountCode) {
					t.Fatalf("expected ErrInvalidAccountCode, got %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("CategoryFromCode(%q) = %s, want %s", tt.code, got, tt.want)
			}
		})
	}
}

func TestLedgerAccount_Validate(t *testing.T) {
	parent := "1000"
	otherParent := "2000"

	tests := []struct {
		name        string
		account     LedgerAccount
		expectError bool
	}{
		{
			name:    "valid asset",
			account: LedgerAccount{Code: "1100", Name: "Cash"},
		},
		{
			name:    "category matches code",
			account: LedgerAccount{Code: "4100", Name: "Interest Income", Category: CategoryIncome},
		},
		{
			name:        "category disagrees with code",
			account:     LedgerAccount{Code: "4100", Name: "Interest Income", Category: CategoryExpense},
			expectError: true,
		},
		{
			name:    "parent in same category",
			account: LedgerAccount{Code: "1100", Name: "Cash", ParentCode: &parent},
		},
		{
			name:        "parent in another category",
			account:     LedgerAccount{Code: "1100", Name: "Cash", ParentCode: &otherParent},
			expectError: true,
		},
		{
			name:        "blank name",
			account:     LedgerAccount{Code: "1100", Name: " "},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.account.Validate()

			if tt.expectError && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestAccountTotals_Net(t *testing.T) {
	totals := AccountTotals{Debits: decimal.NewFromInt(300), Credits: decimal.NewFromInt(100)}

	if got := totals.Net(CategoryAsset); !got.Equal(decimal.NewFromInt(200)) {
		t.Errorf("asset net = %s, want 200", got)
	}
	if got := totals.Net(CategoryIncome); !got.Equal(decimal.NewFromInt(-200)) {
		t.Errorf("income net = %s, want -200", got)
	}
}

func TestJournalEntry_Validate(t *testing.T) {
	tests := []struct {
		name    string
		entry   JournalEntry
		wantErr error
	}{
		{
			name:  "debit only",
			entry: JournalEntry{Debit: decimal.NewFromInt(10), ReferenceType: ReferenceManual},
		},
		{
			name:  "credit only",
			entry: JournalEntry{Credit: decimal.NewFromInt(10), ReferenceType: ReferencePayment},
		},
		{
			name:    "both sides",
			entry:   JournalEntry{Debit: decimal.NewFromInt(10), Credit: decimal.NewFromInt(10), ReferenceType: ReferenceManual},
			wantErr: ErrInvalidEntry,
		},
		{
			name:    "neither side",
			entry:   JournalEntry{ReferenceType: ReferenceManual},
			wantErr: ErrInvalidEntry,
		},
		{
			name:    "negative side",
			entry:   JournalEntry{Debit: decimal.NewFromInt(-10), ReferenceType: ReferenceManual},
			wantErr: ErrInvalidEntry,
		},
		{
			name:    "unknown reference",
			entry:   JournalEntry{Debit: decimal.NewFromInt(10), ReferenceType: "TRANSFER"},
			wantErr: ErrInvalidReferenceType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
