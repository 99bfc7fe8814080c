package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriod_Bounds(t *testing.T) {
	tests := []struct {
		period   Period
		key      string
		wantEnd  time.Time
		wantDays int
	}{
		{period: Period{Month: 1, Year: 2025}, key: "2025-01", wantEnd: time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), wantDays: 31},
		{period: Period{Month: 2, Year: 2024}, key: "2024-02", wantEnd: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), wantDays: 29},
		{period: Period{Month: 4, Year: 2025}, key: "2025-04", wantEnd: time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC), wantDays: 30},
		{period: Period{Month: 12, Year: 2025}, key: "2025-12", wantEnd: time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), wantDays: 31},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.key, tt.period.Key())
			assert.Equal(t, tt.wantEnd, tt.period.End())
			assert.Equal(t, tt.wantDays, tt.period.Days())
			assert.Equal(t, tt.wantDays, tt.period.Window().Days())
		})
	}
}

func TestParsePeriodKey(t *testing.T) {
	p, err := ParsePeriodKey("2025-03")
	require.NoError(t, err)
	assert.Equal(t, Period{Month: 3, Year: 2025}, p)

	for _, bad := range []string{"2025-13", "2025/03", "", "25-03"} {
		_, err := ParsePeriodKey(bad)
		if !errors.Is(err, ErrInvalidPeriod) {
			t.Errorf("ParsePeriodKey(%q) = %v, want ErrInvalidPeriod", bad, err)
		}
	}
}

func TestNewPeriod_Validation(t *testing.T) {
	_, err := NewPeriod(0, 2025)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewPeriod(6, 1800)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestWindow_Contains(t *testing.T) {
	w := Period{Month: 3, Year: 2025}.Window()

	assert.True(t, w.Contains(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, w.Contains(time.Date(2025, 3, 31, 23, 59, 0, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2025, 2, 28, 23, 0, 0, 0, time.UTC)))
}

func TestFiscalPeriod_Lifecycle(t *testing.T) {
	now := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	fp := &FiscalPeriod{Month: 3, Year: 2025, Status: PeriodStatusOpen}

	assert.ErrorIs(t, fp.Confirm("alice", now), ErrPeriodNotClosed)

	require.NoError(t, fp.Close("alice", now))
	assert.True(t, fp.IsClosed())
	assert.Equal(t, "alice", fp.ClosedBy)
	assert.ErrorIs(t, fp.Close("bob", now), ErrPeriodAlreadyClosed)

	require.NoError(t, fp.Confirm("bob", now))
	assert.True(t, fp.IsConfirmed())
	assert.ErrorIs(t, fp.Confirm("bob", now), ErrPeriodAlreadyConfirmed)
}

func TestTrialBalanceError_IsValidation(t *testing.T) {
	err := &TrialBalanceError{PeriodKey: "2025-03", Debits: d("100"), Credits: d("90"), Variance: d("10")}

	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "debits=100.00 credits=90.00")

	var tbErr *TrialBalanceError
	assert.True(t, errors.As(error(err), &tbErr))
}

func TestDividendDistribution_Approve(t *testing.T) {
	now := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	dist := &DividendDistribution{Year: 2025, Status: DistributionStatusPending}

	require.NoError(t, dist.Approve("alice", now))
	assert.True(t, dist.IsApproved())
	assert.ErrorIs(t, dist.Approve("alice", now), ErrDistributionAlreadyApproved)
}
