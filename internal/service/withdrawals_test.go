package service

import (
	"context"
	"testing"

	"referral_network/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fundedMember seeds a member whose wallet holds the given buckets
func fundedMember(t *testing.T, f *fixture, direct, indirect string) *domain.Member {
	t.Helper()
	m := seedMember(t, f.db, domain.RoleUser)
	require.NoError(t, f.ledger.Credit(f.db, m.ID, domain.BucketDirect, dec(direct), nil))
	require.NoError(t, f.ledger.Credit(f.db, m.ID, domain.BucketIndirect, dec(indirect), nil))
	return m
}

func TestSplitDeduction(t *testing.T) {
	tests := []struct {
		amount, deduction, net string
	}{
		{"120", "9.6", "110.4"},
		{"100", "8", "92"},
		{"0.5", "0.04", "0.46"},
		{"33.33", "2.67", "30.66"},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			deduction, net := SplitDeduction(dec(tt.amount))
			assertAmount(t, tt.deduction, deduction)
			assertAmount(t, tt.net, net)
			assertAmount(t, tt.amount, deduction.Add(net))
		})
	}
}

func TestCreateWithdrawalPending(t *testing.T) {
	f := newFixture(t)
	m := fundedMember(t, f, "100", "50")

	w, err := f.withdrawals.Create(context.Background(), m.ID, dec("120"))
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalPending, w.Status)
	assert.Equal(t, m.ID, w.MemberID)
	assertAmount(t, "120", w.Amount)
	assertAmount(t, "9.6", w.Deduction)
	assertAmount(t, "110.4", w.NetAmount)

	// requesting does not move money
	wallet, ok := walletOf(t, f.db, m.ID)
	require.True(t, ok)
	assertAmount(t, "100", wallet.DirectIncome)
	assertAmount(t, "50", wallet.IndirectIncome)
}

func TestCreateWithdrawalRejections(t *testing.T) {
	f := newFixture(t)
	poor := fundedMember(t, f, "60", "39.99")
	rich := fundedMember(t, f, "100", "0")
	noWallet := seedMember(t, f.db, domain.RoleUser)

	tests := []struct {
		name     string
		memberID uint
		amount   string
		want     error
	}{
		{"below minimum", poor.ID, "50", ErrBelowMinimumBalance},
		{"no wallet", noWallet.ID, "50", ErrWalletNotFound},
		{"zero amount", rich.ID, "0", ErrInvalidAmount},
		{"negative amount", rich.ID, "-5", ErrInvalidAmount},
		{"sub-cent amount", rich.ID, "0.001", ErrInvalidAmount},
		{"three decimal places", rich.ID, "10.005", ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.withdrawals.Create(context.Background(), tt.memberID, dec(tt.amount))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	var n int64
	require.NoError(t, f.db.Model(&domain.Withdrawal{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCreateWithdrawalAcceptsTrailingZeros(t *testing.T) {
	f := newFixture(t)
	m := fundedMember(t, f, "150", "0")

	w, err := f.withdrawals.Create(context.Background(), m.ID, dec("10.500"))
	require.NoError(t, err)
	assertAmount(t, "10.5", w.Amount)
	assertAmount(t, "0.84", w.Deduction)
	assertAmount(t, "9.66", w.NetAmount)
}

func TestApproveDebitsDirectFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := seedMember(t, f.db, domain.RoleAdmin)
	m := fundedMember(t, f, "100", "50")
	w, err := f.withdrawals.Create(ctx, m.ID, dec("120"))
	require.NoError(t, err)

	approved, err := f.withdrawals.Decide(ctx, w.ID, admin.ID, domain.WithdrawalApproved)
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalApproved, approved.Status)
	require.NotNil(t, approved.ApprovedAt)
	require.NotNil(t, approved.DecidedBy)
	assert.Equal(t, admin.ID, *approved.DecidedBy)

	wallet, ok := walletOf(t, f.db, m.ID)
	require.True(t, ok)
	assertAmount(t, "0", wallet.DirectIncome)
	assertAmount(t, "30", wallet.IndirectIncome)

	var entries []domain.WalletEntry
	require.NoError(t, f.db.Where("withdrawal_id = ?", w.ID).Order("id").Find(&entries).Error)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.BucketDirect, entries[0].Bucket)
	assertAmount(t, "-100", entries[0].Amount)
	assert.Equal(t, domain.BucketIndirect, entries[1].Bucket)
	assertAmount(t, "-20", entries[1].Amount)

	_, err = f.withdrawals.Approve(ctx, w.ID, admin.ID)
	assert.ErrorIs(t, err, ErrWithdrawalFinalized)
	_, err = f.withdrawals.Deny(ctx, w.ID, admin.ID)
	assert.ErrorIs(t, err, ErrWithdrawalFinalized)

	wallet, _ = walletOf(t, f.db, m.ID)
	assertAmount(t, "0", wallet.DirectIncome)
	assertAmount(t, "30", wallet.IndirectIncome)
}

func TestDenyLeavesBalances(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := seedMember(t, f.db, domain.RoleAdmin)
	m := fundedMember(t, f, "100", "50")
	w, err := f.withdrawals.Create(ctx, m.ID, dec("120"))
	require.NoError(t, err)

	denied, err := f.withdrawals.Decide(ctx, w.ID, admin.ID, domain.WithdrawalDenied)
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalDenied, denied.Status)
	assert.NotNil(t, denied.DeniedAt)
	assert.Nil(t, denied.ApprovedAt)

	wallet, _ := walletOf(t, f.db, m.ID)
	assertAmount(t, "100", wallet.DirectIncome)
	assertAmount(t, "50", wallet.IndirectIncome)

	_, err = f.withdrawals.Approve(ctx, w.ID, admin.ID)
	assert.ErrorIs(t, err, ErrWithdrawalFinalized)
}

func TestApproveInsufficientFundsStaysPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := seedMember(t, f.db, domain.RoleAdmin)
	m := fundedMember(t, f, "100", "50")
	first, err := f.withdrawals.Create(ctx, m.ID, dec("120"))
	require.NoError(t, err)
	second, err := f.withdrawals.Create(ctx, m.ID, dec("100"))
	require.NoError(t, err)

	_, err = f.withdrawals.Approve(ctx, first.ID, admin.ID)
	require.NoError(t, err)
	_, err = f.withdrawals.Approve(ctx, second.ID, admin.ID)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	var stored domain.Withdrawal
	require.NoError(t, f.db.First(&stored, second.ID).Error)
	assert.Equal(t, domain.WithdrawalPending, stored.Status)
	wallet, _ := walletOf(t, f.db, m.ID)
	assertAmount(t, "30", wallet.IndirectIncome)
}

func TestDecideRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := seedMember(t, f.db, domain.RoleAdmin)
	m := fundedMember(t, f, "150", "0")
	w, err := f.withdrawals.Create(ctx, m.ID, dec("10"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		id      uint
		actorID uint
		status  string
		want    error
	}{
		{"member cannot approve", w.ID, m.ID, domain.WithdrawalApproved, ErrNotAuthorized},
		{"unknown actor", w.ID, 99999, domain.WithdrawalDenied, ErrNotAuthorized},
		{"unknown request", 99999, admin.ID, domain.WithdrawalApproved, ErrWithdrawalNotFound},
		{"pending is not a decision", w.ID, admin.ID, domain.WithdrawalPending, ErrInvalidStatus},
		{"garbage status", w.ID, admin.ID, "maybe", ErrInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.withdrawals.Decide(ctx, tt.id, tt.actorID, tt.status)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	var stored domain.Withdrawal
	require.NoError(t, f.db.First(&stored, w.ID).Error)
	assert.Equal(t, domain.WithdrawalPending, stored.Status)
}

func TestApproveInvalidatesCachedBalance(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	gdb := newTestDB(t)
	ledger := NewLedger(gdb, rdb, 0)
	withdrawals := NewWithdrawalService(gdb, ledger)
	ctx := context.Background()

	admin := seedMember(t, gdb, domain.RoleAdmin)
	m := seedMember(t, gdb, domain.RoleUser)
	require.NoError(t, ledger.Credit(gdb, m.ID, domain.BucketDirect, dec("200"), nil))

	b, err := ledger.GetBalance(ctx, m.ID)
	require.NoError(t, err)
	assertAmount(t, "200", b.Total)
	assert.True(t, mr.Exists(balanceCacheKey(m.ID)))

	w, err := withdrawals.Create(ctx, m.ID, dec("50"))
	require.NoError(t, err)
	_, err = withdrawals.Approve(ctx, w.ID, admin.ID)
	require.NoError(t, err)
	assert.False(t, mr.Exists(balanceCacheKey(m.ID)))

	b, err = ledger.GetBalance(ctx, m.ID)
	require.NoError(t, err)
	assertAmount(t, "150", b.Total)
}

func TestListWithdrawals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := seedMember(t, f.db, domain.RoleAdmin)
	m := fundedMember(t, f, "500", "0")

	var ids []uint
	for i := 0; i < 5; i++ {
		w, err := f.withdrawals.Create(ctx, m.ID, dec("10"))
		require.NoError(t, err)
		ids = append(ids, w.ID)
	}
	_, err := f.withdrawals.Approve(ctx, ids[0], admin.ID)
	require.NoError(t, err)
	_, err = f.withdrawals.Deny(ctx, ids[1], admin.ID)
	require.NoError(t, err)

	page, err := f.withdrawals.List(ctx, admin.ID, WithdrawalFilter{Status: domain.WithdrawalPending})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PageSize)
	for _, w := range page.Withdrawals {
		assert.Equal(t, domain.WithdrawalPending, w.Status)
	}

	page, err = f.withdrawals.List(ctx, admin.ID, WithdrawalFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Withdrawals, 2)

	_, err = f.withdrawals.List(ctx, m.ID, WithdrawalFilter{})
	assert.ErrorIs(t, err, ErrNotAuthorized)

	mine, err := f.withdrawals.ForMember(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, mine, 5)
	assert.Equal(t, ids[4], mine[0].ID)
}
