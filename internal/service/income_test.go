package service

import (
	"testing"

	"referral_network/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierForPrice(t *testing.T) {
	tier, err := TierForPrice(decimal.NewFromInt(60))
	require.NoError(t, err)
	assert.Equal(t, TierLow, tier)

	tier, err = TierForPrice(decimal.RequireFromString("120.00"))
	require.NoError(t, err)
	assert.Equal(t, TierMid, tier)

	tier, err = TierForPrice(decimal.NewFromInt(250))
	require.NoError(t, err)
	assert.Equal(t, TierHigh, tier)

	_, err = TierForPrice(decimal.NewFromInt(61))
	assert.ErrorIs(t, err, ErrInvalidTier)
}

func TestBonusTableDefaultsFromLevelTen(t *testing.T) {
	for _, tier := range []PriceTier{TierLow, TierMid, TierHigh} {
		table, err := BonusTableFor(tier)
		require.NoError(t, err)
		for level := 1; level <= 9; level++ {
			assert.True(t, table.For(level).IsPositive(), "%s level %d", tier, level)
		}
		assert.True(t, table.Default.Equal(table.For(10)))
		assert.True(t, table.Default.Equal(table.For(42)))
	}
	_, err := BonusTableFor(PriceTier(99))
	assert.ErrorIs(t, err, ErrInvalidTier)
}

func TestDistributeWithoutSpillover(t *testing.T) {
	f := newFixture(t)
	referrer := seedMember(t, f.db, domain.RoleUser)
	pkg := packageByPrice(t, f.db, 60)

	p, err := Distribute(f.db, f.ledger, referrer, referrer, pkg, 99)
	require.NoError(t, err)
	assertAmount(t, "25", p.Direct) // level 1 bonus 5 + base 20
	assertAmount(t, "0", p.Indirect)

	w, ok := walletOf(t, f.db, referrer.ID)
	require.True(t, ok)
	assertAmount(t, "25", w.DirectIncome)
	assertAmount(t, "0", w.IndirectIncome)
}

func TestDistributeSpilloverSameLevel(t *testing.T) {
	f := newFixture(t)
	referrer := seedMember(t, f.db, domain.RoleUser)
	parent := seedMember(t, f.db, domain.RoleUser)
	referrer.Level, parent.Level = 2, 2
	pkg := packageByPrice(t, f.db, 120)

	p, err := Distribute(f.db, f.ledger, parent, referrer, pkg, 99)
	require.NoError(t, err)
	assertAmount(t, "60", p.Direct) // level 2 bonus 20 + base 40
	assertAmount(t, "20", p.Indirect)

	pw, ok := walletOf(t, f.db, parent.ID)
	require.True(t, ok)
	assertAmount(t, "60", pw.DirectIncome)

	rw, ok := walletOf(t, f.db, referrer.ID)
	require.True(t, ok)
	assertAmount(t, "0", rw.DirectIncome)
	assertAmount(t, "20", rw.IndirectIncome)
}

func TestDistributeSpilloverDifferentLevel(t *testing.T) {
	f := newFixture(t)
	referrer := seedMember(t, f.db, domain.RoleUser)
	parent := seedMember(t, f.db, domain.RoleUser)
	referrer.Level, parent.Level = 3, 1
	pkg := packageByPrice(t, f.db, 250)

	p, err := Distribute(f.db, f.ledger, parent, referrer, pkg, 99)
	require.NoError(t, err)
	assertAmount(t, "100", p.Direct) // level 1 bonus 20 + base 80
	assertAmount(t, "0", p.Indirect)

	_, ok := walletOf(t, f.db, referrer.ID)
	assert.False(t, ok, "referrer on another level earns nothing")
}

func TestDistributeIsAdditive(t *testing.T) {
	f := newFixture(t)
	referrer := seedMember(t, f.db, domain.RoleUser)
	pkg := packageByPrice(t, f.db, 60)

	for i := 0; i < 3; i++ {
		_, err := Distribute(f.db, f.ledger, referrer, referrer, pkg, uint(100+i))
		require.NoError(t, err)
	}
	w, _ := walletOf(t, f.db, referrer.ID)
	assertAmount(t, "75", w.DirectIncome)

	var entries int64
	require.NoError(t, f.db.Model(&domain.WalletEntry{}).Where("member_id = ?", referrer.ID).Count(&entries).Error)
	assert.Equal(t, int64(3), entries)
}

func TestDistributeRejectsUnknownTier(t *testing.T) {
	f := newFixture(t)
	referrer := seedMember(t, f.db, domain.RoleUser)
	pkg := &domain.Package{Name: "Odd", Price: decimal.NewFromInt(75), BaseDirectIncome: decimal.NewFromInt(1)}

	_, err := Distribute(f.db, f.ledger, referrer, referrer, pkg, 1)
	assert.ErrorIs(t, err, ErrInvalidTier)
}
