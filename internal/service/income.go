package service

import (
	"errors"

	"referral_network/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PriceTier is the package price point that selects a bonus table
type PriceTier int

const (
	TierLow PriceTier = iota + 1
	TierMid
	TierHigh
)

func (t PriceTier) String() string {
	switch t {
	case TierLow:
		return "low"
	case TierMid:
		return "mid"
	case TierHigh:
		return "high"
	}
	return "unknown"
}

// tierPrices is the package price that identifies each tier
var tierPrices = map[PriceTier]decimal.Decimal{
	TierLow:  decimal.NewFromInt(60),
	TierMid:  decimal.NewFromInt(120),
	TierHigh: decimal.NewFromInt(250),
}

// TierForPrice maps a package price onto its tier
func TierForPrice(price decimal.Decimal) (PriceTier, error) {
	for tier, p := range tierPrices {
		if p.Equal(price) {
			return tier, nil
		}
	}
	return 0, ErrInvalidTier
}

// BonusTable holds the bonus per level 1 through 9 and the amount paid from level 10 on
type BonusTable struct {
	PerLevel [9]decimal.Decimal
	Default  decimal.Decimal
}

// For returns the bonus for level
func (b BonusTable) For(level int) decimal.Decimal {
	if level >= 1 && level <= len(b.PerLevel) {
		return b.PerLevel[level-1]
	}
	return b.Default
}

func ints(vals ...int64) [9]decimal.Decimal {
	var out [9]decimal.Decimal
	for i, v := range vals {
		out[i] = decimal.NewFromInt(v)
	}
	return out
}

var bonusTables = map[PriceTier]BonusTable{
	TierLow:  {PerLevel: ints(5, 10, 15, 20, 25, 30, 35, 40, 45), Default: decimal.NewFromInt(50)},
	TierMid:  {PerLevel: ints(10, 20, 30, 40, 50, 60, 70, 80, 90), Default: decimal.NewFromInt(100)},
	TierHigh: {PerLevel: ints(20, 40, 60, 80, 100, 120, 140, 160, 180), Default: decimal.NewFromInt(200)},
}

// BonusTableFor returns the bonus table of a tier
func BonusTableFor(tier PriceTier) (BonusTable, error) {
	t, ok := bonusTables[tier]
	if !ok {
		return BonusTable{}, ErrInvalidTier
	}
	return t, nil
}

// GetPackage is the catalog lookup used while distributing income
func GetPackage(tx *gorm.DB, id uint) (*domain.Package, error) {
	var pkg domain.Package
	if err := tx.First(&pkg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidTier
		}
		return nil, infra("load package", err)
	}
	return &pkg, nil
}

// Payout records what one registration credited
type Payout struct {
	Tier       PriceTier       `json:"tier"`
	ParentID   uint            `json:"parent_id"`
	Direct     decimal.Decimal `json:"direct"`
	ReferrerID uint            `json:"referrer_id"`
	Indirect   decimal.Decimal `json:"indirect"`
}

// Distribute credits the income owed for one placement. Levels on parent and
// referrer must already reflect the new member.
//
// The placement parent always earns direct income: its level bonus plus the
// package base income. When the registration spilled over, the referrer earns
// its own level bonus as indirect income, but only while both sit on the same level.
func Distribute(tx *gorm.DB, ledger *Ledger, parent, referrer *domain.Member, pkg *domain.Package, sourceID uint) (Payout, error) {
	tier, err := TierForPrice(pkg.Price)
	if err != nil {
		return Payout{}, err
	}
	table, err := BonusTableFor(tier)
	if err != nil {
		return Payout{}, err
	}

	p := Payout{Tier: tier, ParentID: parent.ID, ReferrerID: referrer.ID, Indirect: decimal.Zero}
	p.Direct = table.For(parent.Level).Add(pkg.BaseDirectIncome)
	if err := ledger.Credit(tx, parent.ID, domain.BucketDirect, p.Direct, &sourceID); err != nil {
		return Payout{}, err
	}

	if parent.ID != referrer.ID && referrer.Level == parent.Level {
		p.Indirect = table.For(referrer.Level)
		if err := ledger.Credit(tx, referrer.ID, domain.BucketIndirect, p.Indirect, &sourceID); err != nil {
			return Payout{}, err
		}
	}
	return p, nil
}
