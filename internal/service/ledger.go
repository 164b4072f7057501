package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"referral_network/internal/domain"
	"referral_network/internal/utils"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Balance is a snapshot of a member's wallet
type Balance struct {
	MemberID uint            `json:"member_id"`
	Direct   decimal.Decimal `json:"direct"`
	Indirect decimal.Decimal `json:"indirect"`
	Total    decimal.Decimal `json:"total"`
}

// Debit reports how a withdrawal amount was split across buckets
type Debit struct {
	FromDirect   decimal.Decimal `json:"from_direct"`
	FromIndirect decimal.Decimal `json:"from_indirect"`
}

// Ledger applies atomic adjustments to the two income buckets of each wallet.
// Mutating methods run on the caller's transaction.
type Ledger struct {
	db       *gorm.DB
	rdb      *redis.Client
	cacheTTL time.Duration
}

// NewLedger creates a ledger; rdb may be nil to disable balance caching
func NewLedger(db *gorm.DB, rdb *redis.Client, cacheTTL time.Duration) *Ledger {
	if cacheTTL <= 0 {
		cacheTTL = 60 * time.Second
	}
	return &Ledger{db: db, rdb: rdb, cacheTTL: cacheTTL}
}

func bucketColumn(bucket string) (string, string, error) {
	switch bucket {
	case domain.BucketDirect:
		return "direct_income", domain.EntryDirectIncome, nil
	case domain.BucketIndirect:
		return "indirect_income", domain.EntryIndirectIncome, nil
	}
	return "", "", validationError("unknown wallet bucket " + strconv.Quote(bucket))
}

// Credit adds amount to one bucket. The wallet is upserted on member_id, so
// concurrent first credits for one member all land on a single row.
func (l *Ledger) Credit(tx *gorm.DB, memberID uint, bucket string, amount decimal.Decimal, sourceID *uint) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	column, kind, err := bucketColumn(bucket)
	if err != nil {
		return err
	}
	w := domain.Wallet{MemberID: memberID}
	if amount.IsZero() {
		// Nothing to add; still make sure the wallet exists
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "member_id"}},
			DoNothing: true,
		}).Create(&w).Error; err != nil {
			return infra("create wallet", err)
		}
		return nil
	}
	if bucket == domain.BucketDirect {
		w.DirectIncome = amount
	} else {
		w.IndirectIncome = amount
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "member_id"}}, // unique wallet per member
		DoUpdates: clause.Assignments(map[string]any{
			column:       gorm.Expr("wallets."+column+" + ?", amount),
			"updated_at": gorm.Expr("?", time.Now()),
		}),
	}).Create(&w).Error; err != nil {
		return infra("credit wallet", err)
	}
	entry := domain.WalletEntry{MemberID: memberID, Bucket: bucket, Kind: kind, Amount: amount, SourceID: sourceID}
	if err := tx.Create(&entry).Error; err != nil {
		return infra("record wallet entry", err)
	}
	return nil
}

// Debit removes amount from the direct bucket first and takes the remainder
// from the indirect bucket. The update is conditional on both buckets still
// covering their share, so a concurrent debit can never drive one negative.
func (l *Ledger) Debit(tx *gorm.DB, memberID uint, amount decimal.Decimal, withdrawalID *uint) (Debit, error) {
	if !amount.IsPositive() {
		return Debit{}, ErrInvalidAmount
	}
	var w domain.Wallet
	if err := tx.Where("member_id = ?", memberID).First(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Debit{}, ErrWalletNotFound
		}
		return Debit{}, infra("load wallet", err)
	}
	if w.Total().LessThan(amount) {
		return Debit{}, ErrInsufficientFunds
	}
	d := Debit{FromDirect: decimal.Min(w.DirectIncome, amount)}
	d.FromIndirect = amount.Sub(d.FromDirect)

	res := tx.Model(&domain.Wallet{}).
		Where("id = ? AND direct_income >= ? AND indirect_income >= ?", w.ID, d.FromDirect, d.FromIndirect).
		Updates(map[string]any{
			"direct_income":   gorm.Expr("direct_income - ?", d.FromDirect),
			"indirect_income": gorm.Expr("indirect_income - ?", d.FromIndirect),
		})
	if res.Error != nil {
		return Debit{}, infra("debit wallet", res.Error)
	}
	if res.RowsAffected == 0 {
		return Debit{}, ErrInsufficientFunds
	}

	for _, part := range []struct {
		bucket string
		amount decimal.Decimal
	}{
		{domain.BucketDirect, d.FromDirect},
		{domain.BucketIndirect, d.FromIndirect},
	} {
		if part.amount.IsZero() {
			continue
		}
		entry := domain.WalletEntry{
			MemberID:     memberID,
			Bucket:       part.bucket,
			Kind:         domain.EntryWithdrawal,
			Amount:       part.amount.Neg(),
			WithdrawalID: withdrawalID,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return Debit{}, infra("record wallet entry", err)
		}
	}
	return d, nil
}

func balanceCacheKey(memberID uint) string {
	return "wallet:member:" + strconv.FormatUint(uint64(memberID), 10)
}

// GetBalance returns both buckets and their total, served from Redis when cached
func (l *Ledger) GetBalance(ctx context.Context, memberID uint) (Balance, error) {
	var b Balance
	key := balanceCacheKey(memberID)
	if found, err := utils.GetCache(ctx, l.rdb, key, &b); err == nil && found {
		return b, nil
	}
	var w domain.Wallet
	if err := l.db.WithContext(ctx).Where("member_id = ?", memberID).First(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Balance{}, ErrWalletNotFound
		}
		return Balance{}, infra("load wallet", err)
	}
	b = Balance{MemberID: memberID, Direct: w.DirectIncome, Indirect: w.IndirectIncome, Total: w.Total()}
	if err := utils.SetCache(ctx, l.rdb, key, b, l.cacheTTL); err != nil {
		logrus.WithFields(logrus.Fields{"member_id": memberID, "error": err.Error()}).Warn("balance cache write failed")
	}
	return b, nil
}

// Entries lists a member's wallet movements, newest first
func (l *Ledger) Entries(ctx context.Context, memberID uint, page, pageSize int) ([]domain.WalletEntry, int64, error) {
	query := l.db.WithContext(ctx).Model(&domain.WalletEntry{}).Where("member_id = ?", memberID)
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, infra("count wallet entries", err)
	}
	var entries []domain.WalletEntry
	if err := query.Order("id desc").Offset((page - 1) * pageSize).Limit(pageSize).Find(&entries).Error; err != nil {
		return nil, 0, infra("list wallet entries", err)
	}
	return entries, total, nil
}

// Invalidate drops cached balances; call after the adjusting transaction commits
func (l *Ledger) Invalidate(ctx context.Context, memberIDs ...uint) {
	keys := make([]string, 0, len(memberIDs))
	for _, id := range memberIDs {
		keys = append(keys, balanceCacheKey(id))
	}
	if err := utils.DeleteCache(ctx, l.rdb, keys...); err != nil {
		logrus.WithFields(logrus.Fields{"members": memberIDs, "error": err.Error()}).Warn("balance cache invalidation failed")
	}
}
