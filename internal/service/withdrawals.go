package service

import (
	"context"
	"errors"
	"time"

	"referral_network/internal/domain"
	"referral_network/internal/metrics"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	// MinimumBalance is the combined balance a wallet needs before any withdrawal request
	MinimumBalance = decimal.NewFromInt(100)
	// DeductionRate is withheld from every withdrawal
	DeductionRate = decimal.RequireFromString("0.08")
)

// WithdrawalFilter narrows the admin listing
type WithdrawalFilter struct {
	Status   string
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

// WithdrawalPage is one page of the admin listing
type WithdrawalPage struct {
	Withdrawals []domain.Withdrawal `json:"withdrawals"`
	Page        int                 `json:"page"`
	PageSize    int                 `json:"page_size"`
	Total       int64               `json:"total"`
	TotalPages  int                 `json:"total_pages"`
}

// WithdrawalService creates withdrawal requests and applies admin decisions.
// Nothing is debited until approval, so a denial leaves balances untouched.
type WithdrawalService struct {
	db     *gorm.DB
	ledger *Ledger
	now    func() time.Time
}

// NewWithdrawalService creates a withdrawal service
func NewWithdrawalService(db *gorm.DB, ledger *Ledger) *WithdrawalService {
	return &WithdrawalService{db: db, ledger: ledger, now: time.Now}
}

// SplitDeduction returns the deduction withheld from amount and the net paid out
func SplitDeduction(amount decimal.Decimal) (deduction, net decimal.Decimal) {
	deduction = amount.Mul(DeductionRate).Round(2)
	return deduction, amount.Sub(deduction)
}

// Create records a pending withdrawal request for a member
func (s *WithdrawalService) Create(ctx context.Context, memberID uint, amount decimal.Decimal) (*domain.Withdrawal, error) {
	// Amounts are stored with two decimal places
	if !amount.IsPositive() || !amount.Equal(amount.Round(2)) {
		return nil, ErrInvalidAmount
	}
	var w domain.Withdrawal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var wallet domain.Wallet
		if err := tx.Where("member_id = ?", memberID).First(&wallet).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWalletNotFound
			}
			return infra("load wallet", err)
		}
		if wallet.Total().LessThan(MinimumBalance) {
			return ErrBelowMinimumBalance
		}
		deduction, net := SplitDeduction(amount)
		w = domain.Withdrawal{
			MemberID:  memberID,
			Amount:    amount,
			Deduction: deduction,
			NetAmount: net,
			Status:    domain.WithdrawalPending,
		}
		if err := tx.Create(&w).Error; err != nil {
			return infra("create withdrawal", err)
		}
		return nil
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"member_id": memberID,
			"amount":    amount.String(),
			"error":     err.Error(),
		}).Warn("Withdrawal request rejected")
		return nil, err
	}
	metrics.WithdrawalsTotal.WithLabelValues(domain.WithdrawalPending).Inc()
	logrus.WithFields(logrus.Fields{
		"member_id":     memberID,
		"withdrawal_id": w.ID,
		"amount":        amount.String(),
		"net":           w.NetAmount.String(),
	}).Info("Withdrawal requested")
	return &w, nil
}

// Decide applies an admin decision: approved or denied
func (s *WithdrawalService) Decide(ctx context.Context, requestID, adminID uint, status string) (*domain.Withdrawal, error) {
	switch status {
	case domain.WithdrawalApproved:
		return s.Approve(ctx, requestID, adminID)
	case domain.WithdrawalDenied:
		return s.Deny(ctx, requestID, adminID)
	}
	return nil, ErrInvalidStatus
}

// Approve debits the member's wallet and finalizes the request
func (s *WithdrawalService) Approve(ctx context.Context, requestID, adminID uint) (*domain.Withdrawal, error) {
	return s.transition(ctx, requestID, adminID, domain.WithdrawalApproved, func(tx *gorm.DB, w *domain.Withdrawal) error {
		_, err := s.ledger.Debit(tx, w.MemberID, w.Amount, &w.ID)
		return err
	})
}

// Deny finalizes the request without touching balances
func (s *WithdrawalService) Deny(ctx context.Context, requestID, adminID uint) (*domain.Withdrawal, error) {
	return s.transition(ctx, requestID, adminID, domain.WithdrawalDenied, nil)
}

// transition moves a pending request to a terminal status. The status update
// is conditional on the request still being pending.
func (s *WithdrawalService) transition(ctx context.Context, requestID, adminID uint, to string, apply func(*gorm.DB, *domain.Withdrawal) error) (*domain.Withdrawal, error) {
	var w domain.Withdrawal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		admin, err := requireAdmin(tx, adminID)
		if err != nil {
			return err
		}
		if err := tx.First(&w, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWithdrawalNotFound
			}
			return infra("load withdrawal", err)
		}
		if w.Status != domain.WithdrawalPending {
			return ErrWithdrawalFinalized
		}
		if apply != nil {
			if err := apply(tx, &w); err != nil {
				return err
			}
		}

		now := s.now()
		updates := map[string]any{"status": to, "decided_by": admin.ID}
		if to == domain.WithdrawalApproved {
			updates["approved_at"] = now
			w.ApprovedAt = &now
		} else {
			updates["denied_at"] = now
			w.DeniedAt = &now
		}
		res := tx.Model(&domain.Withdrawal{}).
			Where("id = ? AND status = ?", w.ID, domain.WithdrawalPending).
			Updates(updates)
		if res.Error != nil {
			return infra("update withdrawal", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrWithdrawalFinalized
		}
		w.Status = to
		w.DecidedBy = &admin.ID
		return nil
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"withdrawal_id": requestID,
			"admin_id":      adminID,
			"status":        to,
			"error":         err.Error(),
		}).Warn("Withdrawal decision aborted")
		return nil, err
	}
	if to == domain.WithdrawalApproved {
		s.ledger.Invalidate(ctx, w.MemberID)
	}
	metrics.WithdrawalsTotal.WithLabelValues(to).Inc()
	logrus.WithFields(logrus.Fields{
		"withdrawal_id": w.ID,
		"member_id":     w.MemberID,
		"admin_id":      adminID,
		"status":        to,
		"amount":        w.Amount.String(),
	}).Info("Withdrawal decided")
	return &w, nil
}

// List returns withdrawal requests for admins, newest first
func (s *WithdrawalService) List(ctx context.Context, adminID uint, f WithdrawalFilter) (*WithdrawalPage, error) {
	db := s.db.WithContext(ctx)
	if _, err := requireAdmin(db, adminID); err != nil {
		return nil, err
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 || f.PageSize > 100 {
		f.PageSize = 20
	}
	query := db.Model(&domain.Withdrawal{})
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.From != nil {
		query = query.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		query = query.Where("created_at <= ?", *f.To)
	}
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, infra("count withdrawals", err)
	}
	var items []domain.Withdrawal
	if err := query.Order("created_at desc, id desc").Offset((f.Page - 1) * f.PageSize).Limit(f.PageSize).Find(&items).Error; err != nil {
		return nil, infra("list withdrawals", err)
	}
	return &WithdrawalPage{
		Withdrawals: items,
		Page:        f.Page,
		PageSize:    f.PageSize,
		Total:       total,
		TotalPages:  (int(total) + f.PageSize - 1) / f.PageSize,
	}, nil
}

// ForMember returns the requests of one member, newest first
func (s *WithdrawalService) ForMember(ctx context.Context, memberID uint) ([]domain.Withdrawal, error) {
	var items []domain.Withdrawal
	if err := s.db.WithContext(ctx).Where("member_id = ?", memberID).Order("id desc").Find(&items).Error; err != nil {
		return nil, infra("list withdrawals", err)
	}
	return items, nil
}
