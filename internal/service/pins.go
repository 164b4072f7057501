package service

import (
	"context"
	"errors"
	"time"

	"referral_network/internal/domain"
	"referral_network/internal/metrics"
	"referral_network/internal/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	// ValidityGrant is added to a member's validity window when they issue or receive a pin
	ValidityGrant = 35 * 24 * time.Hour
	// DefaultPinLifetime is how long an issued pin stays usable
	DefaultPinLifetime = 90 * 24 * time.Hour
)

// PinService manages issue, validation, transfer and consumption of activation pins
type PinService struct {
	db       *gorm.DB
	lifetime time.Duration
	now      func() time.Time
}

// NewPinService creates a pin service
func NewPinService(db *gorm.DB) *PinService {
	return &PinService{db: db, lifetime: DefaultPinLifetime, now: time.Now}
}

// Issue creates an available pin for a package. Only admins may issue; the
// issuer's validity window grows by ValidityGrant.
func (s *PinService) Issue(ctx context.Context, adminID, packageID uint) (*domain.Pin, error) {
	var pin domain.Pin
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		admin, err := requireAdmin(tx, adminID)
		if err != nil {
			return err
		}
		pkg, err := GetPackage(tx, packageID)
		if err != nil {
			return err
		}
		if _, err := TierForPrice(pkg.Price); err != nil {
			return err
		}
		now := s.now()
		pin = domain.Pin{
			Code:        utils.NewPinCode(),
			GeneratedBy: admin.ID,
			PackageID:   pkg.ID,
			Status:      domain.PinAvailable,
			ValidUntil:  now.Add(s.lifetime),
		}
		if err := tx.Create(&pin).Error; err != nil {
			return infra("create pin", err)
		}
		until := admin.ExtendValidity(now, ValidityGrant)
		if err := tx.Model(&domain.Member{}).Where("id = ?", admin.ID).Update("valid_until", until).Error; err != nil {
			return infra("extend validity", err)
		}
		return nil
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"admin_id":   adminID,
			"package_id": packageID,
			"error":      err.Error(),
		}).Warn("Pin issue failed")
		return nil, err
	}
	metrics.PinsTotal.WithLabelValues(domain.PinAvailable).Inc()
	logrus.WithFields(logrus.Fields{
		"admin_id":   adminID,
		"pin_id":     pin.ID,
		"package_id": packageID,
	}).Info("Pin issued")
	return &pin, nil
}

func pinByCode(tx *gorm.DB, code string) (*domain.Pin, error) {
	var pin domain.Pin
	if err := tx.Where("code = ?", code).First(&pin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPinNotFound
		}
		return nil, infra("load pin", err)
	}
	return &pin, nil
}

// Validate checks that code names a usable pin for a registration under referrer.
// Pins still held by their issuer work for any referrer; a transferred pin only
// works for the member it was transferred to.
func (s *PinService) Validate(tx *gorm.DB, code string, referrer *domain.Member) (*domain.Pin, error) {
	pin, err := pinByCode(tx, code)
	if err != nil {
		return nil, err
	}
	if pin.Status == domain.PinUsed {
		return nil, ErrPinAlreadyUsed
	}
	if s.now().After(pin.ValidUntil) {
		return nil, ErrPinExpired
	}
	if pin.Status == domain.PinTransferred && (pin.AssignedTo == nil || *pin.AssignedTo != referrer.ID) {
		return nil, ErrInvalidPin
	}
	return pin, nil
}

// Consume marks the pin used by newOwner. The update only matches a pin that
// is not used yet, so of two transactions racing on one pin exactly one wins.
func (s *PinService) Consume(tx *gorm.DB, pin *domain.Pin, newOwner uint) error {
	now := s.now()
	res := tx.Model(&domain.Pin{}).
		Where("id = ? AND status <> ?", pin.ID, domain.PinUsed).
		Updates(map[string]any{
			"status":      domain.PinUsed,
			"assigned_to": newOwner,
			"used_at":     now,
		})
	if res.Error != nil {
		return infra("consume pin", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrPinAlreadyUsed
	}
	pin.Status = domain.PinUsed
	pin.AssignedTo = &newOwner
	pin.UsedAt = &now
	return nil
}

// Transfer hands an available pin from its holder to an ordinary member, who
// gains ValidityGrant on their validity window. Admins may transfer any pin.
func (s *PinService) Transfer(ctx context.Context, actorID uint, code string, toMemberID uint) (*domain.Pin, error) {
	var pin *domain.Pin
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		actor, err := memberByID(tx, actorID)
		if errors.Is(err, ErrMemberNotFound) {
			return ErrNotAuthorized
		} else if err != nil {
			return err
		}
		pin, err = pinByCode(tx, code)
		if err != nil {
			return err
		}
		if pin.GeneratedBy != actor.ID && !actor.IsAdmin() {
			return ErrNotAuthorized
		}
		switch pin.Status {
		case domain.PinUsed:
			return ErrPinAlreadyUsed
		case domain.PinTransferred:
			return ErrPinNotTransferable
		}

		recipient, err := memberByID(tx, toMemberID)
		if err != nil {
			return err
		}
		if recipient.Role != domain.RoleUser || recipient.Status != domain.MemberActive || recipient.ID == actor.ID {
			return ErrIneligibleRecipient
		}

		res := tx.Model(&domain.Pin{}).
			Where("id = ? AND status = ?", pin.ID, domain.PinAvailable).
			Updates(map[string]any{"status": domain.PinTransferred, "assigned_to": recipient.ID})
		if res.Error != nil {
			return infra("transfer pin", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrPinNotTransferable
		}
		pin.Status = domain.PinTransferred
		pin.AssignedTo = &recipient.ID

		until := recipient.ExtendValidity(s.now(), ValidityGrant)
		if err := tx.Model(&domain.Member{}).Where("id = ?", recipient.ID).Update("valid_until", until).Error; err != nil {
			return infra("extend validity", err)
		}
		history := domain.PinTransfer{PinID: pin.ID, FromMemberID: actor.ID, ToMemberID: recipient.ID}
		if err := tx.Create(&history).Error; err != nil {
			return infra("record pin transfer", err)
		}
		return nil
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"actor_id": actorID,
			"to":       toMemberID,
			"error":    err.Error(),
		}).Warn("Pin transfer failed")
		return nil, err
	}
	metrics.PinsTotal.WithLabelValues(domain.PinTransferred).Inc()
	logrus.WithFields(logrus.Fields{
		"actor_id": actorID,
		"pin_id":   pin.ID,
		"to":       toMemberID,
	}).Info("Pin transferred")
	return pin, nil
}

// List returns the pins a member issued or holds
func (s *PinService) List(ctx context.Context, memberID uint, status string) ([]domain.Pin, error) {
	query := s.db.WithContext(ctx).Where("(generated_by = ? OR assigned_to = ?)", memberID, memberID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var pins []domain.Pin
	if err := query.Order("id desc").Find(&pins).Error; err != nil {
		return nil, infra("list pins", err)
	}
	return pins, nil
}

// Transfers returns the hand-over history of a pin
func (s *PinService) Transfers(ctx context.Context, pinID uint) ([]domain.PinTransfer, error) {
	var out []domain.PinTransfer
	if err := s.db.WithContext(ctx).Where("pin_id = ?", pinID).Order("id").Find(&out).Error; err != nil {
		return nil, infra("list pin transfers", err)
	}
	return out, nil
}
