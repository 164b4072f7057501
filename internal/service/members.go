package service

import (
	"context"
	"errors"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"referral_network/internal/domain"
	"referral_network/internal/metrics"
	"referral_network/internal/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var mobilePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

// RegistrationInput is what a new member submits
type RegistrationInput struct {
	ReferralCode string
	Pin          string
	Name         string
	MobileNumber string
	Email        *string
	Password     string
}

// normalize trims the input and rejects malformed fields
func (in *RegistrationInput) normalize() error {
	in.ReferralCode = strings.ToUpper(strings.TrimSpace(in.ReferralCode))
	in.Pin = strings.ToUpper(strings.TrimSpace(in.Pin))
	in.Name = strings.TrimSpace(in.Name)
	in.MobileNumber = strings.TrimSpace(in.MobileNumber)
	switch {
	case in.ReferralCode == "":
		return validationError("referral code is required")
	case in.Pin == "":
		return validationError("pin is required")
	case in.Name == "" || len(in.Name) > 100:
		return validationError("name must be 1-100 characters")
	case !mobilePattern.MatchString(in.MobileNumber):
		return validationError("mobile number must be 10-15 digits")
	case len(in.Password) < 8 || len(in.Password) > 64:
		return validationError("password must be 8-64 characters")
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email == "" {
			in.Email = nil
		} else {
			if _, err := mail.ParseAddress(email); err != nil {
				return validationError("email is malformed")
			}
			in.Email = &email
		}
	}
	return nil
}

// Registration is the outcome of a successful registration
type Registration struct {
	Member   *domain.Member `json:"member"`
	ParentID uint           `json:"parent_id"`
	Payout   Payout         `json:"payout"`
}

// MemberService onboards members and answers member queries
type MemberService struct {
	db     *gorm.DB
	pins   *PinService
	ledger *Ledger
	now    func() time.Time
}

// NewMemberService creates a member service
func NewMemberService(db *gorm.DB, pins *PinService, ledger *Ledger) *MemberService {
	return &MemberService{db: db, pins: pins, ledger: ledger, now: time.Now}
}

// Register onboards a member in one transaction: the pin is validated, the
// placement parent chosen, member and edge inserted, levels of parent and
// referrer recomputed, income distributed and the pin consumed. Any failure
// rolls every step back.
func (s *MemberService) Register(ctx context.Context, in RegistrationInput) (*Registration, error) {
	if err := in.normalize(); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, infra("hash password", err)
	}

	var reg Registration
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		parent, referrer, err := PlaceNewMember(tx, in.ReferralCode)
		if err != nil {
			return err
		}
		pin, err := s.pins.Validate(tx, in.Pin, referrer)
		if err != nil {
			return err
		}
		if err := ensureUniqueIdentity(tx, in.MobileNumber, in.Email); err != nil {
			return err
		}

		member := &domain.Member{
			Name:         in.Name,
			MobileNumber: in.MobileNumber,
			Email:        in.Email,
			Password:     hash,
			Role:         domain.RoleUser,
			Status:       domain.MemberActive,
			ReferralCode: utils.NewReferralCode(),
			ReferredBy:   &parent.ReferralCode,
			Level:        MinLevel,
		}
		if err := tx.Create(member).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateMember
			}
			return infra("create member", err)
		}
		edge := domain.ReferralEdge{ReferrerID: parent.ID, ReferredID: member.ID, SponsorID: referrer.ID}
		if err := tx.Create(&edge).Error; err != nil {
			return infra("create referral edge", err)
		}

		if err := RecomputeLevel(tx, parent); err != nil {
			return err
		}
		if referrer.ID != parent.ID {
			if err := RecomputeLevel(tx, referrer); err != nil {
				return err
			}
		} else {
			referrer = parent
		}

		pkg, err := GetPackage(tx, pin.PackageID)
		if err != nil {
			return err
		}
		payout, err := Distribute(tx, s.ledger, parent, referrer, pkg, member.ID)
		if err != nil {
			return err
		}
		if err := s.pins.Consume(tx, pin, member.ID); err != nil {
			return err
		}
		reg = Registration{Member: member, ParentID: parent.ID, Payout: payout}
		return nil
	})
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(KindOf(err).String()).Inc()
		logrus.WithFields(logrus.Fields{
			"referral_code": in.ReferralCode,
			"kind":          KindOf(err).String(),
		}).Warn("Registration aborted")
		return nil, err
	}

	s.ledger.Invalidate(ctx, reg.Payout.ParentID, reg.Payout.ReferrerID)
	metrics.RegistrationsTotal.WithLabelValues("ok").Inc()
	recordIncome(reg.Payout)
	logrus.WithFields(logrus.Fields{
		"member_id":   reg.Member.ID,
		"parent_id":   reg.ParentID,
		"referrer_id": reg.Payout.ReferrerID,
		"direct":      reg.Payout.Direct.String(),
		"indirect":    reg.Payout.Indirect.String(),
	}).Info("Member registered")
	return &reg, nil
}

// recordIncome counts committed payouts only
func recordIncome(p Payout) {
	if p.Direct.IsPositive() {
		metrics.IncomeCreditedTotal.WithLabelValues(domain.BucketDirect).Add(p.Direct.InexactFloat64())
	}
	if p.Indirect.IsPositive() {
		metrics.IncomeCreditedTotal.WithLabelValues(domain.BucketIndirect).Add(p.Indirect.InexactFloat64())
	}
}

func ensureUniqueIdentity(tx *gorm.DB, mobile string, email *string) error {
	query := tx.Model(&domain.Member{}).Where("mobile_number = ?", mobile)
	if email != nil {
		query = query.Or("email = ?", *email)
	}
	var n int64
	if err := query.Count(&n).Error; err != nil {
		return infra("check identity", err)
	}
	if n > 0 {
		return ErrDuplicateMember
	}
	return nil
}

// Authenticate checks credentials. Unknown members, inactive members and
// wrong passwords all yield false.
func (s *MemberService) Authenticate(ctx context.Context, mobile, password string) (*domain.Member, bool) {
	var m domain.Member
	if err := s.db.WithContext(ctx).Where("mobile_number = ?", strings.TrimSpace(mobile)).First(&m).Error; err != nil {
		return nil, false
	}
	if m.Status != domain.MemberActive || !utils.CheckPassword(m.Password, password) {
		return nil, false
	}
	return &m, true
}

// Get returns a member by id
func (s *MemberService) Get(ctx context.Context, id uint) (*domain.Member, error) {
	return memberByID(s.db.WithContext(ctx), id)
}

// Referrals lists the members placed directly under id, in placement order
func (s *MemberService) Referrals(ctx context.Context, id uint) ([]domain.Member, error) {
	var out []domain.Member
	if err := s.db.WithContext(ctx).
		Joins("JOIN referral_edges ON referral_edges.referred_id = members.id").
		Where("referral_edges.referrer_id = ?", id).
		Order("referral_edges.id").
		Find(&out).Error; err != nil {
		return nil, infra("list referrals", err)
	}
	return out, nil
}

// Counts returns the direct and indirect referral counts of id
func (s *MemberService) Counts(ctx context.Context, id uint) (ReferralCounts, error) {
	return CountReferrals(s.db.WithContext(ctx), id)
}

// memberByID loads a member, mapping a missing row to ErrMemberNotFound
func memberByID(tx *gorm.DB, id uint) (*domain.Member, error) {
	var m domain.Member
	if err := tx.First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, infra("load member", err)
	}
	return &m, nil
}

// requireAdmin loads the actor and checks the admin role
func requireAdmin(tx *gorm.DB, actorID uint) (*domain.Member, error) {
	m, err := memberByID(tx, actorID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return nil, ErrNotAuthorized
		}
		return nil, err
	}
	if !m.IsAdmin() || m.Status != domain.MemberActive {
		return nil, ErrNotAuthorized
	}
	return m, nil
}
