package service

import (
	"errors"

	"referral_network/internal/domain"

	"gorm.io/gorm"
)

// MaxDirectChildren is the soft cap on members placed directly under one node
const MaxDirectChildren = 5

// childLoad is a direct child together with its own direct-child count
type childLoad struct {
	MemberID uint
	Children int64
}

// choosePlacement picks the node that receives a new member. It returns the
// child to spill into and true, or false when the referrer keeps the member.
// Only one level below a saturated referrer is searched; when every child is
// saturated too the referrer takes the member over its cap.
func choosePlacement(directChildren int64, children []childLoad) (uint, bool) {
	if directChildren < MaxDirectChildren {
		return 0, false
	}
	for _, c := range children {
		if c.Children < MaxDirectChildren {
			return c.MemberID, true
		}
	}
	return 0, false
}

// PlaceNewMember resolves referrerCode and decides the placement parent for
// the next registration. Both the parent and the referrer are returned; they
// are the same member unless the registration spilled over.
//
// Children of a saturated referrer are scanned in placement order, but callers
// must treat the choice among several eligible children as unspecified.
// Concurrent registrations may both read the same counts and overfill a node.
func PlaceNewMember(tx *gorm.DB, referrerCode string) (parent, referrer *domain.Member, err error) {
	var ref domain.Member
	if err := tx.Where("referral_code = ?", referrerCode).First(&ref).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrReferrerNotFound
		}
		return nil, nil, infra("load referrer", err)
	}

	direct, err := directChildCount(tx, ref.ID)
	if err != nil {
		return nil, nil, err
	}
	if direct < MaxDirectChildren {
		return &ref, &ref, nil
	}

	var loads []childLoad
	if err := tx.Table("referral_edges AS e").
		Select("e.referred_id AS member_id, COUNT(c.id) AS children").
		Joins("LEFT JOIN referral_edges AS c ON c.referrer_id = e.referred_id").
		Where("e.referrer_id = ?", ref.ID).
		Group("e.id, e.referred_id").
		Order("e.id").
		Scan(&loads).Error; err != nil {
		return nil, nil, infra("load child placements", err)
	}

	childID, spill := choosePlacement(direct, loads)
	if !spill {
		return &ref, &ref, nil
	}
	child, err := memberByID(tx, childID)
	if err != nil {
		return nil, nil, err
	}
	return child, &ref, nil
}

func directChildCount(tx *gorm.DB, memberID uint) (int64, error) {
	var n int64
	if err := tx.Model(&domain.ReferralEdge{}).Where("referrer_id = ?", memberID).Count(&n).Error; err != nil {
		return 0, infra("count direct referrals", err)
	}
	return n, nil
}
