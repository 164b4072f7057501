package service

import (
	"referral_network/internal/domain"

	"gorm.io/gorm"
)

const (
	MinLevel = 1
	MaxLevel = 10
)

// levelThresholds maps the lower bound of total referrals to a level, highest first.
// Each bound is a power of five, the size of a full five-wide tree at that depth.
var levelThresholds = []struct {
	minReferrals int64
	level        int
}{
	{9765625, 10},
	{1953125, 9},
	{390625, 8},
	{78125, 7},
	{15625, 6},
	{3125, 5},
	{625, 4},
	{125, 3},
	{25, 2},
}

// maxCountedReferrals is where counting can stop: nothing ranks above it
var maxCountedReferrals = levelThresholds[0].minReferrals

// inChunk bounds the size of IN lists while walking the tree
const inChunk = 1000

// LevelForCount converts a total referral count into a level in [1,10]
func LevelForCount(total int64) int {
	for _, t := range levelThresholds {
		if total >= t.minReferrals {
			return t.level
		}
	}
	return MinLevel
}

// ReferralCounts holds the size of a member's placement subtree
type ReferralCounts struct {
	Direct   int64 `json:"direct"`   // Members placed directly under the member
	Indirect int64 `json:"indirect"` // Every deeper descendant
}

// Total is the number of referrals driving the level
func (c ReferralCounts) Total() int64 { return c.Direct + c.Indirect }

// CountReferrals walks the placement tree below memberID breadth first.
// The walk stops once the top level threshold is reached.
func CountReferrals(tx *gorm.DB, memberID uint) (ReferralCounts, error) {
	var counts ReferralCounts
	frontier := []uint{memberID}
	for depth := 0; len(frontier) > 0 && counts.Total() < maxCountedReferrals; depth++ {
		var next []uint
		for start := 0; start < len(frontier); start += inChunk {
			end := min(start+inChunk, len(frontier))
			var ids []uint
			if err := tx.Model(&domain.ReferralEdge{}).
				Where("referrer_id IN ?", frontier[start:end]).
				Pluck("referred_id", &ids).Error; err != nil {
				return ReferralCounts{}, infra("count referrals", err)
			}
			next = append(next, ids...)
		}
		if depth == 0 {
			counts.Direct = int64(len(next))
		} else {
			counts.Indirect += int64(len(next))
		}
		frontier = next
	}
	return counts, nil
}

// ComputeLevel derives the level of a member from its current subtree
func ComputeLevel(tx *gorm.DB, memberID uint) (int, error) {
	counts, err := CountReferrals(tx, memberID)
	if err != nil {
		return 0, err
	}
	return LevelForCount(counts.Total()), nil
}

// RecomputeLevel stores the freshly computed level on the member
func RecomputeLevel(tx *gorm.DB, member *domain.Member) error {
	level, err := ComputeLevel(tx, member.ID)
	if err != nil {
		return err
	}
	if level == member.Level {
		return nil
	}
	res := tx.Model(&domain.Member{}).Where("id = ?", member.ID).Update("level", level)
	if res.Error != nil {
		return infra("update level", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	member.Level = level
	return nil
}
