package service

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"referral_network/internal/db"
	"referral_network/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var seq atomic.Int64

// newTestDB opens a private in-memory database with the production migrations applied.
// A single connection serializes transactions the way row locks would.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

type fixture struct {
	db          *gorm.DB
	ledger      *Ledger
	pins        *PinService
	members     *MemberService
	withdrawals *WithdrawalService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := newTestDB(t)
	ledger := NewLedger(gdb, nil, 0)
	pins := NewPinService(gdb)
	return &fixture{
		db:          gdb,
		ledger:      ledger,
		pins:        pins,
		members:     NewMemberService(gdb, pins, ledger),
		withdrawals: NewWithdrawalService(gdb, ledger),
	}
}

// seedMember inserts a member directly, bypassing registration
func seedMember(t *testing.T, gdb *gorm.DB, role string) *domain.Member {
	t.Helper()
	n := seq.Add(1)
	m := &domain.Member{
		Name:         fmt.Sprintf("member %d", n),
		MobileNumber: fmt.Sprintf("9%09d", n),
		Password:     "x",
		Role:         role,
		Status:       domain.MemberActive,
		ReferralCode: fmt.Sprintf("REFT%07d", n),
		Level:        MinLevel,
	}
	require.NoError(t, gdb.Create(m).Error)
	return m
}

// seedChildren places n fresh members directly under parent
func seedChildren(t *testing.T, gdb *gorm.DB, parent *domain.Member, n int) []*domain.Member {
	t.Helper()
	out := make([]*domain.Member, 0, n)
	for i := 0; i < n; i++ {
		child := seedMember(t, gdb, domain.RoleUser)
		require.NoError(t, gdb.Create(&domain.ReferralEdge{
			ReferrerID: parent.ID,
			ReferredID: child.ID,
			SponsorID:  parent.ID,
		}).Error)
		out = append(out, child)
	}
	return out
}

// packageByPrice returns a seeded package
func packageByPrice(t *testing.T, gdb *gorm.DB, price int64) *domain.Package {
	t.Helper()
	var pkg domain.Package
	var all []domain.Package
	require.NoError(t, gdb.Find(&all).Error)
	for _, p := range all {
		if p.Price.Equal(decimal.NewFromInt(price)) {
			pkg = p
		}
	}
	require.NotZero(t, pkg.ID, "no package priced %d", price)
	return &pkg
}

func reloadMember(t *testing.T, gdb *gorm.DB, id uint) *domain.Member {
	t.Helper()
	var m domain.Member
	require.NoError(t, gdb.First(&m, id).Error)
	return &m
}

func walletOf(t *testing.T, gdb *gorm.DB, memberID uint) (domain.Wallet, bool) {
	t.Helper()
	var w domain.Wallet
	err := gdb.Where("member_id = ?", memberID).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return w, false
	}
	require.NoError(t, err)
	return w, true
}

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got.String())
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}
