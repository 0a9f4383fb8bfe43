package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"payout/pkg/domain"
	"payout/pkg/testutil"
)

func TestProjectLifecycle(t *testing.T) {
	now := time.Now()
	p := &Project{ID: 1, ActiveFromPeriod: 10}
	assert.True(t, p.IsActive())

	p.Suspend(50, now)
	assert.False(t, p.IsActive())
	assert.Equal(t, domain.Period(50), p.ActiveToPeriod)

	p.Enable(100, now)
	assert.True(t, p.IsActive())
	assert.Equal(t, domain.Period(100), p.ActiveFromPeriod)
	assert.Zero(t, p.ActiveToPeriod)

	t.Run("suspension in period zero is still visible", func(t *testing.T) {
		q := &Project{ID: 2}
		q.Suspend(0, now)
		assert.False(t, q.IsActive())
	})
}

func TestProjectClone(t *testing.T) {
	p := &Project{ID: 1, Contracts: []domain.Address{testutil.Addr(1)}}
	cp := p.Clone()
	cp.Contracts[0] = testutil.Addr(2)

	assert.True(t, p.HasContract(testutil.Addr(1)))
	assert.False(t, p.HasContract(testutil.Addr(2)))
}

func TestSortAddresses(t *testing.T) {
	addrs := []domain.Address{testutil.Addr(3), testutil.Addr(1), testutil.Addr(2)}
	SortAddresses(addrs)
	assert.Equal(t, []domain.Address{testutil.Addr(1), testutil.Addr(2), testutil.Addr(3)}, addrs)
}
