package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriod_SQL(t *testing.T) {
	v, err := Period(250).Value()
	require.NoError(t, err)
	assert.Equal(t, int64(250), v)

	_, err = Period(math.MaxUint64).Value()
	assert.Error(t, err)

	var p Period
	require.NoError(t, p.Scan(int64(200)))
	assert.Equal(t, Period(200), p)
	require.NoError(t, p.Scan([]byte("7")))
	assert.Equal(t, Period(7), p)
	assert.Error(t, p.Scan(int64(-1)))
}

func TestProjectID_SQL(t *testing.T) {
	var id ProjectID
	require.NoError(t, id.Scan(int64(3)))
	assert.Equal(t, ProjectID(3), id)
	assert.Error(t, id.Scan(3.5))
}
