package bank

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Pocket_PutAndTake(t *testing.T) {
	pocket, err := NewPocket(10)
	require.NoError(t, err)

	require.NoError(t, pocket.Put(5))
	require.NoError(t, pocket.Take(15))
	assert.Equal(t, Money(0), pocket.Check())
}

func Test_Pocket_NeverGoesNegative(t *testing.T) {
	pocket, err := NewPocket(10)
	require.NoError(t, err)

	assert.ErrorIs(t, pocket.Take(11), ErrInsufficientPocket)
	assert.ErrorIs(t, pocket.Take(-1), ErrNegativeAmount)
	assert.ErrorIs(t, pocket.Put(-1), ErrNegativeAmount)
	assert.Equal(t, Money(10), pocket.Check())

	_, err = NewPocket(-1)
	assert.ErrorIs(t, err, ErrNegativeAmount)
}

func Test_Pocket_PutOverflowIsRejected(t *testing.T) {
	pocket, err := NewPocket(math.MaxInt64)
	require.NoError(t, err)

	assert.ErrorIs(t, pocket.Put(1), ErrAmountOverflow)
	assert.Equal(t, Money(math.MaxInt64), pocket.Check())
}

func Test_Pocket_HoldBlocksPut(t *testing.T) {
	pocket, err := NewPocket(10)
	require.NoError(t, err)

	assert.Equal(t, Money(10), pocket.hold())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = pocket.Put(5)
	}()

	select {
	case <-done:
		t.Fatal("put completed while the pocket was held")
	case <-shortWait():
	}

	pocket.release()
	<-done
	assert.Equal(t, Money(15), pocket.Check())
}
