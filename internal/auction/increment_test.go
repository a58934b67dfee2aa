package auction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActiveIncrement(t *testing.T) {
	cases := []struct {
		currentBid int
		want       int
	}{
		{0, 20},
		{100, 20},
		{399, 20},
		{400, 50},
		{999, 50},
		{1000, 100},
		{1999, 100},
		{2000, 200},
		{5000, 200},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ActiveIncrement(tc.currentBid), "bid %d", tc.currentBid)
	}
}
