package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUserArg(t *testing.T) {
	for _, arg := range []string{"123", "<@123>", "<@!123>"} {
		id, err := ParseUserArg(arg)
		require.NoError(t, err, arg)
		assert.Equal(t, int64(123), id)
	}

	for _, arg := range []string{"", "abc", "<@abc>", "-5", "0"} {
		_, err := ParseUserArg(arg)
		assert.Error(t, err, arg)
	}
}

func TestParseChannelArg(t *testing.T) {
	for _, arg := range []string{"456", "<#456>"} {
		id, err := ParseChannelArg(arg)
		require.NoError(t, err, arg)
		assert.Equal(t, int64(456), id)
	}

	_, err := ParseChannelArg("<#nope>")
	assert.Error(t, err)
}

func TestParseAmountArg(t *testing.T) {
	amount, err := ParseAmountArg("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), amount)

	for _, arg := range []string{"0", "-1", "ten"} {
		_, err := ParseAmountArg(arg)
		assert.Error(t, err, arg)
	}
}
