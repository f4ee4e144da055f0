package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptions(t *testing.T) {
	opts, err := ParseOptions([]string{
		"-F", "5", "-N", "3.5", "-O", "1", "-S", "42",
		"-E", "-D", "-s", "APRIORI", "-p", "MIN",
	})
	require.NoError(t, err)

	f := NewFURIA(opts...)
	assert.Equal(t, 5, f.folds)
	assert.Equal(t, 3.5, f.minNo)
	assert.Equal(t, 1, f.optimizations)
	assert.Equal(t, int64(42), f.seed)
	assert.False(t, f.checkErr)
	assert.True(t, f.debug)
	assert.Equal(t, UncovActionApriori, f.uncovAction)
	assert.Equal(t, TNormMin, f.tNorm)
}

func TestParseOptionsNumericTags(t *testing.T) {
	opts, err := ParseOptions([]string{"-s", "2", "-p", "1"})
	require.NoError(t, err)

	f := NewFURIA(opts...)
	assert.Equal(t, UncovActionReject, f.uncovAction)
	assert.Equal(t, TNormMin, f.tNorm)
}

func TestParseOptionsRejectsBadInput(t *testing.T) {
	cases := [][]string{
		{"-X"},
		{"-F"},
		{"-F", "three"},
		{"-N", "much"},
		{"-s", "MAYBE"},
		{"-p", "7"},
	}
	for _, args := range cases {
		_, err := ParseOptions(args)
		assert.Error(t, err, "args %v", args)
	}
}

func TestGetOptionsRoundTrip(t *testing.T) {
	f := NewFURIA(WithFolds(4), WithSeed(9), WithCheckErrorRate(false),
		WithTNorm(TNormMin), WithUncovAction(UncovActionReject))

	opts, err := ParseOptions(f.GetOptions())
	require.NoError(t, err)
	g := NewFURIA(opts...)

	assert.Equal(t, f.folds, g.folds)
	assert.Equal(t, f.minNo, g.minNo)
	assert.Equal(t, f.optimizations, g.optimizations)
	assert.Equal(t, f.seed, g.seed)
	assert.Equal(t, f.checkErr, g.checkErr)
	assert.Equal(t, f.uncovAction, g.uncovAction)
	assert.Equal(t, f.tNorm, g.tNorm)
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "PROD", TNormProduct.String())
	assert.Equal(t, "MIN", TNormMin.String())
	assert.Equal(t, "STRETCH", UncovActionStretch.String())
	assert.Equal(t, "APRIORI", UncovActionApriori.String())
	assert.Equal(t, "REJECT", UncovActionReject.String())
}
