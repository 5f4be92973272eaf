package buildinfo

import (
	"testing"

	version "github.com/hashicorp/go-version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatVersion(t *testing.T) {
	assert.Equal(t, "1.2.3", format(1, 2, 3))
	assert.Equal(t, "2.0.0-beta.1", format(1, 99, 0))
	assert.Equal(t, "2.0.0-beta.5", format(1, 99, 4))
}

func TestBetaSortsBeforeRelease(t *testing.T) {
	beta, err := version.NewVersion(format(1, 99, 0))
	require.NoError(t, err)
	release, err := version.NewVersion(format(2, 0, 0))
	require.NoError(t, err)
	previous, err := version.NewVersion(format(1, 4, 2))
	require.NoError(t, err)
	assert.True(t, beta.LessThan(release))
	assert.True(t, previous.LessThan(beta))
}

func TestVersionParses(t *testing.T) {
	_, err := version.NewVersion(Version())
	assert.NoError(t, err)
}
