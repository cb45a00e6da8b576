package version

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()
	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GitCommit)
	assert.NotEmpty(t, info.GoVersion)
	assert.NotEmpty(t, info.Platform)
}

func TestGetBuildInfoParsesValidDate(t *testing.T) {
	originalBuildDate := BuildDate
	defer func() { BuildDate = originalBuildDate }()

	BuildDate = "2026-01-13T20:00:00Z"
	info := GetBuildInfo()

	expected, err := time.Parse(time.RFC3339, BuildDate)
	require.NoError(t, err)
	assert.True(t, info.BuildTime.Equal(expected))
}

func TestBuildInfoString(t *testing.T) {
	s := GetBuildInfo().String()
	assert.Contains(t, s, "trackeraudit")
	assert.Contains(t, s, Version)
}
