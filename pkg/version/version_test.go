package version_test

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/macropower/csvr/pkg/version"
)

func TestGetVersion(t *testing.T) {
	t.Parallel()

	// Tests run without ldflags, so the VCS revision is reported.
	assert.Equal(t, version.Revision, version.GetVersion())
	assert.NotEmpty(t, version.GetVersion())
}

func TestInfo(t *testing.T) {
	t.Parallel()

	info := version.Info()
	assert.Contains(t, info, runtime.Version())
	assert.Contains(t, info, runtime.GOOS+"/"+runtime.GOARCH)
}
