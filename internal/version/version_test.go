package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	t.Parallel()

	info := Get()
	assert.NotEmpty(t, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
}

func TestInfo_String(t *testing.T) {
	t.Parallel()

	info := Info{Version: "v1.2.3", Commit: "abc1234", BuildDate: "2024-05-04", GoVersion: "go1.25.1", Platform: "linux/amd64"}
	assert.Equal(t, "change-tag-push v1.2.3\ncommit: abc1234\nbuilt: 2024-05-04\ngo: go1.25.1\nplatform: linux/amd64\n", info.String())
}

func TestIsDevBuild(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Version == "dev", IsDevBuild())
}
