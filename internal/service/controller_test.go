package service

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewController_EmptyNameIsNop(t *testing.T) {
	ctrl := NewController("")
	_, isNop := ctrl.(nopController)
	assert.True(t, isNop)

	require.NoError(t, ctrl.Stop(context.Background()))
	require.NoError(t, ctrl.Start(context.Background()))
}

func TestDockerController_ReportsCommandFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on unix false/true binaries")
	}

	ctrl := &DockerController{container: "calibre", docker: "false"}
	assert.Error(t, ctrl.Stop(context.Background()))
	assert.Error(t, ctrl.Start(context.Background()))

	ctrl = &DockerController{container: "calibre", docker: "true"}
	assert.NoError(t, ctrl.Stop(context.Background()))
	assert.NoError(t, ctrl.Start(context.Background()))
}
