package errreport

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compaward_backend/internals/helpers/apperror"
)

func TestStackFramesReadsWrappedStack(t *testing.T) {
	frames, ok := StackFrames(apperror.Internal(fmt.Errorf("boom"), "load"))
	require.True(t, ok)
	require.NotEmpty(t, frames)

	files := make([]string, 0, len(frames))
	for _, f := range frames {
		files = append(files, filepath.Base(f.File))
	}
	assert.Contains(t, files, "rollbar_test.go")
	assert.Contains(t, files, "apperror.go")

	_, ok = StackFrames(fmt.Errorf("plain"))
	assert.False(t, ok)
	_, ok = StackFrames(apperror.NotFound("award not found"))
	assert.False(t, ok)
}
