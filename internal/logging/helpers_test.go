package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithLogHelpersAccumulateFields(t *testing.T) {
	ctx := context.Background()
	ctx = WithLogRequestID(ctx, "req")
	ctx = WithLogRequestPath(ctx, "/path")
	ctx = WithLogRequestMethod(ctx, "GET")
	ctx = WithLogRequestStatus(ctx, 200)
	ctx = WithLogRequestDuration(ctx, "5ms")
	ctx = WithLogClassName(ctx, "1-A")
	ctx = WithLogRosterSize(ctx, 35)
	ctx = WithLogGenerator(ctx, "LCG")
	ctx = WithLogStudentNumber(ctx, 12)

	value, ok := ctx.Value(key).(logCtx)
	require.True(t, ok)
	require.Equal(t, "req", value.RequestID)
	require.Equal(t, "/path", value.Path)
	require.Equal(t, "GET", value.Method)
	require.Equal(t, 200, value.Status)
	require.Equal(t, "5ms", value.RequestDuration)
	require.Equal(t, "1-A", value.ClassName)
	require.Equal(t, 35, value.RosterSize)
	require.Equal(t, "LCG", value.Generator)
	require.Equal(t, 12, value.StudentNumber)
}
