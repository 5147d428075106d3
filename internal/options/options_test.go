package options

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func TestLoggerRoundTrip(t *testing.T) {
	log, hook := test.NewNullLogger()
	ctx := WithLogger(context.Background(), log)
	Logger(ctx).WithField("file", "a.parm").Info("decoded")
	require.Len(t, hook.Entries, 1)
	require.Equal(t, "a.parm", hook.LastEntry().Data["file"])
}

func TestLoggerDefault(t *testing.T) {
	require.Equal(t, logrus.StandardLogger(), Logger(context.Background()))
	require.Equal(t, logrus.StandardLogger(), Logger(WithLogger(context.Background(), nil)))
}

func TestStrict(t *testing.T) {
	ctx := context.Background()
	require.False(t, Strict(ctx))
	require.True(t, Strict(WithStrict(ctx, true)))
	require.False(t, Strict(WithStrict(WithStrict(ctx, true), false)))
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel(" DEBUG ")
	require.NoError(t, err)
	require.Equal(t, logrus.DebugLevel, level)

	level, err = ParseLevel("")
	require.NoError(t, err)
	require.Equal(t, logrus.InfoLevel, level)

	_, err = ParseLevel("loud")
	require.Error(t, err)
}
