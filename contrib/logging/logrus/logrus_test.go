package logrus_test

import (
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wlogrus "github.com/arloliu/wukong/contrib/logging/logrus"
)

func newTestLogger(t *testing.T) (*wlogrus.Logger, *test.Hook) {
	t.Helper()

	l, hook := test.NewNullLogger()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.DebugLevel)

	return wlogrus.New(l), hook
}

func TestLoggerLevels(t *testing.T) {
	logger, hook := newTestLogger(t)

	logger.Debug("d")
	logger.Info("i")
	logger.Warn("w")
	logger.Error("e")

	entries := hook.AllEntries()
	require.Len(t, entries, 4)
	assert.Equal(t, logrus.DebugLevel, entries[0].Level)
	assert.Equal(t, logrus.InfoLevel, entries[1].Level)
	assert.Equal(t, logrus.WarnLevel, entries[2].Level)
	assert.Equal(t, logrus.ErrorLevel, entries[3].Level)
	assert.Equal(t, "e", entries[3].Message)
}

func TestLoggerFields(t *testing.T) {
	logger, hook := newTestLogger(t)
	cause := errors.New("refused")

	logger.Warn("node attempt failed", "node", "http://solr1:8983/solr/", "error", cause, 42, "answer", "dangling")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "node attempt failed", entry.Message)
	assert.Equal(t, "http://solr1:8983/solr/", entry.Data["node"])
	assert.Equal(t, cause, entry.Data["error"])
	assert.Equal(t, "answer", entry.Data["42"])
	assert.Equal(t, "dangling", entry.Data["!BADKEY"])
}

func TestLoggerWith(t *testing.T) {
	logger, hook := newTestLogger(t)

	logger.With("collection", "cities").Info("refreshed", "nodes", 3)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "cities", entry.Data["collection"])
	assert.Equal(t, 3, entry.Data["nodes"])
}

func TestNewFromEntry(t *testing.T) {
	l, hook := test.NewNullLogger()
	logger := wlogrus.NewFromEntry(l.WithField("component", "router"))

	logger.Info("hello")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "router", entry.Data["component"])
}
