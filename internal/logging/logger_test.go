package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vjpowerhouse/Basketball-Tracking-system/pkg"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"
)

func TestGetLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, GetLevel("debug"))
	assert.Equal(t, logrus.ErrorLevel, GetLevel("ERROR"))
	assert.Equal(t, logrus.InfoLevel, GetLevel(" info "))
	assert.Equal(t, logrus.WarnLevel, GetLevel("warning"))
	assert.Equal(t, logrus.TraceLevel, GetLevel("trace"))
	assert.Equal(t, logrus.InfoLevel, GetLevel("whatever"))
	assert.Equal(t, logrus.InfoLevel, GetLevel(""))
}

func TestLogOutput(t *testing.T) {
	out, _, err := logOutput(LoggerSetupParams{})
	require.NoError(t, err)
	assert.Equal(t, os.Stdout, out)

	dir := filepath.Join(t.TempDir(), "nested", "logs")
	out, description, err := logOutput(LoggerSetupParams{LogFileName: filepath.Join(dir, "service")})
	require.NoError(t, err)
	fileLogger, ok := out.(*lumberjack.Logger)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "service.log"), fileLogger.Filename)
	assert.Equal(t, defaultLogMaxSizeMB, fileLogger.MaxSize)
	assert.Contains(t, description, "service.log")
	assert.DirExists(t, dir)

	out, _, err = logOutput(LoggerSetupParams{
		LogFileName:  filepath.Join(dir, "mcp.log"),
		LogToStdout:  true,
		LogMaxSizeMB: 5,
	})
	require.NoError(t, err)
	assert.IsType(t, &pkg.CombinedWriter{}, out)
}

func TestDefaultFieldsHook(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logrus.New()
	logger.SetOutput(buf)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.AddHook(newDefaultFieldsHook("hoopstats-service", "production"))

	logger.WithField("env", "overridden").Info("entry logged")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hoopstats-service", line["service"])
	assert.Equal(t, "overridden", line["env"])
	assert.Equal(t, "entry logged", line["msg"])

	assert.Equal(t, logrus.Fields{"env": "dev"}, newDefaultFieldsHook("", "dev").fields)
}

func TestSentryHook_EntryToEvent(t *testing.T) {
	hook := NewSentryHook([]logrus.Level{logrus.ErrorLevel})
	assert.Equal(t, []logrus.Level{logrus.ErrorLevel}, hook.Levels())

	now := time.Now()
	entry := &logrus.Entry{
		Level:   logrus.ErrorLevel,
		Message: "failed to list observations",
		Time:    now,
		Data: logrus.Fields{
			"category":      "conditioning",
			logrus.ErrorKey: errors.New("sheet missing"),
		},
	}

	event := entryToEvent(entry)
	assert.Equal(t, sentry.LevelError, event.Level)
	assert.Equal(t, "failed to list observations", event.Message)
	assert.Equal(t, now, event.Timestamp)
	assert.Equal(t, "conditioning", event.Extra["category"])
	assert.Equal(t, "sheet missing", event.Extra[logrus.ErrorKey])

	assert.Equal(t, sentry.LevelFatal, sentryLevel(logrus.PanicLevel))
	assert.Equal(t, sentry.LevelWarning, sentryLevel(logrus.WarnLevel))
}
