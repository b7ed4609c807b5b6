package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vjpowerhouse/Basketball-Tracking-system/pkg"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const defaultLogMaxSizeMB = 50

type LoggerSetupParams struct {
	// ServiceName and Environment are added to every entry, so the service, mcp and report
	// binaries can share one log sink.
	ServiceName string
	Environment string

	LogFileName   string
	LogToStdout   bool
	LogLevel      string
	LogFormatJSON bool
	LogMaxSizeMB  int

	SentryEnabled bool
	SentryDSN     string
}

func Setup(params LoggerSetupParams) error {
	if params.LogFormatJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	logrus.SetLevel(GetLevel(params.LogLevel))

	out, description, err := logOutput(params)
	if err != nil {
		return err
	}
	logrus.SetOutput(out)
	logrus.Debugln(description)

	if params.ServiceName != "" || params.Environment != "" {
		logrus.AddHook(newDefaultFieldsHook(params.ServiceName, params.Environment))
	}

	if params.SentryEnabled {
		setupSentry(params)
	}

	return nil
}

// logOutput returns stdout, a rotated log file, or both. The file gets a .log suffix and
// its directory is created when missing.
func logOutput(params LoggerSetupParams) (io.Writer, string, error) {
	if params.LogFileName == "" {
		return os.Stdout, "writing logs only to STDOUT", nil
	}

	fileName := params.LogFileName
	if !strings.HasSuffix(fileName, ".log") {
		fileName += ".log"
	}
	if err := os.MkdirAll(filepath.Dir(fileName), 0o755); err != nil {
		return nil, "", fmt.Errorf("create logs dir: %w", err)
	}

	maxSize := params.LogMaxSizeMB
	if maxSize <= 0 {
		maxSize = defaultLogMaxSizeMB
	}
	lumberJackLogger := &lumberjack.Logger{
		Filename:  fileName,
		MaxSize:   maxSize,
		LocalTime: false, // false -> use UTC
		Compress:  true,
	}

	if params.LogToStdout {
		return pkg.NewCombinedWriter(os.Stdout, lumberJackLogger), "writing logs to " + fileName + " and STDOUT", nil
	}
	return lumberJackLogger, "writing logs to " + fileName, nil
}

func setupSentry(params LoggerSetupParams) {
	if params.SentryDSN == "" {
		logrus.Warnln("sentry enabled, but no DSN set")
		return
	}

	err := sentry.Init(sentry.ClientOptions{
		Environment:      params.Environment,
		Dsn:              params.SentryDSN,
		TracesSampleRate: 1.0,
		ServerName:       params.ServiceName,
	})
	if err != nil {
		logrus.Errorf("sentry.Init: %s", err)
		return
	}

	logrus.AddHook(NewSentryHook([]logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
	}))
	logrus.Infoln("Sentry set up successfully")
}

// GetLevel parses a logrus level name, falling back to info.
func GetLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return logrus.InfoLevel
	}
	return parsed
}

type defaultFieldsHook struct {
	fields logrus.Fields
}

func newDefaultFieldsHook(service, env string) *defaultFieldsHook {
	fields := logrus.Fields{}
	if service != "" {
		fields["service"] = service
	}
	if env != "" {
		fields["env"] = env
	}
	return &defaultFieldsHook{fields: fields}
}

func (h *defaultFieldsHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *defaultFieldsHook) Fire(entry *logrus.Entry) error {
	for k, v := range h.fields {
		if _, ok := entry.Data[k]; !ok {
			entry.Data[k] = v
		}
	}
	return nil
}
