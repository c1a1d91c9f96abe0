package logging

import (
	"io"
	"os"
	"strings"

	"github.com/2beens/trainingapp/pkg"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type LoggerSetupParams struct {
	// Component is attached to every entry, e.g. "service" or "trainer".
	Component     string
	LogFileName   string
	LogToStdout   bool
	LogLevel      string
	LogFormatJSON bool
	// zero keeps rotated files forever
	LogMaxBackups int
	LogMaxAgeDays int

	Environment      string
	SentryEnabled    bool
	SentryDSN        string
	SentryServerName string
}

func Setup(params LoggerSetupParams) {
	if params.LogFormatJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	if params.Component != "" {
		logrus.AddHook(NewFieldsHook(logrus.Fields{"component": params.Component}))
	}

	if params.SentryEnabled {
		err := sentry.Init(sentry.ClientOptions{
			Environment:      params.Environment,
			Dsn:              params.SentryDSN,
			TracesSampleRate: 1.0,
			ServerName:       params.SentryServerName,
		})
		if err != nil {
			logrus.Errorf("sentry.Init: %s", err)
		} else {
			logrus.AddHook(NewSentryHook([]logrus.Level{
				logrus.PanicLevel,
				logrus.FatalLevel,
				logrus.ErrorLevel,
			}))
			logrus.Infoln("sentry set up")
		}
	}

	logrus.SetLevel(GetLevel(params.LogLevel))
	logrus.SetOutput(output(params))
}

func output(params LoggerSetupParams) io.Writer {
	if params.LogFileName == "" {
		logrus.Println("writing logs only to STDOUT")
		return os.Stdout
	}

	if !strings.HasSuffix(params.LogFileName, ".log") {
		params.LogFileName += ".log"
	}
	rotating := &lumberjack.Logger{
		Filename:   params.LogFileName,
		MaxSize:    50, // megabytes
		MaxBackups: params.LogMaxBackups,
		MaxAge:     params.LogMaxAgeDays,
		LocalTime:  false, // UTC
		Compress:   true,
	}

	if !params.LogToStdout {
		logrus.Printf("writing logs to %s", params.LogFileName)
		return rotating
	}
	logrus.Printf("writing logs to %s and STDOUT", params.LogFileName)
	return pkg.NewCombinedWriter(os.Stdout, rotating)
}

// FieldsHook adds a fixed set of fields to every entry that does not set them itself.
type FieldsHook struct {
	fields logrus.Fields
}

func NewFieldsHook(fields logrus.Fields) *FieldsHook {
	return &FieldsHook{fields: fields}
}

func (h *FieldsHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *FieldsHook) Fire(entry *logrus.Entry) error {
	for k, v := range h.fields {
		if _, ok := entry.Data[k]; !ok {
			entry.Data[k] = v
		}
	}
	return nil
}

func GetLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "info":
		return logrus.InfoLevel
	case "trace":
		return logrus.TraceLevel
	case "warn":
		return logrus.WarnLevel
	default:
		return logrus.TraceLevel
	}
}
