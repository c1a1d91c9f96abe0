package logging

import (
	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

// SentryHook forwards log entries of the given levels to sentry.
// Entries carrying an error field go out as exceptions, the rest as messages.
type SentryHook struct {
	levels  []logrus.Level
	capture func(entry *logrus.Entry)
}

func NewSentryHook(levels []logrus.Level) *SentryHook {
	return &SentryHook{
		levels:  levels,
		capture: captureEntry,
	}
}

func (h *SentryHook) Levels() []logrus.Level {
	return h.levels
}

func (h *SentryHook) Fire(entry *logrus.Entry) error {
	h.capture(entry)
	return nil
}

func captureEntry(entry *logrus.Entry) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentryLevel(entry.Level))
		for k, v := range entry.Data {
			if k == logrus.ErrorKey {
				continue
			}
			scope.SetExtra(k, v)
		}

		if err, ok := entry.Data[logrus.ErrorKey].(error); ok && err != nil {
			sentry.CaptureException(err)
			return
		}
		sentry.CaptureMessage(entry.Message)
	})
}

func sentryLevel(level logrus.Level) sentry.Level {
	switch level {
	case logrus.PanicLevel, logrus.FatalLevel:
		return sentry.LevelFatal
	case logrus.ErrorLevel:
		return sentry.LevelError
	case logrus.WarnLevel:
		return sentry.LevelWarning
	case logrus.InfoLevel:
		return sentry.LevelInfo
	default:
		return sentry.LevelDebug
	}
}
