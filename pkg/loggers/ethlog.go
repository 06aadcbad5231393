package loggers

import (
	"context"

	"github.com/ethereum/go-ethereum/log"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slog"
)

// ethLogHandler forwards go-ethereum records (abi, rlp, event feeds) to a logrus entry
type ethLogHandler struct {
	entry  *logrus.Entry
	prefix string
	min    slog.Level
}

var _ slog.Handler = (*ethLogHandler)(nil)

// InitializeEthLog makes entry the sink of the go-ethereum root logger at the same verbosity
func InitializeEthLog(entry *logrus.Entry) {
	log.SetDefault(log.NewLogger(&ethLogHandler{
		entry: entry,
		min:   toSlogLevel(entry.Logger.GetLevel()),
	}))
}

func toSlogLevel(level logrus.Level) slog.Level {
	switch {
	case level >= logrus.DebugLevel:
		return slog.LevelDebug
	case level == logrus.InfoLevel:
		return slog.LevelInfo
	case level == logrus.WarnLevel:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

func toLogrusLevel(level slog.Level) logrus.Level {
	switch {
	case level >= slog.LevelError:
		return logrus.ErrorLevel
	case level >= slog.LevelWarn:
		return logrus.WarnLevel
	case level >= slog.LevelInfo:
		return logrus.InfoLevel
	case level >= slog.LevelDebug:
		return logrus.DebugLevel
	default:
		return logrus.TraceLevel
	}
}

func (h *ethLogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.min
}

func (h *ethLogHandler) Handle(ctx context.Context, record slog.Record) error {
	fields := make(logrus.Fields, record.NumAttrs())
	record.Attrs(func(attr slog.Attr) bool {
		fields[h.prefix+attr.Key] = attr.Value.Any()
		return true
	})
	h.entry.WithContext(ctx).WithTime(record.Time).WithFields(fields).Log(toLogrusLevel(record.Level), record.Message)
	return nil
}

func (h *ethLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	fields := make(logrus.Fields, len(attrs))
	for _, attr := range attrs {
		fields[h.prefix+attr.Key] = attr.Value.Any()
	}
	return &ethLogHandler{entry: h.entry.WithFields(fields), prefix: h.prefix, min: h.min}
}

// WithGroup qualifies the keys of later attrs as group.key
func (h *ethLogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &ethLogHandler{entry: h.entry, prefix: h.prefix + name + ".", min: h.min}
}
