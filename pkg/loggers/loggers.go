package loggers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"

	"github.com/bcnmy/scw-contracts-sub000/pkg/repo"
)

const (
	Storage        = "storage"
	Ledger         = "ledger"
	Executor       = "executor"
	SystemContract = "system_contract"
	Account        = "account"
	CLI            = "cli"
)

var modules = []string{Storage, Ledger, Executor, SystemContract, Account, CLI}

var w = &LoggerWrapper{
	loggers: func() map[string]*logrus.Entry {
		m := make(map[string]*logrus.Entry, len(modules))
		for _, name := range modules {
			m[name] = NewWithModule(name)
		}
		return m
	}(),
}

type LoggerWrapper struct {
	loggers map[string]*logrus.Entry
}

// NewWithModule returns a logger with its own level tagged with the module name
func NewWithModule(name string) *logrus.Entry {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000",
	})
	return l.WithField("module", name)
}

func ParseLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

func Initialize(ctx context.Context, rep *repo.Repo, persist bool) error {
	config := rep.Config.Log
	formatter := &logrus.TextFormatter{
		ForceColors:      config.EnableColor,
		DisableColors:    !config.EnableColor,
		DisableTimestamp: config.DisableTimestamp,
		FullTimestamp:    true,
		TimestampFormat:  "2006-01-02T15:04:05.000",
	}

	var hook logrus.Hook
	if persist {
		logDir := filepath.Join(rep.RepoRoot, repo.LogsDirName)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return fmt.Errorf("log initialize: %w", err)
		}
		writer, err := rotatelogs.New(
			filepath.Join(logDir, config.Filename+".%Y%m%d%H.log"),
			rotatelogs.WithLinkName(filepath.Join(logDir, config.Filename+".log")),
			rotatelogs.WithMaxAge(time.Duration(config.MaxAge)*24*time.Hour),
			rotatelogs.WithRotationTime(config.RotationTime.ToDuration()),
		)
		if err != nil {
			return fmt.Errorf("log initialize: %w", err)
		}
		go func() {
			<-ctx.Done()
			_ = writer.Close()
		}()

		hook = lfshook.NewHook(lfshook.WriterMap{
			logrus.TraceLevel: writer,
			logrus.DebugLevel: writer,
			logrus.InfoLevel:  writer,
			logrus.WarnLevel:  writer,
			logrus.ErrorLevel: writer,
			logrus.FatalLevel: writer,
			logrus.PanicLevel: writer,
		}, &logrus.JSONFormatter{})
	}

	levels := map[string]string{
		Storage:        config.Module.Storage,
		Ledger:         config.Module.Ledger,
		Executor:       config.Module.Executor,
		SystemContract: config.Module.SystemContract,
		Account:        config.Module.Account,
		CLI:            config.Module.CLI,
	}

	m := make(map[string]*logrus.Entry, len(modules))
	for _, name := range modules {
		entry := NewWithModule(name)
		entry.Logger.SetFormatter(formatter)
		entry.Logger.SetReportCaller(config.ReportCaller)
		entry.Logger.SetLevel(ParseLevel(levels[name]))
		if hook != nil {
			entry.Logger.AddHook(hook)
		}
		m[name] = entry
	}

	w = &LoggerWrapper{loggers: m}
	InitializeEthLog(m[Executor])
	return nil
}

func Logger(name string) logrus.FieldLogger {
	return w.loggers[name]
}
