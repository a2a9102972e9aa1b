package log

import (
	"os"

	"github.com/natefinch/lumberjack"
	tmlog "github.com/tendermint/tendermint/libs/log"
)

var (
	fileWriter *lumberjack.Logger
	logger     tmlog.Logger
)

func init() {
	logger = NewConsoleLogger()
}

func InitLogger(l tmlog.Logger) {
	logger = l
}

func NewConsoleLogger() tmlog.Logger {
	return tmlog.NewTMLogger(tmlog.NewSyncWriter(os.Stdout))
}

// NewFileLogger writes to filePath, rotating once the file grows past maxSizeMB
// and dropping rotated files older than maxAgeDays.
func NewFileLogger(filePath string, maxSizeMB, maxAgeDays int) tmlog.Logger {
	if fileWriter != nil {
		fileWriter.Close()
	}

	fileWriter = &lumberjack.Logger{
		Filename: filePath,
		MaxSize:  maxSizeMB,
		MaxAge:   maxAgeDays,
		Compress: true,
	}

	return tmlog.NewTMLogger(tmlog.NewSyncWriter(fileWriter))
}

// WithLevel filters l down to lvl ("debug", "info", "error" or "none").
func WithLevel(l tmlog.Logger, lvl string) (tmlog.Logger, error) {
	opt, err := tmlog.AllowLevel(lvl)
	if err != nil {
		return nil, err
	}
	return tmlog.NewFilter(l, opt), nil
}

// Close flushes and closes the file writer if one is in use.
func Close() error {
	if fileWriter == nil {
		return nil
	}
	return fileWriter.Close()
}

func Debug(msg string, keyvals ...interface{}) {
	logger.Debug(msg, keyvals...)
}

func Info(msg string, keyvals ...interface{}) {
	logger.Info(msg, keyvals...)
}

func Error(msg string, keyvals ...interface{}) {
	logger.Error(msg, keyvals...)
}

func With(keyvals ...interface{}) tmlog.Logger {
	return logger.With(keyvals...)
}
