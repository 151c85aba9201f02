package log

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	level  = zap.NewAtomicLevelAt(zap.InfoLevel)
	logger *zap.Logger
	once   sync.Once
)

func newLogger(ws zapcore.WriteSyncer) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), ws, level)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
}

func build() {
	logger = newLogger(zapcore.Lock(os.Stderr))
}

func get() *zap.Logger {
	once.Do(build)
	return logger
}

// 设置日志级别：debug/info/warn/error
func SetLevel(l string) (err error) {
	var lv zapcore.Level
	if err = lv.UnmarshalText([]byte(l)); err != nil {
		return
	}
	level.SetLevel(lv)
	return
}

// 替换底层logger（测试中可注入zaptest/observer）
func Replace(l *zap.Logger) {
	once.Do(func() {})
	logger = l.WithOptions(zap.AddCallerSkip(1))
}

// 日志输出到指定文件，支持stdout/stderr
func SetOutput(paths ...string) (err error) {
	ws, _, err := zap.Open(paths...)
	if err != nil {
		return
	}
	once.Do(func() {})
	logger = newLogger(ws)
	return
}

// 关闭日志
func Disable() {
	once.Do(func() {})
	logger = zap.NewNop()
}

func Debug(msg string, fields ...zap.Field) {
	get().Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	get().Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	get().Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	get().Error(msg, fields...)
}

func Sync() error {
	return get().Sync()
}
