package gormlog

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shulefund/payments/pkg/logctx"
)

// ZapLogger implements gorm.io/gorm/logger.Interface on top of the service
// logger, enriching entries with the request trace id via logctx.
type ZapLogger struct {
	base   *zap.SugaredLogger
	config gormlogger.Config
}

func New(base *zap.SugaredLogger) *ZapLogger {
	cfg := gormlogger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	}
	return &ZapLogger{base: base, config: cfg}
}

func (z *ZapLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cfg := z.config
	cfg.LogLevel = level
	return &ZapLogger{base: z.base, config: cfg}
}

func (z *ZapLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if z.config.LogLevel >= gormlogger.Info {
		logctx.FromCtx(ctx, z.base).Infow(msg, "args", data)
	}
}

func (z *ZapLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if z.config.LogLevel >= gormlogger.Warn {
		logctx.FromCtx(ctx, z.base).Warnw(msg, "args", data)
	}
}

func (z *ZapLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if z.config.LogLevel >= gormlogger.Error {
		logctx.FromCtx(ctx, z.base).Errorw(msg, "args", data)
	}
}

func (z *ZapLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if z.config.LogLevel <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	log := logctx.FromCtx(ctx, z.base)

	switch {
	case err != nil && z.config.LogLevel >= gormlogger.Error &&
		!(z.config.IgnoreRecordNotFoundError && errors.Is(err, gorm.ErrRecordNotFound)):
		sql, rows := fc()
		log.Errorw("sql error", "err", err, "sql", sql, "rows", rows, "elapsed_ms", elapsed.Milliseconds())
	case elapsed > z.config.SlowThreshold && z.config.SlowThreshold > 0 && z.config.LogLevel >= gormlogger.Warn:
		sql, rows := fc()
		log.Warnw("slow sql", "sql", sql, "rows", rows, "elapsed_ms", elapsed.Milliseconds())
	case z.config.LogLevel >= gormlogger.Info:
		sql, rows := fc()
		log.Debugw("sql", "sql", sql, "rows", rows, "elapsed_ms", elapsed.Milliseconds())
	}
}
