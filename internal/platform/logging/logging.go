package logging

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ogurasousui/orbite-rh-api/internal/core/apperr"
	"github.com/ogurasousui/orbite-rh-api/internal/core/batch"
	"github.com/ogurasousui/orbite-rh-api/internal/platform/config"
)

type loggerContextKey struct{}

// New は設定に従って logrus.Logger を構築します。
func New(cfg config.LogConfig, out io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	if out == nil {
		out = os.Stdout
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(level)
	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger, nil
}

// WithContext は ctx にリクエスト単位のロガーを格納します。
func WithContext(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, entry)
}

// FromContext は ctx のロガーを返します。格納されていなければ標準ロガーを使います。
func FromContext(ctx context.Context) *logrus.Entry {
	if ctx != nil {
		switch typed := ctx.Value(loggerContextKey{}).(type) {
		case *logrus.Entry:
			return typed
		case *logrus.Logger:
			return logrus.NewEntry(typed)
		}
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

// ImportObserver は失敗した取り込み行を原因付きで記録する batch.Observer を返します。
// 応答には汎用メッセージしか含まれないため、内部エラーの詳細はここでだけ残ります。
func ImportObserver(entity string) batch.Observer {
	return batch.ObserverFunc(func(ctx context.Context, line int, outcome batch.Outcome, err error) {
		if outcome != batch.OutcomeFailed {
			return
		}
		entry := FromContext(ctx).WithFields(logrus.Fields{"entity": entity, "line": line})
		if _, ok := apperr.As(err); ok {
			entry.WithError(err).Debug("import row rejected")
			return
		}
		entry.WithError(err).Warn("import row failed")
	})
}
