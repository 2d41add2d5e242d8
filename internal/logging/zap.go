package logging

import (
	"go.uber.org/zap"
)

// ZapLogger adapts a *zap.Logger to interfaces.Logger. The daemon uses it in
// production mode; tests and the CLI stick with StdoutLogger.
type ZapLogger struct {
	z *zap.SugaredLogger
}

// NewZapLogger builds a production zap logger scoped to component.
// Falls back to a no-op zap core if construction fails.
func NewZapLogger(component string) *ZapLogger {
	z, err := zap.NewProduction()
	if err != nil {
		z = zap.NewNop()
	}
	s := z.Sugar()
	if component != "" {
		s = s.With("component", component)
	}
	return &ZapLogger{z: s}
}

func (l *ZapLogger) kv(fields []Field) []any {
	out := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		out = append(out, f.Key, f.Value)
	}
	return out
}

func (l *ZapLogger) Debug(msg string, fields ...Field) { l.z.Debugw(msg, l.kv(fields)...) }
func (l *ZapLogger) Info(msg string, fields ...Field)  { l.z.Infow(msg, l.kv(fields)...) }
func (l *ZapLogger) Warn(msg string, fields ...Field)  { l.z.Warnw(msg, l.kv(fields)...) }
func (l *ZapLogger) Error(msg string, fields ...Field) { l.z.Errorw(msg, l.kv(fields)...) }

func (l *ZapLogger) With(fields ...Field) Logger {
	return &ZapLogger{z: l.z.With(l.kv(fields)...)}
}

// Sync flushes buffered log entries. Call before process exit.
func (l *ZapLogger) Sync() {
	_ = l.z.Sync()
}
