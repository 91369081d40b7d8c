package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mealcal/core/internal/infrastructure/config"
)

const serviceName = "mealcal"

// Logger is the application logger. Every entry carries service=mealcal.
type Logger struct {
	*zap.SugaredLogger
}

// New builds a logger from cfg. Format is json or console, output stdout or file.
func New(cfg config.LoggerConfig) (*Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	sink, err := openSink(cfg)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(newEncoder(cfg.Format), sink, zap.NewAtomicLevelAt(level))
	opts := []zap.Option{
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(zap.String("service", serviceName)),
	}

	return &Logger{SugaredLogger: zap.New(core, opts...).Sugar()}, nil
}

func newEncoder(format string) zapcore.Encoder {
	if strings.EqualFold(format, "json") {
		enc := zap.NewProductionEncoderConfig()
		enc.TimeKey = "time"
		enc.EncodeTime = zapcore.ISO8601TimeEncoder
		enc.EncodeDuration = zapcore.MillisDurationEncoder
		return zapcore.NewJSONEncoder(enc)
	}

	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	enc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	return zapcore.NewConsoleEncoder(enc)
}

func openSink(cfg config.LoggerConfig) (zapcore.WriteSyncer, error) {
	if cfg.Output != "file" || cfg.Filename == "" {
		return zapcore.Lock(os.Stdout), nil
	}

	sink, _, err := zap.Open(cfg.Filename)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", cfg.Filename, err)
	}
	return sink, nil
}

// NewNop returns a logger that discards everything
func NewNop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// FromZap wraps an existing zap logger
func FromZap(l *zap.Logger) *Logger {
	return &Logger{SugaredLogger: l.Sugar()}
}

// WithComponent tags every entry with the subsystem that wrote it
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With("component", component)}
}

// LogEventAction records a change to a calendar event made by its owner
func (l *Logger) LogEventAction(owner fmt.Stringer, eventID int64, action string, kv ...interface{}) {
	fields := make([]interface{}, 0, 6+len(kv))
	fields = append(fields, "user_id", owner.String(), "event_id", eventID, "action", action)
	fields = append(fields, kv...)
	l.Infow("Calendar event "+strings.ReplaceAll(action, "_", " "), fields...)
}

// LogSecurityEvent records a rejected login or token at warn level
func (l *Logger) LogSecurityEvent(event, ip string, kv ...interface{}) {
	fields := make([]interface{}, 0, 4+len(kv))
	fields = append(fields, "security_event", event, "ip", ip)
	fields = append(fields, kv...)
	l.Warnw("Security event", fields...)
}

// Close flushes buffered entries
func (l *Logger) Close() error {
	err := l.SugaredLogger.Sync()
	// stdout cannot be fsynced on most terminals
	if err != nil && strings.Contains(err.Error(), "/dev/stdout") {
		return nil
	}
	return err
}
