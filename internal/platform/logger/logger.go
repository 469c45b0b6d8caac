package logger

import (
	"strings"

	"go.uber.org/zap"

	"github.com/yungbote/neurobridge-docchat/internal/platform/envutil"
)

// Logger is a sugared zap logger that scrubs key/value pairs before they are
// written. Credentials and message content never reach the output verbatim.
type Logger struct {
	SugaredLogger *zap.SugaredLogger
	redact        *redactor
}

type options struct {
	redaction bool
	salt      string
	outputs   []string
}

type Option func(*options)

// WithRedaction overrides LOG_REDACTION_ENABLED.
func WithRedaction(on bool) Option { return func(o *options) { o.redaction = on } }

// WithHashSalt overrides LOG_HASH_SALT.
func WithHashSalt(salt string) Option { return func(o *options) { o.salt = salt } }

// WithOutputs replaces the default stderr sink with zap output paths.
func WithOutputs(paths ...string) Option { return func(o *options) { o.outputs = paths } }

// New builds a logger for mode: "production" logs JSON at info, "cli" (or
// "quiet") logs at warn, anything else is development at debug. Output goes
// to stderr unless WithOutputs says otherwise; stdout belongs to commands.
func New(mode string, opts ...Option) (*Logger, error) {
	o := options{
		redaction: envutil.Bool("LOG_REDACTION_ENABLED", true),
		salt:      envutil.String("LOG_HASH_SALT", ""),
		outputs:   []string{"stderr"},
	}
	for _, opt := range opts {
		opt(&o)
	}

	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	case "quiet", "cli":
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.OutputPaths = o.outputs
	cfg.ErrorOutputPaths = []string{"stderr"}
	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: z.Sugar(), redact: newRedactor(o.redaction, o.salt)}, nil
}

// Nop discards everything.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar(), redact: newRedactor(false, "")}
}

func (l *Logger) Sync() { _ = l.SugaredLogger.Sync() }

func (l *Logger) Debug(msg string, kv ...interface{}) {
	l.SugaredLogger.Debugw(msg, l.redact.pairs(kv)...)
}

func (l *Logger) Info(msg string, kv ...interface{}) {
	l.SugaredLogger.Infow(msg, l.redact.pairs(kv)...)
}

func (l *Logger) Warn(msg string, kv ...interface{}) {
	l.SugaredLogger.Warnw(msg, l.redact.pairs(kv)...)
}

func (l *Logger) Error(msg string, kv ...interface{}) {
	l.SugaredLogger.Errorw(msg, l.redact.pairs(kv)...)
}

func (l *Logger) With(kv ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(l.redact.pairs(kv)...), redact: l.redact}
}
