package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Level distingue avisos de exito y de fallo.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice es un aviso transitorio dirigido al usuario.
type Notice struct {
	ID      string
	Level   Level
	Message string
	At      time.Time
}

// Notifier define la interfaz para emitir avisos al usuario.
type Notifier interface {
	Success(message string)
	Error(message string)
}

type logNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier emite avisos como entradas de log estructurado.
func NewLogNotifier(logger *zap.Logger) Notifier {
	return &logNotifier{logger: logger}
}

func (n *logNotifier) Success(message string) {
	if n.logger != nil {
		n.logger.Info("notice", zap.String("level", string(LevelSuccess)), zap.String("message", message))
	}
}

func (n *logNotifier) Error(message string) {
	if n.logger != nil {
		n.logger.Warn("notice", zap.String("level", string(LevelError)), zap.String("message", message))
	}
}

// Feed acumula avisos recientes para que la UI los muestre y descarte.
type Feed struct {
	mu      sync.Mutex
	max     int
	pending []Notice
	logger  *zap.Logger
}

// NewFeed crea un feed con capacidad acotada; los avisos mas viejos se
// descartan al superarla.
func NewFeed(max int, logger *zap.Logger) *Feed {
	if max <= 0 {
		max = 10
	}
	return &Feed{max: max, logger: logger}
}

func (f *Feed) Success(message string) {
	f.push(LevelSuccess, message)
}

func (f *Feed) Error(message string) {
	f.push(LevelError, message)
}

func (f *Feed) push(level Level, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, Notice{
		ID:      uuid.NewString(),
		Level:   level,
		Message: message,
		At:      time.Now().UTC(),
	})
	if len(f.pending) > f.max {
		f.pending = f.pending[len(f.pending)-f.max:]
	}
	if f.logger != nil {
		f.logger.Info("notice", zap.String("level", string(level)), zap.String("message", message))
	}
}

// Drain devuelve los avisos pendientes y vacia el feed.
func (f *Feed) Drain() []Notice {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.pending
	f.pending = nil
	return out
}
