package client

import (
	"dochub/internal/logging"
)

type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notification - короткое сообщение для пользователя
type Notification struct {
	Level   Level
	Title   string
	Message string
}

type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc позволяет использовать функцию как Notifier
type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// LogNotifier пишет уведомления в лог
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{logger: logging.New("notifier")}
}

func (n *LogNotifier) Notify(msg Notification) {
	if msg.Level == LevelError {
		n.logger.Errorf("%s: %s", msg.Title, msg.Message)
		return
	}
	n.logger.Infof("%s: %s", msg.Title, msg.Message)
}

type nopNotifier struct{}

func (nopNotifier) Notify(Notification) {}

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
