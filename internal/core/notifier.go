package core

import "log"

// Notifier reports the outcome of each backend call to the user.
type Notifier interface {
	Success(msg string)
	Failure(msg string, err error)
}

// LogNotifier writes notifications to the standard logger.
type LogNotifier struct{}

func (LogNotifier) Success(msg string) {
	log.Printf("ok: %s", msg)
}

func (LogNotifier) Failure(msg string, err error) {
	log.Printf("error: %s: %v", msg, err)
}

type discardNotifier struct{}

func (discardNotifier) Success(string)        {}
func (discardNotifier) Failure(string, error) {}

// DiscardNotifier drops every notification.
var DiscardNotifier Notifier = discardNotifier{}
