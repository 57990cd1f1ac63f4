package crud

import "go.uber.org/zap"

// Deny is a Confirmer that declines everything.
type Deny struct{}

func (Deny) Confirm(string, string) bool { return false }

// Accept is a Confirmer that approves everything.
type Accept struct{}

func (Accept) Confirm(string, string) bool { return true }

type logNotifier struct{ log *zap.Logger }

func (n logNotifier) Notify(title, message string) {
	n.log.Info("alert", zap.String("title", title), zap.String("message", message))
}
