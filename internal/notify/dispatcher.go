package notify

import (
	"context"
	"go-finance-ledger/internal/metrics"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type Event string

const (
	EventLowBalance      Event = "low_balance"
	EventGoalCompleted   Event = "goal_completed"
	EventWelcome         Event = "welcome"
	EventGroupInvitation Event = "group_invitation"
)

// Notifier is what the ledger calls after a write has been committed. Calls
// return immediately; delivery failures never reach the caller.
type Notifier interface {
	LowBalance(to, name string, available, threshold decimal.Decimal)
	GoalCompleted(to, name, goal string, target decimal.Decimal)
	Welcome(to, name string)
	GroupInvitation(to, inviter, group, code string)
}

type Dispatcher struct {
	sender  Sender
	logger  *logrus.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(sender Sender, logger *logrus.Logger, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		sender:  sender,
		logger:  logger,
		timeout: timeout,
	}
}

func (d *Dispatcher) LowBalance(to, name string, available, threshold decimal.Decimal) {
	d.dispatch(EventLowBalance, to, "Low balance alert", map[string]string{
		"Name":      name,
		"Available": available.StringFixed(2),
		"Threshold": threshold.StringFixed(2),
	})
}

func (d *Dispatcher) GoalCompleted(to, name, goal string, target decimal.Decimal) {
	d.dispatch(EventGoalCompleted, to, "Goal reached: "+goal, map[string]string{
		"Name":   name,
		"Goal":   goal,
		"Target": target.StringFixed(2),
	})
}

func (d *Dispatcher) Welcome(to, name string) {
	d.dispatch(EventWelcome, to, "Welcome to Finance Ledger", map[string]string{
		"Name": name,
	})
}

func (d *Dispatcher) GroupInvitation(to, inviter, group, code string) {
	d.dispatch(EventGroupInvitation, to, "You are invited to "+group, map[string]string{
		"Inviter": inviter,
		"Group":   group,
		"Code":    code,
	})
}

// Wait blocks until every dispatched notification has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) dispatch(event Event, to, subject string, data map[string]string) {
	log := d.logger.WithFields(logrus.Fields{
		"event": event,
		"to":    to,
	})

	html, text, err := render(string(event), data)
	if err != nil {
		log.WithError(err).Error("Failed to render notification")
		metrics.NotificationsTotal.WithLabelValues(string(event), metrics.OutcomeError).Inc()
		return
	}
	msg := Message{To: to, Subject: subject, HTML: html, Text: text}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.WithField("panic", r).Error("Notification sender panicked")
				metrics.NotificationsTotal.WithLabelValues(string(event), metrics.OutcomeError).Inc()
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.sender.Send(ctx, msg); err != nil {
			log.WithError(err).Warn("Failed to send notification")
			metrics.NotificationsTotal.WithLabelValues(string(event), metrics.OutcomeError).Inc()
			return
		}
		metrics.NotificationsTotal.WithLabelValues(string(event), metrics.OutcomeOK).Inc()
		log.Info("Notification sent")
	}()
}

var _ Notifier = (*Dispatcher)(nil)
