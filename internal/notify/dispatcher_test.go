package notify

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestDispatcher(sender Sender) *Dispatcher {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewDispatcher(sender, logger, time.Second)
}

func TestDispatcher_LowBalance(t *testing.T) {
	sender := new(MockSender)
	sender.On("Send", mock.Anything, mock.MatchedBy(func(msg Message) bool {
		return msg.To == "ana@example.com" &&
			msg.Subject == "Low balance alert" &&
			msg.HTML != "" && msg.Text != ""
	})).Return(nil).Once()

	d := newTestDispatcher(sender)
	d.LowBalance("ana@example.com", "Ana", decimal.NewFromInt(1200), decimal.NewFromInt(50000))
	d.Wait()

	sender.AssertExpectations(t)
}

func TestDispatcher_RenderedBodies(t *testing.T) {
	var got Message
	sender := new(MockSender)
	sender.On("Send", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		got = args.Get(1).(Message)
	}).Return(nil).Once()

	d := newTestDispatcher(sender)
	d.GroupInvitation("bo@example.com", "Ana", "Trip <2027>", "AB12CD34")
	d.Wait()

	assert.Contains(t, got.Text, "Trip <2027>")
	assert.Contains(t, got.HTML, "Trip &lt;2027&gt;")
	assert.Contains(t, got.HTML, "AB12CD34")
}

func TestDispatcher_SendFailureIsSwallowed(t *testing.T) {
	sender := new(MockSender)
	sender.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp down")).Once()

	d := newTestDispatcher(sender)
	assert.NotPanics(t, func() {
		d.Welcome("ana@example.com", "Ana")
		d.Wait()
	})

	sender.AssertExpectations(t)
}

func TestDispatcher_GoalCompleted(t *testing.T) {
	sender := new(MockSender)
	sender.On("Send", mock.Anything, mock.MatchedBy(func(msg Message) bool {
		return msg.Subject == "Goal reached: Laptop"
	})).Return(nil).Once()

	d := newTestDispatcher(sender)
	d.GoalCompleted("ana@example.com", "Ana", "Laptop", decimal.NewFromInt(4000))
	d.Wait()

	sender.AssertExpectations(t)
}
