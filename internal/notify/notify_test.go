package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"reportingest/internal/domain"
	"reportingest/internal/notify"
	"reportingest/internal/port"
	"reportingest/mocks"
)

func TestMessage(t *testing.T) {
	saved := notify.Message(port.Outcome{
		Status:      port.OutcomeSaved,
		ImagePath:   "uploads/a.jpg",
		ReportTypes: []domain.ReportType{domain.ReportTypeChiusuraPOS, domain.ReportTypeDailySpielo},
	})
	assert.Equal(t, "Report salvato correttamente (chiusura_pos, daily_report_spielo): uploads/a.jpg", saved)

	noCalls := notify.Message(port.Outcome{Status: port.OutcomeNoToolCalls, ImagePath: "uploads/b.jpg"})
	assert.Contains(t, noCalls, "Nessun report riconosciuto")

	failed := notify.Message(port.Outcome{Status: port.OutcomeAnalyzeFailed, ImagePath: "uploads/c.jpg", Err: errors.New("hub API returned 500")})
	assert.Contains(t, failed, "Errore durante l'analisi")
	assert.Contains(t, failed, "hub API returned 500")

	persist := notify.Message(port.Outcome{Status: port.OutcomePersistFailed, ImagePath: "uploads/d.jpg"})
	assert.Contains(t, persist, "errore sconosciuto")
}

func TestHubNotifier_SendsMessageWithConversation(t *testing.T) {
	sender := new(mocks.MockStatusSender)
	n := notify.NewHubNotifier(sender)
	outcome := port.Outcome{Status: port.OutcomeNoToolCalls, ImagePath: "uploads/a.jpg", ConversationID: "conv-9"}

	sender.On("SendStatus", mock.Anything, notify.Message(outcome), "conv-9").Return(nil)

	require.NoError(t, n.Notify(context.Background(), outcome))
	sender.AssertExpectations(t)
}

func TestHubNotifier_WrapsError(t *testing.T) {
	sender := new(mocks.MockStatusSender)
	n := notify.NewHubNotifier(sender)
	sender.On("SendStatus", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("timeout"))

	err := n.Notify(context.Background(), port.Outcome{Status: port.OutcomeSaved})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sending hub status")
}

func TestEmailNotifier_OnlyFailures(t *testing.T) {
	sender := new(mocks.MockEmailSender)
	n := notify.NewEmailNotifier(sender)

	require.NoError(t, n.Notify(context.Background(), port.Outcome{Status: port.OutcomeSaved}))
	require.NoError(t, n.Notify(context.Background(), port.Outcome{Status: port.OutcomeNoToolCalls}))
	sender.AssertNotCalled(t, "SendAlert", mock.Anything, mock.Anything, mock.Anything)

	sender.On("SendAlert", mock.Anything, "[report-ingest] analyze_failed: uploads/x.jpg", mock.Anything).Return(nil).Once()
	require.NoError(t, n.Notify(context.Background(), port.Outcome{
		Status:    port.OutcomeAnalyzeFailed,
		ImagePath: "uploads/x.jpg",
		Err:       errors.New("boom"),
	}))
	sender.AssertExpectations(t)
}

func TestMulti_CallsAllAndJoinsErrors(t *testing.T) {
	first := new(mocks.MockNotifier)
	second := new(mocks.MockNotifier)
	third := new(mocks.MockNotifier)
	errFirst := errors.New("first failed")
	errThird := errors.New("third failed")

	first.On("Notify", mock.Anything, mock.Anything).Return(errFirst)
	second.On("Notify", mock.Anything, mock.Anything).Return(nil)
	third.On("Notify", mock.Anything, mock.Anything).Return(errThird)

	err := notify.Multi{first, second, third}.Notify(context.Background(), port.Outcome{Status: port.OutcomeSaved})

	assert.ErrorIs(t, err, errFirst)
	assert.ErrorIs(t, err, errThird)
	second.AssertExpectations(t)
}

func TestMulti_Empty(t *testing.T) {
	assert.NoError(t, notify.Multi{}.Notify(context.Background(), port.Outcome{}))
}
