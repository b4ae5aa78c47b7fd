package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"reportingest/internal/analyzer"
	"reportingest/internal/domain"
	"reportingest/internal/port"
	"reportingest/internal/service"
	"reportingest/mocks"
)

const testImageURL = "https://img.example.com/reports/uploads/r.jpg"

type stubResolver struct {
	url string
	err error
}

func (s stubResolver) Resolve(_ context.Context, _, _ string) (string, error) {
	return s.url, s.err
}

type ingestFixture struct {
	analyzer *mocks.MockAnalyzer
	reports  *mocks.MockReportRepo
	scans    *mocks.MockScanRepo
	notifier *mocks.MockNotifier
	svc      service.IngestService
}

func newIngestFixture() *ingestFixture {
	f := &ingestFixture{
		analyzer: new(mocks.MockAnalyzer),
		reports:  new(mocks.MockReportRepo),
		scans:    new(mocks.MockScanRepo),
		notifier: new(mocks.MockNotifier),
	}
	f.svc = service.NewIngestService(f.analyzer, f.reports, f.scans, f.notifier,
		stubResolver{url: testImageURL}, "uploads/", zap.NewNop())
	return f
}

func imageEvent() domain.UploadEvent {
	return domain.UploadEvent{Bucket: "reports", Key: "uploads/r.jpg", ContentType: "image/jpeg"}
}

func analyzed(raw string) *port.AnalyzeOutput {
	return &port.AnalyzeOutput{Raw: json.RawMessage(raw), Provider: "hub"}
}

func TestIngestService_IgnoresIneligibleUploads(t *testing.T) {
	cases := []domain.UploadEvent{
		{Bucket: "reports", Key: "other/r.jpg", ContentType: "image/jpeg"},
		{Bucket: "reports", Key: "uploads/r.pdf", ContentType: "application/pdf"},
		{Bucket: "reports", Key: "uploads/r.jpg", ContentType: ""},
	}
	for _, ev := range cases {
		f := newIngestFixture()

		result, err := f.svc.Process(context.Background(), ev)

		require.NoError(t, err)
		assert.True(t, result.Skipped)
		f.analyzer.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
		f.reports.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.scans.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
	}
}

func TestIngestService_SavesReportAndNotifies(t *testing.T) {
	f := newIngestFixture()
	raw := `{"conversationID":"conv-1","functionCall":{"name":"chiusura_pos","callId":"call-1","arguments":{"data":"2024-01-01","totale":100,"nomeAzienda":"Acme"}}}`

	f.analyzer.On("Analyze", mock.Anything, port.AnalyzeInput{
		ImageURL:    testImageURL,
		ImagePath:   "uploads/r.jpg",
		ContentType: "image/jpeg",
	}).Return(analyzed(raw), nil)
	f.reports.On("Create", mock.Anything, mock.MatchedBy(func(doc *domain.ReportDocument) bool {
		fields, ok := doc.Fields.(*domain.ChiusuraPOSFields)
		return ok && doc.Type == domain.ReportTypeChiusuraPOS &&
			doc.ImagePath == "uploads/r.jpg" && doc.ImageURL == testImageURL &&
			fields.Totale == 100 && fields.Ora == nil &&
			doc.ConversationID != nil && *doc.ConversationID == "conv-1"
	})).Return(nil)
	f.notifier.On("Notify", mock.Anything, mock.MatchedBy(func(o port.Outcome) bool {
		return o.Status == port.OutcomeSaved && o.ConversationID == "conv-1" &&
			len(o.ReportTypes) == 1 && o.ReportTypes[0] == domain.ReportTypeChiusuraPOS
	})).Return(nil)

	result, err := f.svc.Process(context.Background(), imageEvent())

	require.NoError(t, err)
	require.Len(t, result.Reports, 1)
	assert.Nil(t, result.Scan)
	f.scans.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.analyzer.AssertExpectations(t)
	f.reports.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestIngestService_OneReportPerToolCall(t *testing.T) {
	f := newIngestFixture()
	raw := `{"tool_calls":[
		{"function":{"name":"daily_report_spielo","arguments":"{\"totale\":5}"}},
		{"function":{"name":"report_novoline_range","arguments":{"vlt":[{"totalNetWin":50},{"totalNetWin":-10},{}]}}}
	]}`

	f.analyzer.On("Analyze", mock.Anything, mock.Anything).Return(analyzed(raw), nil)
	f.reports.On("Create", mock.Anything, mock.Anything).Return(nil).Twice()
	f.notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)

	result, err := f.svc.Process(context.Background(), imageEvent())

	require.NoError(t, err)
	require.Len(t, result.Reports, 2)
	assert.Equal(t, domain.ReportTypeDailySpielo, result.Reports[0].Type)
	novoline, ok := result.Reports[1].Fields.(*domain.NovolineRangeFields)
	require.True(t, ok)
	assert.Equal(t, float64(40), novoline.Totale)
	f.reports.AssertNumberOfCalls(t, "Create", 2)
}

func TestIngestService_NoToolCalls_SavesScan(t *testing.T) {
	f := newIngestFixture()
	raw := `{"reply":"Non riesco a leggere l'immagine"}`

	f.analyzer.On("Analyze", mock.Anything, mock.Anything).Return(analyzed(raw), nil)
	f.scans.On("Create", mock.Anything, mock.MatchedBy(func(s *domain.ScanDocument) bool {
		return s.Type == "unknown" && s.ImagePath == "uploads/r.jpg" && string(s.RawResponse) == raw
	})).Return(nil).Once()
	f.notifier.On("Notify", mock.Anything, mock.MatchedBy(func(o port.Outcome) bool {
		return o.Status == port.OutcomeNoToolCalls
	})).Return(nil)

	result, err := f.svc.Process(context.Background(), imageEvent())

	require.NoError(t, err)
	require.NotNil(t, result.Scan)
	assert.Empty(t, result.Reports)
	f.scans.AssertNumberOfCalls(t, "Create", 1)
	f.reports.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.notifier.AssertExpectations(t)
}

func TestIngestService_MalformedArguments_TreatedAsNoToolCall(t *testing.T) {
	f := newIngestFixture()
	raw := `{"choices":[{"message":{"tool_calls":[{"function":{"name":"chiusura_pos","arguments":"{not json"}}]}}]}`

	f.analyzer.On("Analyze", mock.Anything, mock.Anything).Return(analyzed(raw), nil)
	f.scans.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)

	result, err := f.svc.Process(context.Background(), imageEvent())

	require.NoError(t, err)
	assert.NotNil(t, result.Scan)
	f.reports.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestIngestService_AnalyzeFailure_NotifiesAndFails(t *testing.T) {
	f := newIngestFixture()
	apiErr := &analyzer.StatusError{Provider: "hub", StatusCode: 500, Body: "boom"}

	f.analyzer.On("Analyze", mock.Anything, mock.Anything).Return(nil, apiErr)
	f.notifier.On("Notify", mock.Anything, mock.MatchedBy(func(o port.Outcome) bool {
		return o.Status == port.OutcomeAnalyzeFailed && errors.Is(o.Err, apiErr)
	})).Return(nil)

	result, err := f.svc.Process(context.Background(), imageEvent())

	require.Error(t, err)
	assert.Nil(t, result)
	var statusErr *analyzer.StatusError
	assert.True(t, errors.As(err, &statusErr))
	f.notifier.AssertExpectations(t)
	f.reports.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.scans.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestIngestService_PersistFailure_NotifiesAndFails(t *testing.T) {
	f := newIngestFixture()
	dbErr := errors.New("connection refused")

	f.analyzer.On("Analyze", mock.Anything, mock.Anything).
		Return(analyzed(`{"functionCall":{"name":"chiusura_pos","arguments":{}}}`), nil)
	f.reports.On("Create", mock.Anything, mock.Anything).Return(dbErr)
	f.notifier.On("Notify", mock.Anything, mock.MatchedBy(func(o port.Outcome) bool {
		return o.Status == port.OutcomePersistFailed
	})).Return(nil)

	_, err := f.svc.Process(context.Background(), imageEvent())

	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
	f.notifier.AssertExpectations(t)
}

func TestIngestService_ScanPersistFailure_Fails(t *testing.T) {
	f := newIngestFixture()

	f.analyzer.On("Analyze", mock.Anything, mock.Anything).Return(analyzed(`{}`), nil)
	f.scans.On("Create", mock.Anything, mock.Anything).Return(errors.New("disk full"))
	f.notifier.On("Notify", mock.Anything, mock.MatchedBy(func(o port.Outcome) bool {
		return o.Status == port.OutcomePersistFailed
	})).Return(nil)

	_, err := f.svc.Process(context.Background(), imageEvent())

	assert.Error(t, err)
	f.notifier.AssertExpectations(t)
}

func TestIngestService_NotificationFailureIsSwallowed(t *testing.T) {
	f := newIngestFixture()

	f.analyzer.On("Analyze", mock.Anything, mock.Anything).
		Return(analyzed(`{"functionCall":{"name":"chiusura_pos","arguments":{}}}`), nil)
	f.reports.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.notifier.On("Notify", mock.Anything, mock.Anything).Return(errors.New("hub unreachable"))

	result, err := f.svc.Process(context.Background(), imageEvent())

	require.NoError(t, err)
	assert.Len(t, result.Reports, 1)
}

func TestIngestService_ImageURLFailure(t *testing.T) {
	an := new(mocks.MockAnalyzer)
	svc := service.NewIngestService(an, new(mocks.MockReportRepo), new(mocks.MockScanRepo), nil,
		stubResolver{err: errors.New("presign failed")}, "uploads/", zap.NewNop())

	_, err := svc.Process(context.Background(), imageEvent())

	assert.Error(t, err)
	an.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
}

func TestIngestService_NilNotifier(t *testing.T) {
	an := new(mocks.MockAnalyzer)
	reports := new(mocks.MockReportRepo)
	svc := service.NewIngestService(an, reports, new(mocks.MockScanRepo), nil,
		stubResolver{url: testImageURL}, "uploads/", zap.NewNop())

	an.On("Analyze", mock.Anything, mock.Anything).
		Return(analyzed(`{"function_call":{"name":"altro","arguments":"{\"k\":[1,2]}"}}`), nil)
	reports.On("Create", mock.Anything, mock.Anything).Return(nil)

	result, err := svc.Process(context.Background(), imageEvent())

	require.NoError(t, err)
	require.Len(t, result.Reports, 1)
	fields, ok := result.Reports[0].Fields.(*domain.UnknownFields)
	require.True(t, ok)
	assert.JSONEq(t, `{"k":[1,2]}`, string(fields.RawArgs))
}
