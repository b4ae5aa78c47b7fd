package trigger_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"reportingest/internal/domain"
	"reportingest/internal/port"
	"reportingest/internal/service"
	"reportingest/internal/trigger"
	"reportingest/mocks"
)

func record(event, bucket, key string) events.S3EventRecord {
	var rec events.S3EventRecord
	rec.EventName = event
	rec.S3.Bucket.Name = bucket
	rec.S3.Object.Key = key
	return rec
}

func newHandler() (*trigger.S3Handler, *mocks.MockObjectStorage, *mocks.MockIngestService) {
	storage := new(mocks.MockObjectStorage)
	ingest := new(mocks.MockIngestService)
	return trigger.NewS3Handler(storage, ingest, "uploads/", zap.NewNop()), storage, ingest
}

func TestS3Handler_ProcessesImageUpload(t *testing.T) {
	h, storage, ingest := newHandler()

	storage.On("Head", mock.Anything, "reports", "uploads/chiusura 1.jpg").
		Return(&port.ObjectInfo{ContentType: "image/jpeg", Metadata: map[string]string{"shop": "42"}}, nil)
	ingest.On("Process", mock.Anything, domain.UploadEvent{
		Bucket:      "reports",
		Key:         "uploads/chiusura 1.jpg",
		ContentType: "image/jpeg",
		Metadata:    map[string]string{"shop": "42"},
	}).Return(&service.IngestResult{}, nil)

	err := h.Handle(context.Background(), events.S3Event{Records: []events.S3EventRecord{
		record("ObjectCreated:Put", "reports", "uploads/chiusura+1.jpg"),
	}})

	require.NoError(t, err)
	storage.AssertExpectations(t)
	ingest.AssertExpectations(t)
}

func TestS3Handler_SkipsOutsidePrefixWithoutHead(t *testing.T) {
	h, storage, ingest := newHandler()

	err := h.HandleRecord(context.Background(), record("ObjectCreated:Put", "reports", "thumbnails/a.jpg"))

	require.NoError(t, err)
	storage.AssertNotCalled(t, "Head", mock.Anything, mock.Anything, mock.Anything)
	ingest.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
}

func TestS3Handler_SkipsNonCreateEvents(t *testing.T) {
	h, storage, _ := newHandler()

	err := h.HandleRecord(context.Background(), record("ObjectRemoved:Delete", "reports", "uploads/a.jpg"))

	require.NoError(t, err)
	storage.AssertNotCalled(t, "Head", mock.Anything, mock.Anything, mock.Anything)
}

func TestS3Handler_VanishedObjectIsIgnored(t *testing.T) {
	h, storage, ingest := newHandler()
	storage.On("Head", mock.Anything, "reports", "uploads/a.jpg").Return(nil, domain.ErrObjectNotFound)

	err := h.HandleRecord(context.Background(), record("s3:ObjectCreated:Put", "reports", "uploads/a.jpg"))

	require.NoError(t, err)
	ingest.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
}

func TestS3Handler_JoinsRecordErrors(t *testing.T) {
	h, storage, ingest := newHandler()
	errA := errors.New("hub down")

	storage.On("Head", mock.Anything, "reports", mock.Anything).
		Return(&port.ObjectInfo{ContentType: "image/png"}, nil)
	ingest.On("Process", mock.Anything, mock.MatchedBy(func(e domain.UploadEvent) bool { return e.Key == "uploads/a.png" })).
		Return(nil, errA)
	ingest.On("Process", mock.Anything, mock.MatchedBy(func(e domain.UploadEvent) bool { return e.Key == "uploads/b.png" })).
		Return(&service.IngestResult{}, nil)

	err := h.Handle(context.Background(), events.S3Event{Records: []events.S3EventRecord{
		record("ObjectCreated:Put", "reports", "uploads/a.png"),
		record("ObjectCreated:Put", "reports", "uploads/b.png"),
	}})

	assert.ErrorIs(t, err, errA)
	ingest.AssertNumberOfCalls(t, "Process", 2)
}

func TestObjectKey_FromNotificationJSON(t *testing.T) {
	payload := `{"Records":[{"eventName":"s3:ObjectCreated:Put","s3":{"bucket":{"name":"reports"},"object":{"key":"uploads/report%282%29+finale.jpg","size":10}}}]}`
	var evt events.S3Event
	require.NoError(t, json.Unmarshal([]byte(payload), &evt))
	require.Len(t, evt.Records, 1)

	key, err := trigger.ObjectKey(evt.Records[0])

	require.NoError(t, err)
	assert.Equal(t, "uploads/report(2) finale.jpg", key)
}

func TestObjectKey_InvalidEscape(t *testing.T) {
	_, err := trigger.ObjectKey(record("", "b", "uploads/%zz.jpg"))
	assert.Error(t, err)
}
