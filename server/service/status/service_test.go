package status

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getwhereabouts/whereabouts/plugin/naturaldate"
	"github.com/getwhereabouts/whereabouts/plugin/slack"
	"github.com/getwhereabouts/whereabouts/store"
)

// fakeStore is an in-memory RecordStore. It intentionally does not dedupe
// rows so tests can hand the aggregator duplicate (user, date) records.
type fakeStore struct {
	mu      sync.Mutex
	records []*store.StatusRecord

	failAfter int // fail the n-th upsert (1-based); 0 disables
	upserts   int
}

func (f *fakeStore) UpsertStatusRecord(_ context.Context, upsert *store.UpsertStatusRecord) (*store.StatusRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	if f.failAfter > 0 && f.upserts >= f.failAfter {
		return nil, errors.New("store unavailable")
	}
	record := &store.StatusRecord{
		UserID:   upsert.UserID,
		UserName: upsert.UserName,
		Date:     upsert.Date,
		Status:   upsert.Status,
	}
	f.records = append(f.records, record)
	return record, nil
}

func (f *fakeStore) ListStatusRecordsByDate(_ context.Context, date string) ([]*store.StatusRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*store.StatusRecord
	for _, r := range f.records {
		if r.Date == date {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) ListStatusRecordsByUserSince(_ context.Context, userID, sinceDate string) ([]*store.StatusRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*store.StatusRecord
	for _, r := range f.records {
		if r.UserID == userID && r.Date >= sinceDate {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) ScanStatusRecords(_ context.Context) ([]*store.StatusRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*store.StatusRecord{}, f.records...), nil
}

// captureResponder records posted messages for assertions.
type captureResponder struct {
	mu       sync.Mutex
	urls     []string
	messages chan *slack.Message
}

func newCaptureResponder() *captureResponder {
	return &captureResponder{messages: make(chan *slack.Message, 8)}
}

func (r *captureResponder) Post(_ context.Context, url string, message *slack.Message) error {
	r.mu.Lock()
	r.urls = append(r.urls, url)
	r.mu.Unlock()
	r.messages <- message
	return nil
}

func (r *captureResponder) wait(t *testing.T) *slack.Message {
	t.Helper()
	select {
	case message := <-r.messages:
		return message
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for deferred response")
		return nil
	}
}

// Anchor: Monday, January 1st 2024 in the organizational timezone.
func testService(t *testing.T, fs *fakeStore) (*Service, *captureResponder) {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	anchor := time.Date(2024, 1, 1, 10, 30, 0, 0, loc)
	parser := naturaldate.NewParser(loc).WithNow(func() time.Time { return anchor })

	writer := NewWriter(fs, parser, 8)
	ctx, cancel := context.WithCancel(context.Background())
	go writer.Run(ctx)
	t.Cleanup(cancel)

	responder := newCaptureResponder()
	return NewService(fs, parser, writer, responder, "1.1.0"), responder
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input string
		want  ParsedCommand
	}{
		{"wfh tomorrow", ParsedCommand{"wfh", "tomorrow"}},
		{"WFH Monday and Friday", ParsedCommand{"wfh", "Monday and Friday"}},
		{"  ooo  ", ParsedCommand{"ooo", ""}},
		{"Today", ParsedCommand{"today", ""}},
		{"", ParsedCommand{}},
		{"   ", ParsedCommand{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCommand(tt.input))
		})
	}
}

func TestHandle_Help(t *testing.T) {
	svc, _ := testService(t, &fakeStore{})
	ctx := context.Background()

	for _, text := range []string{"help", ""} {
		message := svc.Handle(ctx, &Command{Text: text, UserID: "U1", UserName: "Ann"})
		assert.Equal(t, helpText, message.Text)
		require.Len(t, message.Attachments, 1)
	}
}

func TestHandle_UnknownSubcommand(t *testing.T) {
	svc, _ := testService(t, &fakeStore{})

	message := svc.Handle(context.Background(), &Command{Text: "dance", UserID: "U1", UserName: "Ann"})
	assert.Equal(t, "Unknown subcommand!", message.Text)
	require.Len(t, message.Attachments, 1)
}

func TestHandle_Version(t *testing.T) {
	svc, _ := testService(t, &fakeStore{})

	message := svc.Handle(context.Background(), &Command{Text: "version", UserID: "U1", UserName: "Ann"})
	assert.Equal(t, "1.1.0", message.Text)
}

func TestHandle_Today(t *testing.T) {
	fs := &fakeStore{records: []*store.StatusRecord{
		record("U2", "Bob", "2024-01-01", "wfh"),
		record("U1", "Ann", "2024-01-01", "ooo"),
		record("U3", "Cid", "2024-01-01", "in"),
	}}
	svc, _ := testService(t, fs)

	message := svc.Handle(context.Background(), &Command{Text: "today", UserID: "U1", UserName: "Ann"})
	assert.Equal(t, slack.ResponseTypeInChannel, message.ResponseType)
	assert.Equal(t, todayHeading, message.Text)
	require.Len(t, message.Attachments, 1)
	assert.Equal(t, "Ann - OOO\nBob - WFH", message.Attachments[0].Text)
}

func TestHandle_TodayEmpty(t *testing.T) {
	svc, _ := testService(t, &fakeStore{})

	message := svc.Handle(context.Background(), &Command{Text: "today", UserID: "U1", UserName: "Ann"})
	require.Len(t, message.Attachments, 1)
	assert.Equal(t, everyoneInToday, message.Attachments[0].Text)
}

func TestHandle_Schedule(t *testing.T) {
	fs := &fakeStore{records: []*store.StatusRecord{
		record("U1", "Ann", "2024-01-05", "ooo"),
		record("U1", "Ann", "2023-12-20", "ooo"), // past, not upcoming
		record("U2", "Bob", "2024-03-20", "wfh"), // beyond a month out
	}}
	svc, _ := testService(t, fs)

	message := svc.Handle(context.Background(), &Command{Text: "schedule", UserID: "U1", UserName: "Ann"})
	assert.Equal(t, scheduleHeading, message.Text)
	require.Len(t, message.Attachments, 1)
	assert.Equal(t, "2024-01-05 - Ann - OOO", message.Attachments[0].Text)
}

func TestHandle_History(t *testing.T) {
	fs := &fakeStore{records: []*store.StatusRecord{
		record("U1", "Ann", "2023-12-15", "wfh"),
		record("U1", "Ann", "2024-01-01", "ooo"),
		record("U1", "Ann", "2024-01-10", "ooo"), // future, excluded
		record("U2", "Bob", "2023-12-20", "ooo"),
	}}
	svc, _ := testService(t, fs)

	message := svc.Handle(context.Background(), &Command{Text: "history", UserID: "U1", UserName: "Ann"})
	assert.Equal(t, historyHeading, message.Text)
	// History stays in the default (ephemeral) display mode.
	assert.Empty(t, message.ResponseType)
	require.Len(t, message.Attachments, 1)
	assert.Equal(t, "2023-12-15 - WFH\n2024-01-01 - OOO", message.Attachments[0].Text)
}

func TestHandle_WriteAcknowledgesAndDefers(t *testing.T) {
	fs := &fakeStore{}
	svc, responder := testService(t, fs)

	ack := svc.Handle(context.Background(), &Command{
		Text:        "wfh tomorrow",
		UserID:      "U1",
		UserName:    "Ann",
		ResponseURL: "https://hooks.example.test/respond",
	})
	assert.Equal(t, slack.ResponseTypeEphemeral, ack.ResponseType)
	assert.Equal(t, "Logging your status...", ack.Text)

	outcome := responder.wait(t)
	assert.Equal(t, slack.ResponseTypeInChannel, outcome.ResponseType)
	assert.Equal(t, "Ann will be WFH on 2024-01-02.", outcome.Text)

	responder.mu.Lock()
	defer responder.mu.Unlock()
	require.Equal(t, []string{"https://hooks.example.test/respond"}, responder.urls)
}

func TestHandle_WriteDefaultsToToday(t *testing.T) {
	fs := &fakeStore{}
	svc, responder := testService(t, fs)

	svc.Handle(context.Background(), &Command{Text: "ooo", UserID: "U1", UserName: "Ann"})
	outcome := responder.wait(t)
	assert.Equal(t, "Ann is OOO today.", outcome.Text)

	fs.mu.Lock()
	defer fs.mu.Unlock()
	require.Len(t, fs.records, 1)
	assert.Equal(t, "2024-01-01", fs.records[0].Date)
	assert.Equal(t, "ooo", fs.records[0].Status)
}

func TestHandle_InStatusWrites(t *testing.T) {
	// Every recognized status keyword, including "in", goes through the
	// write path.
	fs := &fakeStore{}
	svc, responder := testService(t, fs)

	svc.Handle(context.Background(), &Command{Text: "in tomorrow", UserID: "U1", UserName: "Ann"})
	outcome := responder.wait(t)
	assert.Equal(t, "Ann will be IN on 2024-01-02.", outcome.Text)

	fs.mu.Lock()
	defer fs.mu.Unlock()
	require.Len(t, fs.records, 1)
	assert.Equal(t, store.StatusInOffice, fs.records[0].Status)
}

func TestHandle_WriteInvalidDate(t *testing.T) {
	svc, responder := testService(t, &fakeStore{})

	svc.Handle(context.Background(), &Command{Text: "wfh banana", UserID: "U1", UserName: "Ann"})
	outcome := responder.wait(t)
	assert.Equal(t, slack.ResponseTypeEphemeral, outcome.ResponseType)
	require.Len(t, outcome.Attachments, 1)
	assert.Contains(t, outcome.Attachments[0].Text, "banana")
}
