package status

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getwhereabouts/whereabouts/plugin/naturaldate"
	"github.com/getwhereabouts/whereabouts/plugin/slack"
)

func testWriter(t *testing.T, fs *fakeStore) *Writer {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	anchor := time.Date(2024, 1, 1, 10, 30, 0, 0, loc)
	parser := naturaldate.NewParser(loc).WithNow(func() time.Time { return anchor })
	return NewWriter(fs, parser, 8)
}

func TestWriterExecute_Phrasing(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		options  string
		wantText string
	}{
		{"today", "wfh", "", "Ann is WFH today."},
		{"future", "ooo", "tomorrow", "Ann will be OOO on 2024-01-02."},
		{"past", "wfh", "yesterday", "Ann was WFH on 2023-12-31."},
		{"conjunction", "wfh", "tuesday and friday", "Ann is WFH on 2024-01-02 and 2024-01-05"},
		{"range", "ooo", "monday through wednesday", "Ann is OOO on 2024-01-01 through 2024-01-03"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := &fakeStore{}
			w := testWriter(t, fs)

			message := w.execute(context.Background(), WriteRequest{
				UserID: "U1", UserName: "Ann", Status: tt.status, Options: tt.options,
			})
			assert.Equal(t, slack.ResponseTypeInChannel, message.ResponseType)
			assert.Equal(t, tt.wantText, message.Text)
		})
	}
}

func TestWriterExecute_OneUpsertPerDate(t *testing.T) {
	fs := &fakeStore{}
	w := testWriter(t, fs)

	w.execute(context.Background(), WriteRequest{
		UserID: "U1", UserName: "Ann", Status: "wfh", Options: "monday through friday",
	})
	require.Len(t, fs.records, 5)
	assert.Equal(t, "2024-01-01", fs.records[0].Date)
	assert.Equal(t, "2024-01-05", fs.records[4].Date)
}

func TestWriterExecute_DuplicateConjunctionDatesBothWritten(t *testing.T) {
	fs := &fakeStore{}
	w := testWriter(t, fs)

	message := w.execute(context.Background(), WriteRequest{
		UserID: "U1", UserName: "Ann", Status: "wfh", Options: "monday and monday",
	})
	assert.Equal(t, "Ann is WFH on 2024-01-01 and 2024-01-01", message.Text)
	// Each occurrence is one calendar write; the keyed store collapses them.
	assert.Equal(t, 2, fs.upserts)
}

func TestWriterExecute_InvalidDate(t *testing.T) {
	fs := &fakeStore{}
	w := testWriter(t, fs)

	message := w.execute(context.Background(), WriteRequest{
		UserID: "U1", UserName: "Ann", Status: "wfh", Options: "someday soon",
	})
	assert.Equal(t, slack.ResponseTypeEphemeral, message.ResponseType)
	require.Len(t, message.Attachments, 1)
	assert.Contains(t, message.Attachments[0].Text, "someday soon")
	assert.Zero(t, fs.upserts)
}

func TestWriterExecute_InvalidRange(t *testing.T) {
	fs := &fakeStore{}
	w := testWriter(t, fs)

	message := w.execute(context.Background(), WriteRequest{
		UserID: "U1", UserName: "Ann", Status: "ooo", Options: "friday through monday",
	})
	assert.Equal(t, slack.ResponseTypeEphemeral, message.ResponseType)
	require.Len(t, message.Attachments, 1)
	assert.Contains(t, message.Attachments[0].Text, "friday through monday")
	assert.Zero(t, fs.upserts)
}

func TestWriterExecute_PartialFailureReported(t *testing.T) {
	// The second upsert fails: the first date stays committed, the failure
	// is surfaced, nothing is rolled back.
	fs := &fakeStore{failAfter: 2}
	w := testWriter(t, fs)

	message := w.execute(context.Background(), WriteRequest{
		UserID: "U1", UserName: "Ann", Status: "wfh", Options: "monday through friday",
	})
	assert.Equal(t, slack.ResponseTypeEphemeral, message.ResponseType)
	require.Len(t, message.Attachments, 1)
	assert.Contains(t, message.Attachments[0].Text, "store unavailable")
	require.Len(t, fs.records, 1)
	assert.Equal(t, "2024-01-01", fs.records[0].Date)
}

func TestWriterSubmit_QueueFull(t *testing.T) {
	fs := &fakeStore{}
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	parser := naturaldate.NewParser(loc)
	w := NewWriter(fs, parser, 1) // not running, so the queue never drains

	require.NoError(t, w.Submit(WriteJob{}))
	err = w.Submit(WriteJob{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue is full")
}

func TestWriterRun_DeliversCallback(t *testing.T) {
	fs := &fakeStore{}
	w := testWriter(t, fs)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	got := make(chan *slack.Message, 1)
	require.NoError(t, w.Submit(WriteJob{
		Request: WriteRequest{UserID: "U1", UserName: "Ann", Status: "wfh", Options: "today"},
		Respond: func(_ context.Context, message *slack.Message) error {
			got <- message
			return nil
		},
	}))

	select {
	case message := <-got:
		assert.Equal(t, "Ann is WFH today.", message.Text)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for write callback")
	}
}
