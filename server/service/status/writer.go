package status

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/getwhereabouts/whereabouts/plugin/naturaldate"
	"github.com/getwhereabouts/whereabouts/plugin/slack"
	"github.com/getwhereabouts/whereabouts/store"
)

// WriteRequest is one deferred write subcommand: expand the options text and
// upsert one record per resolved date.
type WriteRequest struct {
	UserID   string
	UserName string
	Status   string
	Options  string
}

// RespondFunc delivers the outcome of a deferred write back to the caller.
type RespondFunc func(ctx context.Context, message *slack.Message) error

// WriteJob pairs a request with its completion callback. Failures reach the
// callback as ephemeral messages; they are never swallowed.
type WriteJob struct {
	Request WriteRequest
	Respond RespondFunc
}

// Writer applies write subcommands in the background so the triggering
// request can acknowledge immediately. Per-date upserts are independent: a
// failure partway through leaves earlier dates committed and reports the
// failure, there is no batch rollback.
type Writer struct {
	store  RecordStore
	parser *naturaldate.Parser
	queue  chan WriteJob
}

// NewWriter creates a writer with a bounded queue.
func NewWriter(recordStore RecordStore, parser *naturaldate.Parser, queueSize int) *Writer {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Writer{
		store:  recordStore,
		parser: parser,
		queue:  make(chan WriteJob, queueSize),
	}
}

// Submit enqueues a job without blocking. A full queue is a transient
// failure surfaced to the caller.
func (w *Writer) Submit(job WriteJob) error {
	select {
	case w.queue <- job:
		return nil
	default:
		return errors.New("write queue is full")
	}
}

// Run drains the queue until ctx is done.
func (w *Writer) Run(ctx context.Context) {
	for {
		select {
		case job := <-w.queue:
			w.process(ctx, job)
		case <-ctx.Done():
			slog.Info("status writer stopped")
			return
		}
	}
}

func (w *Writer) process(ctx context.Context, job WriteJob) {
	message := w.execute(ctx, job.Request)
	if job.Respond == nil {
		return
	}
	if err := job.Respond(ctx, message); err != nil {
		slog.Error("failed to deliver write outcome",
			slog.String("user_id", job.Request.UserID),
			slog.String("error", err.Error()))
	}
}

// execute performs the write and phrases the outcome. It always produces a
// message; errors become ephemeral replies.
func (w *Writer) execute(ctx context.Context, req WriteRequest) *slack.Message {
	dates, kind, err := w.parser.ExpandDates(req.Options)
	if err != nil {
		if naturaldate.IsUserError(err) {
			return slack.Ephemeral("Sorry, I couldn't make sense of that date.").WithAttachment(err.Error())
		}
		return slack.Ephemeral("Oops, something went wrong!").WithAttachment(err.Error())
	}

	isoDates := make([]string, 0, len(dates))
	for _, date := range dates {
		isoDates = append(isoDates, naturaldate.ISO(date))
	}

	for _, date := range isoDates {
		if _, err := w.store.UpsertStatusRecord(ctx, &store.UpsertStatusRecord{
			UserID:   req.UserID,
			UserName: req.UserName,
			Date:     date,
			Status:   req.Status,
		}); err != nil {
			slog.Error("failed to record status",
				slog.String("user_id", req.UserID),
				slog.String("date", date),
				slog.String("error", err.Error()))
			return slack.Ephemeral("Oops, something went wrong!").WithAttachment(err.Error())
		}
	}

	today := naturaldate.ISO(w.parser.Today())
	return slack.InChannel(confirmWrite(req.UserName, req.Status, isoDates, kind, today))
}
