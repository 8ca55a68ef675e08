// Package status implements the whereabouts command surface: write
// subcommands that announce a work location for one or more dates, and read
// subcommands that aggregate stored announcements into listings.
package status

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/getwhereabouts/whereabouts/plugin/naturaldate"
	"github.com/getwhereabouts/whereabouts/plugin/slack"
	"github.com/getwhereabouts/whereabouts/store"
)

const helpText = "Use this command to set or check your status."

const helpAttachmentText = "Use `/iam [subcommand]` with one of the following subcommands:\n" +
	"\t-`wfh` to set a working from home status or `ooo` to set an out of office status,\n" +
	"\t followed by a time (defaults to today).\n" +
	"\t\t Multiple dates can be given using 'and' or a range using 'through',\n" +
	"\t\t e.g. '2021-10-25 and 2021-10-26' or '2021-10-25 through 2021-10-29'.\n" +
	"\t\t Dates can be provided in a variety of natural formats,\n" +
	"\t\t e.g. tomorrow, wednesday, 2019-03-12, etc.\n" +
	"\t-`in` to set your status to in office (to override an earlier OOO or WFH).\n" +
	"\t-`history` to check your recent history,\n" +
	"\t-`today` to see everyone's status for the current day,\n" +
	"\t-`schedule` to check scheduled OOO or WFH statuses.\n" +
	"\t e.g. `/iam wfh tomorrow and friday`, `/iam ooo 4/13/2019`, or `/iam schedule`\n" +
	"\t-`version` to check the version of the bot,\n" +
	"\t-`help` to get this help message"

const (
	todayHeading    = "Today's WFH/OOO statuses:"
	scheduleHeading = "Upcoming WFH/OOO statuses:"
	historyHeading  = "My WFH/OOO status from the past month:"

	everyoneInToday    = "Everyone is planning to be in office today."
	everyoneInUpcoming = "No WFH/OOO statuses scheduled - everyone is planning to be in office."
)

// Command is one slash-command invocation as delivered by the transport.
type Command struct {
	Text        string
	UserID      string
	UserName    string
	ResponseURL string
}

// ParsedCommand is the subcommand/options split of the raw command text.
type ParsedCommand struct {
	Subcommand string
	Options    string
}

// ParseCommand splits the raw text into a lowercased subcommand and the
// remaining options.
func ParseCommand(text string) ParsedCommand {
	trimmed := strings.TrimSpace(text)
	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return ParsedCommand{}
	}
	return ParsedCommand{
		Subcommand: strings.ToLower(fields[0]),
		Options:    strings.TrimSpace(strings.TrimPrefix(trimmed, fields[0])),
	}
}

// RecordStore is the slice of the store the service needs.
type RecordStore interface {
	UpsertStatusRecord(ctx context.Context, upsert *store.UpsertStatusRecord) (*store.StatusRecord, error)
	ListStatusRecordsByDate(ctx context.Context, date string) ([]*store.StatusRecord, error)
	ListStatusRecordsByUserSince(ctx context.Context, userID, sinceDate string) ([]*store.StatusRecord, error)
	ScanStatusRecords(ctx context.Context) ([]*store.StatusRecord, error)
}

// Responder posts a message to a caller-supplied address. *slack.Client
// satisfies it.
type Responder interface {
	Post(ctx context.Context, url string, message *slack.Message) error
}

// Service orchestrates command handling.
type Service struct {
	store     RecordStore
	parser    *naturaldate.Parser
	writer    *Writer
	responder Responder
	version   string
}

// NewService wires the command handler.
func NewService(recordStore RecordStore, parser *naturaldate.Parser, writer *Writer, responder Responder, version string) *Service {
	return &Service{
		store:     recordStore,
		parser:    parser,
		writer:    writer,
		responder: responder,
		version:   version,
	}
}

// Handle processes one command invocation. It never fails the request: every
// outcome, including bad input and storage trouble, is a shaped response.
func (s *Service) Handle(ctx context.Context, cmd *Command) *slack.Message {
	parsed := ParseCommand(cmd.Text)

	if slices.Contains(store.WriteStatuses, parsed.Subcommand) {
		return s.handleWrite(cmd, parsed)
	}

	switch parsed.Subcommand {
	case "today":
		return s.handleToday(ctx)
	case "schedule":
		return s.handleSchedule(ctx)
	case "history":
		return s.handleHistory(ctx, cmd.UserID)
	case "version":
		return &slack.Message{Text: s.version}
	case "help", "":
		return helpMessage()
	default:
		return (&slack.Message{Text: "Unknown subcommand!"}).WithAttachment(helpAttachmentText)
	}
}

func helpMessage() *slack.Message {
	return (&slack.Message{Text: helpText}).WithAttachment(helpAttachmentText)
}

// handleWrite defers the actual writes to the background writer and
// acknowledges immediately; the outcome reaches the channel through the
// command's response_url.
func (s *Service) handleWrite(cmd *Command, parsed ParsedCommand) *slack.Message {
	responseURL := cmd.ResponseURL
	job := WriteJob{
		Request: WriteRequest{
			UserID:   cmd.UserID,
			UserName: cmd.UserName,
			Status:   parsed.Subcommand,
			Options:  parsed.Options,
		},
		Respond: func(ctx context.Context, message *slack.Message) error {
			return s.responder.Post(ctx, responseURL, message)
		},
	}
	if err := s.writer.Submit(job); err != nil {
		return slack.Ephemeral("Oops, something went wrong!").WithAttachment(err.Error())
	}
	return slack.Ephemeral("Logging your status...")
}

func (s *Service) handleToday(ctx context.Context) *slack.Message {
	listing, err := s.TodayListing(ctx)
	if err != nil {
		return slack.Ephemeral("Oops! Something went wrong!").WithAttachment(err.Error())
	}
	if listing == "" {
		listing = everyoneInToday
	}
	return slack.InChannel(todayHeading).WithAttachment(listing)
}

func (s *Service) handleSchedule(ctx context.Context) *slack.Message {
	listing, err := s.ScheduleListing(ctx)
	if err != nil {
		return slack.Ephemeral("Oops! Something went wrong!").WithAttachment(err.Error())
	}
	if listing == "" {
		listing = everyoneInUpcoming
	}
	return slack.InChannel(scheduleHeading).WithAttachment(listing)
}

func (s *Service) handleHistory(ctx context.Context, userID string) *slack.Message {
	listing, err := s.HistoryListing(ctx, userID)
	if err != nil {
		return slack.Ephemeral("Oops! Something went wrong!").WithAttachment(err.Error())
	}
	// History is personal; the default (ephemeral) display is intentional.
	return (&slack.Message{Text: historyHeading}).WithAttachment(listing)
}

// TodayDigest shapes the broadcast copy of today's listing, with the same
// empty-day fallback the `today` subcommand uses.
func (s *Service) TodayDigest(ctx context.Context) (*slack.Message, error) {
	listing, err := s.TodayListing(ctx)
	if err != nil {
		return nil, err
	}
	if listing == "" {
		listing = everyoneInToday
	}
	return (&slack.Message{Text: todayHeading}).WithAttachment(listing), nil
}

// TodayListing aggregates every user's wfh/ooo record for the current day.
func (s *Service) TodayListing(ctx context.Context) (string, error) {
	today := naturaldate.ISO(s.parser.Today())
	records, err := s.store.ListStatusRecordsByDate(ctx, today)
	if err != nil {
		return "", err
	}
	lines := FormatListing(records, Window{Start: today, End: today}, ScopeToday, "")
	return strings.Join(lines, "\n"), nil
}

// HistoryListing aggregates one user's records from the past month through
// today.
func (s *Service) HistoryListing(ctx context.Context, userID string) (string, error) {
	todayDate := s.parser.Today()
	today := naturaldate.ISO(todayDate)
	monthAgo := naturaldate.ISO(todayDate.AddDate(0, -1, 0))

	records, err := s.store.ListStatusRecordsByUserSince(ctx, userID, monthAgo)
	if err != nil {
		return "", err
	}
	lines := FormatListing(records, Window{Start: monthAgo, End: today}, ScopeHistory, userID)
	return strings.Join(lines, "\n"), nil
}

// ScheduleListing aggregates everyone's records from today through a month
// from now.
func (s *Service) ScheduleListing(ctx context.Context) (string, error) {
	todayDate := s.parser.Today()
	today := naturaldate.ISO(todayDate)
	monthAhead := naturaldate.ISO(todayDate.AddDate(0, 1, 0))

	records, err := s.store.ScanStatusRecords(ctx)
	if err != nil {
		return "", err
	}
	lines := FormatListing(records, Window{Start: today, End: monthAhead}, ScopeSchedule, "")
	return strings.Join(lines, "\n"), nil
}

// confirmWrite phrases a successful write. Tense follows the dates' relation
// to today; multi-date phrasing mirrors whether a conjunction or a range
// produced them.
func confirmWrite(userName, status string, isoDates []string, kind naturaldate.ExpandKind, today string) string {
	display := strings.ToUpper(status)

	if len(isoDates) == 1 {
		date := isoDates[0]
		switch {
		case date > today:
			return fmt.Sprintf("%s will be %s on %s.", userName, display, date)
		case date == today:
			return fmt.Sprintf("%s is %s today.", userName, display)
		default:
			return fmt.Sprintf("%s was %s on %s.", userName, display, date)
		}
	}

	if kind == naturaldate.ExpandRange {
		return fmt.Sprintf("%s is %s on %s through %s", userName, display, isoDates[0], isoDates[len(isoDates)-1])
	}
	return fmt.Sprintf("%s is %s on %s", userName, display, strings.Join(isoDates, " and "))
}
