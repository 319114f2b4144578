package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/roomsync/internal/scheduler"
)

// Replies returned when the assistant cannot answer.
const (
	AssistantNotConfigured = "AI Assistant is not configured (Missing API Key)."
	AssistantEmptyReply    = "I couldn't process that request."
	AssistantUnavailable   = "Sorry, I'm having trouble connecting to the smart assistant right now."
)

const systemPromptTemplate = `You are RoomSync AI, a helpful assistant for a university classroom scheduling app.

Here is the current database of rooms and schedules in JSON format:
%s

Rules:
1. Answer users' questions about where a class is, if a room is free, or who teaches a subject.
2. If a user asks to book a room, politely inform them that you cannot perform actions, only the Admin can via the dashboard.
3. Be concise and friendly.
4. If the data doesn't contain the answer, say you don't know based on the current schedule.`

// Completer sends a question with a system prompt to a language model.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, question string) (string, error)
}

// AssistantContext is the data snapshot shared with the language model.
type AssistantContext struct {
	Rooms    []AssistantRoom     `json:"rooms"`
	Schedule []AssistantSchedule `json:"schedule"`
}

// AssistantRoom summarises a room for the assistant.
type AssistantRoom struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	Building string `json:"building"`
}

// AssistantSchedule summarises a schedule entry for the assistant.
type AssistantSchedule struct {
	Subject string `json:"subject"`
	Teacher string `json:"teacher"`
	Room    string `json:"room"`
	Day     string `json:"day"`
	Time    string `json:"time"`
}

// BuildAssistantContext projects rooms and entries into the assistant
// snapshot. Entries name their room, falling back to its identifier.
func BuildAssistantContext(rooms []Room, entries []scheduler.Entry) AssistantContext {
	names := make(map[string]string, len(rooms))
	out := AssistantContext{
		Rooms:    make([]AssistantRoom, 0, len(rooms)),
		Schedule: make([]AssistantSchedule, 0, len(entries)),
	}
	for _, room := range rooms {
		names[room.ID] = room.Name
		out.Rooms = append(out.Rooms, AssistantRoom{
			ID:       room.ID,
			Name:     room.Name,
			Capacity: room.Capacity,
			Building: room.Building,
		})
	}
	for _, entry := range entries {
		room := names[entry.RoomID]
		if room == "" {
			room = entry.RoomID
		}
		out.Schedule = append(out.Schedule, AssistantSchedule{
			Subject: entry.Subject,
			Teacher: entry.Teacher,
			Room:    room,
			Day:     entry.Day.String(),
			Time:    entry.TimeRange(),
		})
	}
	return out
}

// SystemPrompt renders the assistant instructions around the snapshot.
func SystemPrompt(snapshot AssistantContext) (string, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(systemPromptTemplate, data), nil
}

// AssistantService answers free-text questions about rooms and schedules.
type AssistantService struct {
	completer Completer
	rooms     RoomLister
	entries   EntrySource
	logger    *slog.Logger
}

// NewAssistantService constructs an assistant. A nil completer means no
// API key is configured.
func NewAssistantService(completer Completer, rooms RoomLister, entries EntrySource) *AssistantService {
	return NewAssistantServiceWithLogger(completer, rooms, entries, nil)
}

// NewAssistantServiceWithLogger constructs an assistant with a specified logger.
func NewAssistantServiceWithLogger(completer Completer, rooms RoomLister, entries EntrySource, logger *slog.Logger) *AssistantService {
	return &AssistantService{completer: completer, rooms: rooms, entries: entries, logger: defaultLogger(logger)}
}

// Configured reports whether a completer is available.
func (s *AssistantService) Configured() bool {
	return s != nil && s.completer != nil
}

// Ask answers question from the current rooms and schedule. Failures are
// logged and converted into an apology; Ask never returns an error.
func (s *AssistantService) Ask(ctx context.Context, question string) string {
	if !s.Configured() {
		return AssistantNotConfigured
	}

	logger := serviceLogger(ctx, s.logger, "AssistantService", "Ask", "question_length", len(question))

	prompt, err := s.prompt(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to build assistant context", "error", err, "error_kind", ErrorKind(err))
		return AssistantUnavailable
	}

	reply, err := s.completer.Complete(ctx, prompt, question)
	if err != nil {
		logger.ErrorContext(ctx, "assistant request failed", "error", err, "error_kind", ErrorKind(err))
		return AssistantUnavailable
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		logger.WarnContext(ctx, "assistant returned an empty reply")
		return AssistantEmptyReply
	}
	logger.InfoContext(ctx, "assistant replied", "reply_length", len(reply))
	return reply
}

func (s *AssistantService) prompt(ctx context.Context) (string, error) {
	var (
		rooms   []Room
		entries []scheduler.Entry
		err     error
	)
	if s.rooms != nil {
		if rooms, err = s.rooms.ListRooms(ctx); err != nil {
			return "", err
		}
	}
	if s.entries != nil {
		if entries, err = s.entries.Entries(ctx); err != nil {
			return "", err
		}
	}
	return SystemPrompt(BuildAssistantContext(rooms, entries))
}
