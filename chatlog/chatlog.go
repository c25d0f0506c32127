// Package chatlog appends chat turns and user feedback to JSON-lines files.
package chatlog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const (
	// ChatFile is the chat log file name inside the log directory.
	ChatFile = "chatlog.jsonl"

	// FeedbackFile is the feedback log file name inside the log directory.
	FeedbackFile = "feedback.jsonl"
)

// ChatEntry is one resolved turn.
type ChatEntry struct {
	SessionID      string
	UserMessage    string
	MatchedService string
	Score          float32
	Degraded       bool
}

// Feedback is a user's rating of an answer.
type Feedback struct {
	Service   string
	Helpful   string // "Yes", "No" or "Unknown"
	Comment   string
	SessionID string // Empty is logged as null
}

// Logger writes one JSON object per line. It is safe for concurrent use.
type Logger struct {
	chat     *slog.Logger
	feedback *slog.Logger
	closers  []io.Closer
}

// Open creates dir on fsys and appends to the chat and feedback files in it.
func Open(fsys afero.Fs, dir string) (*Logger, error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	flags := os.O_APPEND | os.O_CREATE | os.O_WRONLY
	chatFile, err := fsys.OpenFile(filepath.Join(dir, ChatFile), flags, 0o644)
	if err != nil {
		return nil, err
	}
	feedbackFile, err := fsys.OpenFile(filepath.Join(dir, FeedbackFile), flags, 0o644)
	if err != nil {
		chatFile.Close()
		return nil, err
	}

	l := New(chatFile, feedbackFile)
	l.closers = []io.Closer{chatFile, feedbackFile}
	return l, nil
}

// New writes chat lines to chat and feedback lines to feedback.
func New(chat, feedback io.Writer) *Logger {
	return &Logger{
		chat:     slog.New(newLineHandler(chat)),
		feedback: slog.New(newLineHandler(feedback)),
	}
}

// newLineHandler emits bare JSON objects: the level and message are dropped
// and the record time is written as "ts" in UTC.
func newLineHandler(w io.Writer) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}
			switch a.Key {
			case slog.LevelKey, slog.MessageKey:
				return slog.Attr{}
			case slog.TimeKey:
				return slog.Time("ts", a.Value.Time().UTC())
			}
			return a
		},
	})
}

// LogChat appends e to the chat log.
func (l *Logger) LogChat(ctx context.Context, e ChatEntry) {
	attrs := []slog.Attr{
		slog.String("sessionId", e.SessionID),
		slog.String("userMessage", e.UserMessage),
		slog.String("matchedService", e.MatchedService),
		slog.Float64("score", float64(e.Score)),
	}
	if e.Degraded {
		attrs = append(attrs, slog.Bool("degraded", true))
	}
	l.chat.LogAttrs(ctx, slog.LevelInfo, "", attrs...)
}

// LogFeedback appends f to the feedback log. Blank fields take the same
// defaults as an omitted field in the request.
func (l *Logger) LogFeedback(ctx context.Context, f Feedback) {
	if f.Service == "" {
		f.Service = "Unknown"
	}
	if f.Helpful == "" {
		f.Helpful = "Unknown"
	}

	var session slog.Value
	if f.SessionID == "" {
		session = slog.AnyValue(nil)
	} else {
		session = slog.StringValue(f.SessionID)
	}

	l.feedback.LogAttrs(ctx, slog.LevelInfo, "",
		slog.String("service", f.Service),
		slog.String("helpful", f.Helpful),
		slog.String("comment", f.Comment),
		slog.Attr{Key: "sessionId", Value: session},
	)
}

// Close closes files opened by Open.
func (l *Logger) Close() error {
	var errs []error
	for _, c := range l.closers {
		errs = append(errs, c.Close())
	}
	l.closers = nil
	return errors.Join(errs...)
}
