package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/roomcast/roomcast/pkg/logger"
	"go.uber.org/zap"
)

type Action string

const (
	ActionSubmitted Action = "submitted"
	ActionApproved  Action = "approved"
	ActionDeleted   Action = "deleted"
)

// Entry is one moderation action on a message.
type Entry struct {
	Action    Action    `json:"action"`
	MessageID string    `json:"message_id"`
	RoomCode  string    `json:"room_code"`
	SenderID  string    `json:"sender_id,omitempty"`
	Content   string    `json:"content,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Log is an append-only JSONL record of message moderation actions,
// fsynced per entry so the trail survives a crash.
type Log struct {
	filePath string
	file     *os.File
	mu       sync.Mutex
}

func NewLog(filePath string) (*Log, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	return &Log{
		filePath: filePath,
		file:     file,
	}, nil
}

// Record appends an entry and syncs it to disk.
func (l *Log) Record(entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		logger.Log.Error("audit: failed to marshal entry",
			zap.String("message_id", entry.MessageID),
			zap.Error(err),
		)
		return err
	}

	if _, err := l.file.WriteString(string(data) + "\n"); err != nil {
		logger.Log.Error("audit: failed to write entry",
			zap.String("message_id", entry.MessageID),
			zap.Error(err),
		)
		return err
	}

	if err := l.file.Sync(); err != nil {
		logger.Log.Error("audit: failed to sync to disk",
			zap.String("message_id", entry.MessageID),
			zap.Error(err),
		)
		return err
	}

	return nil
}

// ReadAll returns every recorded entry in write order. Lines that fail to
// parse are skipped.
func (l *Log) ReadAll() ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.file.Seek(0, 0); err != nil {
		return nil, err
	}

	var entries []Entry
	scanner := bufio.NewScanner(l.file)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			logger.Log.Warn("audit: skipping corrupt entry", zap.Error(err))
			continue
		}
		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	// Restore append position.
	if _, err := l.file.Seek(0, 2); err != nil {
		return nil, err
	}

	return entries, nil
}

func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
