package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/paperchat-ai/paperchat/internal/service"
)

// CachedSession is the client-side record for one uploaded document, stored
// under ~/.paperchat/sessions/<file_id>.json. In stateless deployments it
// carries the full session payload the server handed back; losing this file
// means the document must be re-uploaded. Conversation history always lives
// here, in both modes.
type CachedSession struct {
	FileID     string                  `json:"file_id"`
	Filename   string                  `json:"filename"`
	PageCount  int                     `json:"page_count"`
	ChunkCount int                     `json:"chunk_count"`
	Stateless  bool                    `json:"stateless"`
	Payload    *service.SessionPayload `json:"payload,omitempty"`
	History    []HistoryTurn           `json:"history,omitempty"`
	UpdatedAt  time.Time               `json:"updated_at"`
}

// HistoryTurn is one prior conversation turn kept client-side.
type HistoryTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

var getSessionsDirFunc = defaultGetSessionsDir

func defaultGetSessionsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".paperchat", "sessions"), nil
}

func sessionPath(fileID string) (string, error) {
	dir, err := getSessionsDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileID+".json"), nil
}

// SaveCachedSession persists the session record with 0600 permissions.
func SaveCachedSession(session *CachedSession) error {
	dir, err := getSessionsDirFunc()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create sessions directory: %w", err)
	}

	session.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	path, err := sessionPath(session.FileID)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}

// LoadCachedSession reads the session record for a file id.
// Returns nil (not an error) if no record exists.
func LoadCachedSession(fileID string) (*CachedSession, error) {
	path, err := sessionPath(fileID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var session CachedSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}

	return &session, nil
}

// DeleteCachedSession removes the session record. Missing files are fine.
func DeleteCachedSession(fileID string) error {
	path, err := sessionPath(fileID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

// ListCachedSessions returns every session record on disk, skipping
// unreadable entries.
func ListCachedSessions() ([]*CachedSession, error) {
	dir, err := getSessionsDirFunc()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var sessions []*CachedSession
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		var session CachedSession
		if err := json.Unmarshal(data, &session); err != nil {
			continue
		}
		sessions = append(sessions, &session)
	}

	return sessions, nil
}
