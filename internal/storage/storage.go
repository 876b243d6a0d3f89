// Package storage keeps per-guild command history on top of the datastore.
// Menu state is never stored here.
package storage

import (
	"time"

	"github.com/keshon/menubot/datastore"
	"github.com/keshon/menubot/pkg/logger"
)

const commandHistoryLimit int = 20

// directKey holds history of commands run in direct messages.
const directKey = "direct"

type Storage struct {
	ds *datastore.DataStore
}

type CommandHistoryRecord struct {
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Command   string    `json:"command"`
	Param     string    `json:"param"`
	Datetime  time.Time `json:"datetime"`
}

type Record struct {
	CommandsHistoryList []CommandHistoryRecord `json:"cmd_history"`
}

func New(filePath string, log logger.Logger) (*Storage, error) {
	cfg := datastore.DefaultConfig(filePath)
	cfg.Logger = log
	ds, err := datastore.NewWithConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

func guildKey(guildID string) string {
	if guildID == "" {
		return directKey
	}
	return guildID
}

// AppendCommandToHistory records a command, keeping the newest
// commandHistoryLimit entries per guild.
func (s *Storage) AppendCommandToHistory(guildID string, command CommandHistoryRecord) error {
	return datastore.Update(s.ds, guildKey(guildID), func(r *Record) error {
		r.CommandsHistoryList = append(r.CommandsHistoryList, command)
		if n := len(r.CommandsHistoryList); n > commandHistoryLimit {
			r.CommandsHistoryList = r.CommandsHistoryList[n-commandHistoryLimit:]
		}
		return nil
	})
}

// FetchCommandHistory returns the guild's history, oldest first.
func (s *Storage) FetchCommandHistory(guildID string) ([]CommandHistoryRecord, error) {
	var r Record
	if _, err := s.ds.Get(guildKey(guildID), &r); err != nil {
		return nil, err
	}
	return r.CommandsHistoryList, nil
}
