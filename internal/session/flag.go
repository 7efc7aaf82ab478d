package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"vaultScope/internal/storage/postgres"
)

// FlagStore persists the single "was connected" flag used for silent reconnection.
type FlagStore interface {
	Load(ctx context.Context) (bool, error)
	Save(ctx context.Context, connected bool) error
	Clear(ctx context.Context) error
}

// FileFlagStore stores the flag in a local JSON file.
type FileFlagStore struct {
	Path string
}

type flagRecord struct {
	WalletConnected bool   `json:"wallet_connected"`
	UpdatedAt       string `json:"updated_at"`
}

func (s *FileFlagStore) Load(ctx context.Context) (bool, error) {
	if s == nil || s.Path == "" {
		return false, nil
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read session flag: %w", err)
	}

	var rec flagRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return false, fmt.Errorf("parse session flag: %w", err)
	}
	return rec.WalletConnected, nil
}

func (s *FileFlagStore) Save(ctx context.Context, connected bool) error {
	if s == nil || s.Path == "" {
		return nil
	}
	dir := filepath.Dir(s.Path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create session dir: %w", err)
		}
	}

	rec := flagRecord{
		WalletConnected: connected,
		UpdatedAt:       time.Now().UTC().Format(time.RFC3339Nano),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session flag: %w", err)
	}

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write session flag tmp: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return fmt.Errorf("rename session flag: %w", err)
	}
	return nil
}

func (s *FileFlagStore) Clear(ctx context.Context) error {
	if s == nil || s.Path == "" {
		return nil
	}
	if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session flag: %w", err)
	}
	return nil
}

// DBFlagStore stores the flag in the session_state table.
type DBFlagStore struct {
	Store *postgres.Store
	Name  string
}

func (s *DBFlagStore) Load(ctx context.Context) (bool, error) {
	if s == nil || s.Store == nil {
		return false, nil
	}
	connected, _, ok, err := s.Store.LoadFlag(ctx, s.Name)
	if err != nil || !ok {
		return false, err
	}
	return connected, nil
}

func (s *DBFlagStore) Save(ctx context.Context, connected bool) error {
	if s == nil || s.Store == nil {
		return nil
	}
	return s.Store.SaveFlag(ctx, s.Name, connected)
}

func (s *DBFlagStore) Clear(ctx context.Context) error {
	if s == nil || s.Store == nil {
		return nil
	}
	return s.Store.DeleteFlag(ctx, s.Name)
}
