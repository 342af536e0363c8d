// pdse-go: Pixel Dungeon save edit suite
// Copyright (C) 2026  Jonas Mehl
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package session sequences one edit run: load the save, mutate it, store
// it back. A pretty-printed staging file in the working directory is the
// crash-recovery checkpoint; as long as it exists, a later run resumes
// from it instead of fetching again.
package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jmehl/pdse-go/internal/bridge"
	"github.com/jmehl/pdse-go/pkg/save"
)

// Config carries the per-run settings.
type Config struct {
	// Slot selects which of the game's save files to edit.
	Slot int
	// WorkDir is the scratch directory; empty means a fresh temporary
	// directory owned (and removed) by the session.
	WorkDir string
	// NoSave runs the mutations and keeps the staging file, but neither
	// pushes back to the device nor cleans up.
	NoSave bool
	// Uncurse additionally lifts curses from items.
	Uncurse bool
}

// Session owns the document for the duration of one run. Sessions are
// single use and not safe for concurrent use; two sessions on the same
// slot and working directory are undefined behavior.
type Session struct {
	cfg      Config
	transfer bridge.Transfer
	log      *slog.Logger

	workDir string
	ownsDir bool
	doc     save.Document
}

// New prepares the working directory and returns a session ready to Run.
// Close must be called on every path after a successful New.
func New(cfg Config, transfer bridge.Transfer, log *slog.Logger) (*Session, error) {
	s := &Session{cfg: cfg, transfer: transfer, log: log}

	if cfg.WorkDir == "" {
		dir, err := os.MkdirTemp("", "pdse-*")
		if err != nil {
			return nil, fmt.Errorf("creating working directory: %w", err)
		}

		s.workDir = dir
		s.ownsDir = true
	} else {
		if err := os.MkdirAll(cfg.WorkDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating working directory: %w", err)
		}

		s.workDir = cfg.WorkDir
	}

	s.log.Debug("working directory ready", "dir", s.workDir, "ephemeral", s.ownsDir)

	return s, nil
}

// Close removes an ephemeral working directory. When saving is suppressed
// the directory is kept so the staging file stays inspectable; a
// user-supplied directory is never removed.
func (s *Session) Close() error {
	if !s.ownsDir || s.cfg.NoSave {
		return nil
	}

	return os.RemoveAll(s.workDir)
}

// Run drives the whole session: load, mutate, store, cleanup. Any error
// aborts the run; the staging checkpoint written during load survives for
// the next attempt when the working directory does.
func (s *Session) Run(ctx context.Context) error {
	if err := s.load(ctx); err != nil {
		return err
	}

	if err := s.mutate(); err != nil {
		return err
	}

	if err := s.store(ctx); err != nil {
		return err
	}

	return s.cleanup()
}

func (s *Session) stagingPath() string {
	return filepath.Join(s.workDir, fmt.Sprintf("game%d.staging.json", s.cfg.Slot))
}

func (s *Session) backupPath(now time.Time) string {
	name := fmt.Sprintf("game%d-%s.sav", s.cfg.Slot, now.Format("20060102-150405"))
	return filepath.Join(s.workDir, name)
}

// load obtains the document, from the staging file when one is present,
// otherwise by fetching and decoding the device save. Both paths end by
// writing the staging checkpoint.
func (s *Session) load(ctx context.Context) error {
	staged, err := os.ReadFile(s.stagingPath())
	switch {
	case err == nil:
		doc, err := save.ParseDocument(staged)
		if err != nil {
			return fmt.Errorf("staging file %s: %w", s.stagingPath(), err)
		}

		s.doc = doc
		s.log.Info("resuming from staging file", "path", s.stagingPath())

	case errors.Is(err, fs.ErrNotExist):
		raw := filepath.Join(s.workDir, fmt.Sprintf("game%d.sav", s.cfg.Slot))

		s.log.Info("fetching save from device", "slot", s.cfg.Slot)
		if err := s.transfer.Fetch(ctx, s.cfg.Slot, raw); err != nil {
			return fmt.Errorf("fetching slot %d: %w", s.cfg.Slot, err)
		}

		b, err := os.ReadFile(raw)
		if err != nil {
			return fmt.Errorf("reading fetched save: %w", err)
		}

		doc, err := save.Decode(b)
		if err != nil {
			return err
		}

		s.doc = doc

	default:
		return fmt.Errorf("reading staging file: %w", err)
	}

	return s.writeStaging()
}

// writeStaging checkpoints the current document before anything riskier
// happens, so a failed run never loses a fetched save.
func (s *Session) writeStaging() error {
	b, err := save.MarshalPretty(s.doc)
	if err != nil {
		return fmt.Errorf("rendering staging file: %w", err)
	}

	if err := os.WriteFile(s.stagingPath(), b, 0o644); err != nil {
		return fmt.Errorf("writing staging file: %w", err)
	}

	s.log.Debug("staging file written", "path", s.stagingPath())

	return nil
}

func (s *Session) mutate() error {
	for _, r := range save.Rules(s.cfg.Uncurse) {
		s.log.Info("applying rule", "rule", r.Name)

		if err := r.Apply(s.doc); err != nil {
			return fmt.Errorf("rule %s: %w", r.Name, err)
		}
	}

	return nil
}

// store rewrites the staging file with the mutated document and, unless
// suppressed, encodes it, keeps a timestamped local backup of the encoded
// bytes, and pushes them back to the device.
func (s *Session) store(ctx context.Context) error {
	if err := s.writeStaging(); err != nil {
		return err
	}

	if s.cfg.NoSave {
		s.log.Info("save suppressed, staging file kept", "path", s.stagingPath())
		return nil
	}

	b, err := save.Encode(s.doc)
	if err != nil {
		return err
	}

	backup := s.backupPath(time.Now())
	if err := os.WriteFile(backup, b, 0o644); err != nil {
		return fmt.Errorf("writing backup: %w", err)
	}
	s.log.Info("backup written", "path", backup)

	s.log.Info("pushing save to device", "slot", s.cfg.Slot)
	if err := s.transfer.Push(ctx, s.cfg.Slot, backup); err != nil {
		return fmt.Errorf("pushing slot %d: %w", s.cfg.Slot, err)
	}

	return nil
}

// cleanup drops the staging file once the push went through. With saving
// suppressed the run ends checkpointed instead and the file stays behind.
func (s *Session) cleanup() error {
	if s.cfg.NoSave {
		return nil
	}

	if err := os.Remove(s.stagingPath()); err != nil {
		return fmt.Errorf("removing staging file: %w", err)
	}

	s.log.Debug("staging file removed")

	return nil
}
