package modstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"voice-sheet/internal/format"
)

const keyPrefix = "voicesheet"

const (
	kindChanges   = "changes"
	kindStyles    = "styles"
	kindStructure = "structure"
	kindJournal   = "journal"
)

func (s *Store) key(kind string) string {
	return keyPrefix + ":" + kind + ":" + s.id.String()
}

func (s *Store) persistChanges() error {
	return s.persist(kindChanges, s.changes)
}

func (s *Store) persistStyles() error {
	list := make([]format.CellStyle, 0, len(s.styles))
	for k, f := range s.styles {
		r, c, ok := parseCellKey(k)
		if !ok {
			continue
		}
		list = append(list, format.CellStyle{Row: r, Col: c, Format: f})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Row != list[j].Row {
			return list[i].Row < list[j].Row
		}
		return list[i].Col < list[j].Col
	})
	return s.persist(kindStyles, list)
}

func (s *Store) persistStructure() error {
	return s.persist(kindStructure, s.structure)
}

func (s *Store) persist(kind string, v any) error {
	if s.kv == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s for %s: %w", kind, s.id, err)
	}
	if err := s.kv.Set(s.key(kind), string(b)); err != nil {
		s.log.WithError(err).WithField("kind", kind).Error("persist failed")
		return fmt.Errorf("persist %s for %s: %w", kind, s.id, err)
	}
	return nil
}

// removePersisted drops the overlay entries of the loaded sheet. The
// journal is kept.
func (s *Store) removePersisted() error {
	if s.kv == nil {
		return nil
	}
	var errs []error
	for _, kind := range []string{kindChanges, kindStyles, kindStructure} {
		if err := s.kv.Remove(s.key(kind)); err != nil {
			errs = append(errs, fmt.Errorf("remove %s for %s: %w", kind, s.id, err))
		}
	}
	return errors.Join(errs...)
}

// restore reads back whatever was persisted for the loaded sheet. A broken
// entry is reported and skipped; the rest is still restored.
func (s *Store) restore() error {
	if s.kv == nil {
		return nil
	}
	var errs []error

	var changes map[string]Record
	if ok, err := s.read(kindChanges, &changes); err != nil {
		errs = append(errs, err)
	} else if ok {
		for k, rec := range changes {
			s.changes[k] = rec
		}
	}

	var styles []format.CellStyle
	if ok, err := s.read(kindStyles, &styles); err != nil {
		errs = append(errs, err)
	} else if ok {
		for _, cs := range styles {
			s.styles[CellKey(cs.Row, cs.Col)] = cs.Format
		}
	}

	var st Structure
	if ok, err := s.read(kindStructure, &st); err != nil {
		errs = append(errs, err)
	} else if ok {
		s.structure = st
	}

	var history []JournalEntry
	if ok, err := s.read(kindJournal, &history); err != nil {
		errs = append(errs, err)
	} else if ok {
		s.history = history
	}
	return errors.Join(errs...)
}

func (s *Store) read(kind string, v any) (bool, error) {
	raw, ok, err := s.kv.Get(s.key(kind))
	if err != nil {
		return false, fmt.Errorf("read %s for %s: %w", kind, s.id, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		s.log.WithError(err).WithField("kind", kind).Warn("discarding unreadable persisted entry")
		return false, fmt.Errorf("decode %s for %s: %w", kind, s.id, err)
	}
	return true, nil
}

func parseCellKey(k string) (row, col int, ok bool) {
	rs, cs, found := strings.Cut(k, "-")
	if !found {
		return 0, 0, false
	}
	r, err1 := strconv.Atoi(rs)
	c, err2 := strconv.Atoi(cs)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return r, c, true
}
