package session

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"voice-sheet/internal/gateway"
	"voice-sheet/internal/modstore"
)

// SaveRequest is a snapshot of the edited sheet, taken on the event loop
// and handed to the gateway off it.
type SaveRequest struct {
	FileName string
	Sheets   []gateway.NewSheet
	Sheet    modstore.SheetID
	Revision uint64
}

// PrepareSave snapshots the current grid for writing to a new workbook.
// Only one save may be pending at a time.
func (s *Session) PrepareSave(fileName string) (SaveRequest, error) {
	if !s.IsOpen() {
		return SaveRequest{}, ErrNotOpen
	}
	if s.saving {
		return SaveRequest{}, ErrSaveInProgress
	}
	if fileName == "" {
		fileName = s.title + " (edited)"
	}
	values, styles := s.store.Export()
	id := s.store.Sheet()
	s.saving = true
	s.log.WithFields(logrus.Fields{"file": fileName, "changes": s.store.ChangeCount()}).Info("save started")
	return SaveRequest{
		FileName: fileName,
		Sheets:   []gateway.NewSheet{{SheetName: id.SheetName, Values: values, Formatting: styles}},
		Sheet:    id,
		Revision: s.store.Revision(),
	}, nil
}

// CompleteSave applies the outcome of a save. On failure the overlay is
// kept so the user can retry. On success it is cleared, unless the sheet
// was edited or switched while the save was running.
func (s *Session) CompleteSave(req SaveRequest, res gateway.CreateResult, err error) error {
	s.saving = false
	log := s.log.WithField("file", req.FileName)
	if err != nil {
		log.WithError(err).Error("save failed")
		s.store.Note("SAVE_FAILED", fmt.Sprintf("%s: %v", req.FileName, err))
		s.notify(LevelError, fmt.Sprintf("save failed: %v", err))
		return err
	}
	log.WithField("url", res.URL).Info("save completed")
	s.store.Note("SAVE_AS", res.URL)

	if s.store.Sheet() != req.Sheet || s.store.Revision() != req.Revision {
		s.notifier.Notify(Notice{
			Level:   LevelSuccess,
			Message: "saved; edits made during the save are kept",
			URL:     res.URL,
		})
		return nil
	}
	if cerr := s.store.Clear(); cerr != nil {
		log.WithError(cerr).Warn("clear after save")
	}
	s.notifier.Notify(Notice{Level: LevelSuccess, Message: "saved", URL: res.URL})
	return nil
}

func (s *Session) Saving() bool { return s.saving }
