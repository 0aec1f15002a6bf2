// Package session drives cell-by-cell editing of one sheet: it owns the
// cursor, feeds voice and keyboard input through the router and records
// edits in the modification store.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"voice-sheet/internal/cursor"
	"voice-sheet/internal/filter"
	"voice-sheet/internal/format"
	"voice-sheet/internal/gateway"
	"voice-sheet/internal/kvstore"
	"voice-sheet/internal/modstore"
	"voice-sheet/internal/voice"
)

var (
	ErrNotOpen        = errors.New("no sheet open")
	ErrSaveInProgress = errors.New("save already in progress")

	errNoGateway = errors.New("session: no gateway configured")
)

// Options configures a Session. Nil collaborators are replaced by no-ops,
// except Gateway which Open and saves require. Without SpeechOut prompts
// are not spoken.
type Options struct {
	Gateway   gateway.Gateway
	Store     kvstore.Store
	Router    *voice.Router
	Filter    filter.Columns
	SpeechIn  SpeechInput
	SpeechOut SpeechOutput
	Notifier  Notifier
	Log       *logrus.Entry
}

// Session is not safe for concurrent use. Run it from a single goroutine,
// such as a Loop or a bubbletea program.
type Session struct {
	gw        gateway.Gateway
	store     *modstore.Store
	router    *voice.Router
	columns   filter.Columns
	speechIn  SpeechInput
	speechOut SpeechOutput
	notifier  Notifier
	log       *logrus.Entry

	fileID string
	title  string
	sheets []string
	bounds cursor.Bounds
	labels []string
	cur    *cursor.Cursor
	index  *filter.Index
	buffer string

	wantListen  bool
	recognizing bool
	saving      bool

	// prompts counts prompts handed to speech output and not yet finished.
	prompts int
}

func New(opts Options) *Session {
	log := opts.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	s := &Session{
		gw:        opts.Gateway,
		store:     modstore.New(opts.Store, log),
		router:    opts.Router,
		columns:   opts.Filter,
		speechIn:  opts.SpeechIn,
		speechOut: opts.SpeechOut,
		notifier:  opts.Notifier,
		log:       log.WithField("component", "session"),
	}
	if s.router == nil {
		s.router = voice.NewRouter(voice.DefaultKeywords(), nil)
	}
	if s.speechIn == nil {
		s.speechIn = nopSpeech{}
	}
	if s.notifier == nil {
		s.notifier = nopSpeech{}
	}
	return s
}

// Open reads a sheet through the gateway and loads it.
func (s *Session) Open(ctx context.Context, fileID, sheetName string) error {
	if s.gw == nil {
		return errNoGateway
	}
	data, err := s.gw.ReadSheet(ctx, fileID, sheetName)
	if err != nil {
		return err
	}
	return s.Load(fileID, data)
}

// Load makes data the active sheet. The cursor starts on the first
// editable cell unless the initial filter selection jumps it.
func (s *Session) Load(fileID string, data *gateway.SheetData) error {
	b, err := cursor.DetectBounds(data.Values)
	if err != nil {
		return fmt.Errorf("open %s/%s: %w", fileID, data.SheetName, err)
	}
	cur, err := cursor.New(b, s.onMove)
	if err != nil {
		return fmt.Errorf("open %s/%s: %w", fileID, data.SheetName, err)
	}

	// A broken persisted entry loses only that part of the overlay.
	if err := s.store.Load(modstore.SheetID{FileID: fileID, SheetName: data.SheetName}, data.Values, data.Formatting); err != nil {
		s.log.WithError(err).Warn("persisted modifications partially restored")
		s.notify(LevelWarning, "some saved edits could not be restored")
	}

	s.fileID = fileID
	s.title = data.Metadata.Title
	s.sheets = data.Metadata.Sheets
	s.bounds = b
	s.labels = cursor.ColumnLabels(data.Values, b)
	s.cur = cur
	s.buffer = ""

	idx, change := filter.Build(data.Values, s.columns, b)
	s.index = idx
	if change.Jumped {
		s.cur.JumpToRow(change.JumpRow)
	} else {
		s.announce()
	}

	s.log.WithFields(logrus.Fields{
		"file":   fileID,
		"sheet":  data.SheetName,
		"bounds": fmt.Sprintf("%+v", b),
	}).Info("sheet opened")
	return nil
}

func (s *Session) IsOpen() bool { return s.cur != nil }

// onMove resets the input buffer and announces the new column.
func (s *Session) onMove(cursor.Position) {
	s.buffer = ""
	s.announce()
}

// announce speaks the current column label. Recognition is paused first
// and resumed by SpeechFinished.
func (s *Session) announce() {
	label := s.CurrentLabel()
	if label == "" || s.speechOut == nil {
		return
	}
	if s.recognizing {
		if err := s.speechIn.Stop(); err != nil {
			s.log.WithError(err).Warn("stop recognition")
		}
		s.recognizing = false
	}
	s.prompts++
	if err := s.speechOut.Speak(label); err != nil {
		s.log.WithError(err).Warn("speak")
		s.SpeechFinished()
	}
}

// SpeechFinished is called once per prompt that has been spoken.
// Recognition resumes only when no prompt is outstanding.
func (s *Session) SpeechFinished() {
	if s.prompts > 0 {
		s.prompts--
	}
	s.resume()
}

func (s *Session) resume() {
	if !s.wantListen || s.recognizing || s.prompts > 0 {
		return
	}
	if err := s.speechIn.Start(); err != nil {
		s.OnRecognitionError(err)
		return
	}
	s.recognizing = true
}

// StartListening turns recognition on, deferred until any prompt being
// spoken has finished.
func (s *Session) StartListening() {
	s.wantListen = true
	s.resume()
}

// StopListening turns recognition off. A partial transcript in flight is
// dropped.
func (s *Session) StopListening() {
	s.wantListen = false
	if !s.recognizing {
		return
	}
	s.recognizing = false
	if err := s.speechIn.Stop(); err != nil {
		s.log.WithError(err).Warn("stop recognition")
	}
}

// OnRecognitionError ends listening and tells the user. It is never fatal.
func (s *Session) OnRecognitionError(err error) {
	s.wantListen = false
	s.recognizing = false
	s.log.WithError(err).Warn("recognition failed")
	s.notify(LevelWarning, "speech recognition stopped: "+err.Error())
}

func (s *Session) Listening() bool { return s.wantListen }
func (s *Session) Speaking() bool  { return s.prompts > 0 }

// HandleRecognizedText routes a transcript. Only final transcripts are
// acted on; the returned actions are those applied.
func (s *Session) HandleRecognizedText(text string, final bool) ([]voice.Action, error) {
	if !final {
		return nil, nil
	}
	if !s.IsOpen() {
		return nil, ErrNotOpen
	}
	if s.Speaking() {
		s.log.WithField("text", text).Debug("transcript dropped while speaking")
		return nil, nil
	}
	actions := s.router.Route(text)
	var errs []error
	for _, a := range actions {
		s.log.WithFields(logrus.Fields{"kind": a.Kind, "value": a.Value}).Debug("voice action")
		switch a.Kind {
		case voice.Literal:
			s.buffer = a.Value
		case voice.Skip:
			s.Skip()
		case voice.Back:
			s.Back()
		case voice.Reset:
			errs = append(errs, s.ResetCurrentCell())
		case voice.Save:
			errs = append(errs, s.Commit())
		}
	}
	return actions, errors.Join(errs...)
}

// SetBuffer replaces the pending value, as typed on a keyboard.
func (s *Session) SetBuffer(v string) { s.buffer = v }
func (s *Session) Buffer() string     { return s.buffer }

// Commit writes the pending value to the current cell and advances. An
// empty buffer only advances.
func (s *Session) Commit() error {
	if !s.IsOpen() {
		return ErrNotOpen
	}
	var err error
	if s.buffer != "" {
		p := s.cur.Position()
		err = s.store.UpdateCell(p.Row, p.Col, s.buffer)
	}
	s.buffer = ""
	if !s.cur.MoveNext() {
		s.notify(LevelInfo, "last cell reached")
	}
	return err
}

// Skip advances without recording. It reports false at the last cell.
func (s *Session) Skip() bool {
	if !s.IsOpen() {
		return false
	}
	return s.cur.MoveNext()
}

// Back moves to the previous cell. It reports false at the first cell.
func (s *Session) Back() bool {
	if !s.IsOpen() {
		return false
	}
	return s.cur.MovePrevious()
}

// ResetCurrentCell restores the current cell to its original value.
func (s *Session) ResetCurrentCell() error {
	if !s.IsOpen() {
		return ErrNotOpen
	}
	s.buffer = ""
	p := s.cur.Position()
	return s.store.ResetCell(p.Row, p.Col)
}

func (s *Session) MoveNext() bool     { return s.Skip() }
func (s *Session) MovePrevious() bool { return s.Back() }

func (s *Session) JumpToRow(row int) {
	if s.IsOpen() {
		s.cur.JumpToRow(row)
	}
}

// UpdateCell edits any cell directly, bypassing the cursor.
func (s *Session) UpdateCell(row, col int, value string) error {
	return s.store.UpdateCell(row, col, value)
}

func (s *Session) SetCellStyle(row, col int, partial format.StyleRecord) error {
	return s.store.SetCellStyleFormat(row, col, partial)
}

func (s *Session) SelectLevel1(v string) filter.Change {
	if !s.IsOpen() {
		return filter.Change{}
	}
	return s.applyFilter(s.index.SelectLevel1(v))
}

func (s *Session) SelectLevel2(v string) filter.Change {
	if !s.IsOpen() {
		return filter.Change{}
	}
	return s.applyFilter(s.index.SelectLevel2(v))
}

func (s *Session) SelectLevel3(v string) filter.Change {
	if !s.IsOpen() {
		return filter.Change{}
	}
	return s.applyFilter(s.index.SelectLevel3(v))
}

func (s *Session) applyFilter(c filter.Change) filter.Change {
	switch {
	case c.Jumped:
		s.cur.JumpToRow(c.JumpRow)
	case c.NoMatch:
		s.notify(LevelInfo, "no row matches the selected filter")
	}
	return c
}

func (s *Session) Position() cursor.Position {
	if !s.IsOpen() {
		return cursor.Position{}
	}
	return s.cur.Position()
}

// CurrentValue is the display value of the cell under the cursor.
func (s *Session) CurrentValue() string {
	if !s.IsOpen() {
		return ""
	}
	p := s.cur.Position()
	return s.store.DisplayValue(p.Row, p.Col)
}

func (s *Session) CurrentLabel() string {
	if !s.IsOpen() {
		return ""
	}
	c := s.cur.Position().Col
	if c < 0 || c >= len(s.labels) {
		return ""
	}
	return s.labels[c]
}

func (s *Session) ChangeCount() int        { return s.store.ChangeCount() }
func (s *Session) Bounds() cursor.Bounds   { return s.bounds }
func (s *Session) Labels() []string        { return append([]string(nil), s.labels...) }
func (s *Session) Store() *modstore.Store  { return s.store }
func (s *Session) Sheet() modstore.SheetID { return s.store.Sheet() }
func (s *Session) IsFirstCell() bool       { return s.IsOpen() && s.cur.IsFirstCell() }
func (s *Session) IsLastCell() bool        { return s.IsOpen() && s.cur.IsLastCell() }
func (s *Session) Grid() [][]string        { return s.store.CurrentData() }

func (s *Session) notify(level Level, msg string) {
	s.notifier.Notify(Notice{Level: level, Message: msg})
}
