package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"voice-sheet/internal/format"
	"voice-sheet/internal/session"
)

// Inbound message types.
const (
	TypeTranscript       = "TRANSCRIPT"
	TypeSpeechDone       = "SPEECH_DONE"
	TypeRecognitionError = "RECOGNITION_ERROR"
	TypeKey              = "KEY"
	TypeCommand          = "COMMAND"
	TypeSelect           = "SELECT"
	TypeJumpRow          = "JUMP_ROW"
	TypeUpdateCell       = "UPDATE_CELL"
	TypeStyleCell        = "STYLE_CELL"
	TypeOpen             = "OPEN"
	TypeSaveAs           = "SAVE_AS"
	TypeListenToggle     = "LISTEN"
)

var ErrUnknownMessage = errors.New("unknown message type")

// Handler applies inbound messages to the session through its loop and
// publishes the resulting state.
type Handler struct {
	hub  *Hub
	loop *session.Loop
	ctx  context.Context
	log  *logrus.Entry
}

// NewHandler publishes the session state to hub after every loop event.
// It must be called before the loop runs.
func NewHandler(ctx context.Context, hub *Hub, loop *session.Loop) *Handler {
	h := &Handler{hub: hub, loop: loop, ctx: ctx, log: hub.log.WithField("component", "bridge")}
	loop.Observe(h.publish)
	return h
}

type transcriptPayload struct {
	Text  string `json:"text"`
	Final bool   `json:"final"`
}

type errorPayload struct {
	Error string `json:"error"`
}

type keyPayload struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type commandPayload struct {
	Command string `json:"command"`
}

type selectPayload struct {
	Level int    `json:"level"`
	Value string `json:"value"`
}

type rowPayload struct {
	Row int `json:"row"`
}

// cellPayload carries a style either as a StyleRecord or in the remote
// API's CellFormat shape. Both may be given; cellFormat wins per key.
type cellPayload struct {
	Row        int                `json:"row"`
	Col        int                `json:"col"`
	Value      string             `json:"value"`
	Format     format.StyleRecord `json:"format"`
	CellFormat *format.CellFormat `json:"cellFormat,omitempty"`
}

func (p cellPayload) style() format.StyleRecord {
	if p.CellFormat == nil {
		return p.Format
	}
	return format.Merge(p.Format, format.FromCellFormat(*p.CellFormat))
}

type openPayload struct {
	FileID    string `json:"fileId"`
	SheetName string `json:"sheetName"`
}

type saveAsPayload struct {
	FileName string `json:"fileName"`
}

type listenTogglePayload struct {
	On bool `json:"on"`
}

// Handle decodes msg and queues its effect on the loop. Bad messages are
// answered with an error notification.
func (h *Handler) Handle(msg *Message) {
	if err := h.handle(msg); err != nil {
		h.log.WithError(err).WithField("type", msg.Type).Warn("message rejected")
		h.hub.Send(TypeNotify, "", session.Notice{Level: session.LevelError, Message: err.Error()})
	}
}

func (h *Handler) handle(msg *Message) error {
	switch msg.Type {
	case TypeTranscript:
		var p transcriptPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		h.post(func(s *session.Session) error {
			_, err := s.HandleRecognizedText(p.Text, p.Final)
			return err
		})

	case TypeSpeechDone:
		h.post(func(s *session.Session) error { s.SpeechFinished(); return nil })

	case TypeRecognitionError:
		var p errorPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		h.post(func(s *session.Session) error {
			s.OnRecognitionError(errors.New(p.Error))
			return nil
		})

	case TypeKey:
		var p keyPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		return h.key(p)

	case TypeCommand:
		var p commandPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		return h.command(p.Command)

	case TypeSelect:
		var p selectPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		if p.Level < 1 || p.Level > 3 {
			return fmt.Errorf("invalid filter level %d", p.Level)
		}
		h.post(func(s *session.Session) error {
			switch p.Level {
			case 1:
				s.SelectLevel1(p.Value)
			case 2:
				s.SelectLevel2(p.Value)
			default:
				s.SelectLevel3(p.Value)
			}
			return nil
		})

	case TypeJumpRow:
		var p rowPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		h.post(func(s *session.Session) error { s.JumpToRow(p.Row); return nil })

	case TypeUpdateCell:
		var p cellPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		h.post(func(s *session.Session) error { return s.UpdateCell(p.Row, p.Col, p.Value) })

	case TypeStyleCell:
		var p cellPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		h.post(func(s *session.Session) error { return s.SetCellStyle(p.Row, p.Col, p.style()) })

	case TypeOpen:
		var p openPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		if p.FileID == "" {
			return errors.New("OPEN requires fileId")
		}
		h.loop.OpenAsync(h.ctx, p.FileID, p.SheetName)

	case TypeSaveAs:
		var p saveAsPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		return h.loop.SaveAsync(h.ctx, p.FileName)

	case TypeListenToggle:
		var p listenTogglePayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		h.post(func(s *session.Session) error {
			if p.On {
				s.StartListening()
			} else {
				s.StopListening()
			}
			return nil
		})

	default:
		return fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}
	return nil
}

// key maps editor keys the way the keyboard editor does.
func (h *Handler) key(p keyPayload) error {
	switch p.Key {
	case "input":
		h.post(func(s *session.Session) error { s.SetBuffer(p.Value); return nil })
	case "enter":
		h.post(func(s *session.Session) error {
			if p.Value != "" {
				s.SetBuffer(p.Value)
			}
			return s.Commit()
		})
	case "tab":
		return h.command("skip")
	case "shift+tab":
		return h.command("back")
	case "escape":
		return h.command("reset")
	default:
		return fmt.Errorf("unknown key %q", p.Key)
	}
	return nil
}

func (h *Handler) command(name string) error {
	switch name {
	case "skip", "next":
		h.post(func(s *session.Session) error { s.Skip(); return nil })
	case "back", "previous":
		h.post(func(s *session.Session) error { s.Back(); return nil })
	case "reset":
		h.post(func(s *session.Session) error { return s.ResetCurrentCell() })
	case "save":
		h.post(func(s *session.Session) error { return s.Commit() })
	default:
		return fmt.Errorf("unknown command %q", name)
	}
	return nil
}

// post queues fn on the loop. Errors from fn surface as notifications.
func (h *Handler) post(fn func(*session.Session) error) {
	h.loop.Post(func(s *session.Session) {
		if err := fn(s); err != nil {
			h.log.WithError(err).Warn("session operation failed")
			h.hub.Send(TypeNotify, "", session.Notice{Level: session.LevelError, Message: err.Error()})
		}
	})
}

// PublishState queues an empty event so the state is broadcast once the
// events before it have run.
func (h *Handler) PublishState() {
	h.loop.Post(func(*session.Session) {})
}

func (h *Handler) publish(s *session.Session) {
	st := s.Snapshot()
	h.hub.Send(TypeState, s.Sheet().String(), st)
}

func decode(msg *Message, v any) error {
	if len(msg.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", msg.Type, err)
	}
	return nil
}
