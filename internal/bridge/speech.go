package bridge

import (
	"errors"

	"voice-sheet/internal/session"
)

// Outbound message types.
const (
	TypeState  = "STATE"
	TypeSpeak  = "SPEAK"
	TypeListen = "LISTEN"
	TypeNotify = "NOTIFY"
	TypeSaved  = "SAVED"
)

var ErrNoClient = errors.New("no front end connected")

// Speech forwards the session's speech and notification calls to the
// connected front ends, which own the microphone and the speaker.
type Speech struct {
	hub  *Hub
	lang string
}

func NewSpeech(hub *Hub, lang string) *Speech {
	return &Speech{hub: hub, lang: lang}
}

type listenPayload struct {
	On   bool   `json:"on"`
	Lang string `json:"lang,omitempty"`
}

type speakPayload struct {
	Text string `json:"text"`
	Lang string `json:"lang,omitempty"`
}

type savedPayload struct {
	URL string `json:"url"`
}

func (sp *Speech) Start() error {
	if sp.hub.Connected() == 0 {
		return ErrNoClient
	}
	return sp.hub.Send(TypeListen, "", listenPayload{On: true, Lang: sp.lang})
}

func (sp *Speech) Stop() error {
	return sp.hub.Send(TypeListen, "", listenPayload{On: false})
}

// Speak asks the front ends to say text. Without a front end, or when the
// prompt cannot be queued, nothing is spoken and the error makes the
// session resume at once.
func (sp *Speech) Speak(text string) error {
	if sp.hub.Connected() == 0 {
		return ErrNoClient
	}
	return sp.hub.Send(TypeSpeak, "", speakPayload{Text: text, Lang: sp.lang})
}

func (sp *Speech) Notify(n session.Notice) {
	if n.URL != "" {
		sp.hub.Send(TypeSaved, "", savedPayload{URL: n.URL})
	}
	sp.hub.Send(TypeNotify, "", n)
}
