package session

// SpeechInput controls the recognizer. Recognized text is delivered back
// through Session.HandleRecognizedText.
type SpeechInput interface {
	Start() error
	Stop() error
}

// SpeechOutput speaks a prompt. Completion is reported through
// Session.SpeechFinished.
type SpeechOutput interface {
	Speak(text string) error
}

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a user-facing notification. URL is set when a save produced a
// new document.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
	URL     string `json:"url,omitempty"`
}

type Notifier interface {
	Notify(n Notice)
}

type nopSpeech struct{}

func (nopSpeech) Start() error  { return nil }
func (nopSpeech) Stop() error   { return nil }
func (nopSpeech) Notify(Notice) {}
