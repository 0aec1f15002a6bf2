// Package voice turns recognized speech into editing actions.
package voice

import (
	"maps"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type Kind string

const (
	Literal Kind = "LITERAL"
	Skip    Kind = "SKIP"
	Back    Kind = "BACK"
	Reset   Kind = "RESET"
	Save    Kind = "SAVE"
)

// Action is one routed event. Value is set for literals only.
type Action struct {
	Kind  Kind   `json:"kind"`
	Value string `json:"value,omitempty"`
}

// Keywords lists the phrases recognized as each command. A phrase
// containing any of them, anywhere, is that command.
type Keywords struct {
	Skip  []string `yaml:"skip"`
	Back  []string `yaml:"back"`
	Reset []string `yaml:"reset"`
	Save  []string `yaml:"save"`
}

func DefaultKeywords() Keywords {
	return Keywords{
		Skip:  []string{"דלג", "הבא"},
		Back:  []string{"חזור", "אחורה", "הקודם"},
		Reset: []string{"נקה", "מחק", "איפוס"},
		Save:  []string{"שמור"},
	}
}

type Router struct {
	commands []command
	numerals map[string]string
}

type command struct {
	kind  Kind
	words []string
}

// NewRouter builds a router from kw. extra adds number words on top of the
// built-in table and may override it.
func NewRouter(kw Keywords, extra map[string]string) *Router {
	table := maps.Clone(numerals)
	for w, d := range extra {
		if w = Normalize(w); w != "" {
			table[w] = d
		}
	}
	r := &Router{numerals: table}
	for _, c := range []command{
		{Skip, kw.Skip},
		{Back, kw.Back},
		{Reset, kw.Reset},
		{Save, kw.Save},
	} {
		var words []string
		for _, w := range c.words {
			if w = Normalize(w); w != "" {
				words = append(words, w)
			}
		}
		c.words = words
		r.commands = append(r.commands, c)
	}
	return r
}

// Route classifies one finalized phrase. A spoken decimal yields a single
// literal. A phrase containing a command keyword yields only that command.
// Anything else yields one literal per token.
func (r *Router) Route(text string) []Action {
	phrase := Normalize(text)
	if phrase == "" {
		return nil
	}
	tokens := strings.Fields(phrase)

	if v, ok := r.decimal(tokens); ok {
		return []Action{{Kind: Literal, Value: v}}
	}

	for _, c := range r.commands {
		for _, w := range c.words {
			if strings.Contains(phrase, w) {
				return []Action{{Kind: c.kind}}
			}
		}
	}

	out := make([]Action, 0, len(tokens))
	for _, t := range tokens {
		if t == decimalWord {
			continue
		}
		out = append(out, Action{Kind: Literal, Value: r.Translate(t)})
	}
	return out
}

// Translate maps a number word to its digits. Other tokens are returned
// unchanged.
func (r *Router) Translate(token string) string {
	if d, ok := r.numerals[token]; ok {
		return d
	}
	return token
}

func (r *Router) digits(token string) (string, bool) {
	d := r.Translate(token)
	return d, isDigits(d)
}

func (r *Router) decimal(tokens []string) (string, bool) {
	var left, right string
	switch {
	case len(tokens) == 3 && tokens[1] == decimalWord:
		left, right = tokens[0], tokens[2]
	case len(tokens) == 1 && strings.Count(tokens[0], ".") == 1:
		left, right, _ = strings.Cut(tokens[0], ".")
	default:
		return "", false
	}
	l, ok := r.digits(left)
	if !ok {
		return "", false
	}
	rt, ok := r.digits(right)
	if !ok {
		return "", false
	}
	return l + "." + rt, true
}

// Recognizers end tokens with sentence marks and may wrap them in quotes.
// Signs, percent and other symbols are part of the value and are kept.
const (
	sentenceMarks = ",.!?;:…"
	quoteMarks    = "\"'“”„«»"
)

// Normalize composes text to NFC, drops combining marks such as niqqud,
// trims quotes and trailing sentence marks from each token and collapses
// whitespace.
func Normalize(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(t, text)
	if err != nil {
		s = norm.NFC.String(text)
	}
	fields := strings.Fields(s)
	out := fields[:0]
	for _, f := range fields {
		f = strings.TrimLeft(f, quoteMarks)
		f = strings.TrimRight(f, sentenceMarks+quoteMarks)
		if f != "" {
			out = append(out, f)
		}
	}
	return strings.Join(out, " ")
}
