// Package chat is the cosmetic opponent chat panel: canned responses served
// in rotation, with a few keyword-triggered replies. Nothing here talks to
// the network.
package chat

import (
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"
)

// Message is one chat line for the UI.
type Message struct {
	Author string `json:"author"`
	Text   string `json:"text"`
	SentAt string `json:"sent_at"`
}

var cannedReplies = []string{
	"Interesting move.",
	"Hmm, let me think about that.",
	"I did not see that coming.",
	"Bold choice!",
	"Are you sure about this one?",
	"The engine approves. Probably.",
	"A classic continuation.",
}

// Checked in order; the first whole-word match wins.
var keywordReplies = []struct {
	keyword string
	reply   string
}{
	{"hello", "Hello %s! Good luck."},
	{"hi", "Hello %s! Good luck."},
	{"gg", "Good game, %s!"},
	{"thanks", "You're welcome."},
	{"help", "Try the hint button if you are stuck."},
}

// Service produces canned opponent replies. Safe for concurrent use.
type Service struct {
	mu   sync.Mutex
	next int
	now  func() time.Time
}

// New creates a chat service.
func New() *Service {
	return &Service{now: time.Now}
}

// SetNow replaces the clock source, used by tests.
func (s *Service) SetNow(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Reply answers a player message with a canned response. Keyword matches
// win over the rotation.
func (s *Service) Reply(playerName, text string) Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	reply := ""
	words := messageWords(text)
	for _, kr := range keywordReplies {
		if words[kr.keyword] {
			reply = kr.reply
			break
		}
	}
	if reply == "" {
		reply = cannedReplies[s.next%len(cannedReplies)]
		s.next++
	}
	if strings.Contains(reply, "%s") {
		name := playerName
		if name == "" {
			name = "Player"
		}
		reply = fmt.Sprintf(reply, name)
	}

	return Message{
		Author: "Opponent",
		Text:   reply,
		SentAt: s.now().UTC().Format(time.RFC3339),
	}
}

// messageWords lowercases the text and splits it into whole words, so "hi"
// inside "this" never counts as a greeting.
func messageWords(text string) map[string]bool {
	words := map[string]bool{}
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, w := range fields {
		words[w] = true
	}
	return words
}
