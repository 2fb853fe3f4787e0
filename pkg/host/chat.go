package host

import "strings"

// PlayerLink is the payload of a clickable player name in chat.
type PlayerLink struct {
	Name    string
	WorldID uint32
}

// Segment is a run of chat text. When Player is set the segment renders as a
// clickable link to that player and Text is its label.
type Segment struct {
	Text   string
	Player *PlayerLink
}

// ChatLine is a single rich-text chat message.
type ChatLine struct {
	Segments []Segment
}

// TextLine builds a chat line holding plain text only.
func TextLine(text string) ChatLine {
	return ChatLine{Segments: []Segment{{Text: text}}}
}

// Append adds plain text to the line, merging with a trailing text segment.
func (l *ChatLine) Append(text string) {
	if text == "" {
		return
	}
	if n := len(l.Segments); n > 0 && l.Segments[n-1].Player == nil {
		l.Segments[n-1].Text += text
		return
	}
	l.Segments = append(l.Segments, Segment{Text: text})
}

// AppendLink adds a player link segment.
func (l *ChatLine) AppendLink(link PlayerLink) {
	l.Segments = append(l.Segments, Segment{Text: link.Name, Player: &link})
}

// String returns the line as plain text.
func (l ChatLine) String() string {
	var sb strings.Builder
	for _, s := range l.Segments {
		sb.WriteString(s.Text)
	}
	return sb.String()
}
