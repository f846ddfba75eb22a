package model

import (
	"strings"
	"time"
)

// Comment is a single crowd-sourced snippet about a slang term
type Comment struct {
	User string `json:"user" yaml:"user"`
	Text string `json:"text" yaml:"text"`
	Time string `json:"time,omitempty" yaml:"time,omitempty"` // ISO date or RFC3339, empty when unknown
}

// timeLayouts are tried in order when parsing Comment.Time
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Timestamp parses the comment time. ok is false when the comment has no
// usable timestamp.
func (c Comment) Timestamp() (t time.Time, ok bool) {
	raw := strings.TrimSpace(c.Time)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}

// Period is a source-provided chapter of a term's meaning. It is not the
// same thing as a temporal bucket on the timeline.
type Period struct {
	TimeRange string    `json:"timeRange" yaml:"timeRange"`
	Meaning   string    `json:"meaning" yaml:"meaning"`
	Origin    string    `json:"origin" yaml:"origin"`
	Comments  []Comment `json:"comments" yaml:"comments"`
}

// SlangTerm is one term with its meaning history
type SlangTerm struct {
	Term           string   `json:"term" yaml:"term"`
	CurrentMeaning string   `json:"currentMeaning" yaml:"currentMeaning"`
	Periods        []Period `json:"periods" yaml:"periods"`
	IsCommitted    bool     `json:"isCommitted" yaml:"isCommitted"`
}

// Comments flattens all period comments into one working set, in source order
func (s SlangTerm) Comments() []Comment {
	var all []Comment
	for _, p := range s.Periods {
		all = append(all, p.Comments...)
	}
	return all
}

// CommentCount returns the number of comments across all periods
func (s SlangTerm) CommentCount() int {
	n := 0
	for _, p := range s.Periods {
		n += len(p.Comments)
	}
	return n
}

// NormalizeTerm lower-cases and trims a term so it can be used as a key
func NormalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// Analysis is the meaning history returned by an LLM provider, before
// comments are attached to its periods.
type Analysis struct {
	CurrentMeaning string   `json:"currentMeaning"`
	Periods        []Period `json:"periods"`
}
