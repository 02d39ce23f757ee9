// Package model defines the domain types used across the application.
package model

import "time"

// DateLayout is the DD-MM-YYYY form used for day keys and file names.
const DateLayout = "02-01-2006"

// TimestampLayout is the DD-MM-YYYY HH:MM:SS form stored on posts.
const TimestampLayout = "02-01-2006 15:04:05"

// SourceTelegram is the constant source tag stored on every post.
const SourceTelegram = "Telegram"

// KeywordGroup is one line of the keyword file. A single term matches on its
// own; several terms must all be present.
type KeywordGroup []string

// Vocabulary is the ordered list of keyword groups loaded for a run.
type Vocabulary []KeywordGroup

// Source is a configured channel to scan.
type Source struct {
	ID   int64
	Name string
}

// RawMessage is a message pulled from a source stream.
type RawMessage struct {
	Timestamp time.Time
	Text      string
	SourceID  int64
}

// Post is a matched message persisted in a daily collection.
type Post struct {
	ID              int64    `json:"post_id"`
	Date            string   `json:"date"`
	Text            string   `json:"text"`
	Source          string   `json:"source"`
	GroupName       string   `json:"group_name"`
	MatchedKeywords []string `json:"matched_keywords"`
	Link            *string  `json:"link"`
}

// Window is the time range a message must fall into to be eligible.
type Window struct {
	From time.Time
	To   time.Time
}

// TrailingWindow returns the window of the given length ending at now.
func TrailingWindow(now time.Time, d time.Duration) Window {
	return Window{From: now.Add(-d), To: now}
}

// DayKey returns the UTC calendar date of t in DD-MM-YYYY form.
func DayKey(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// Extraction is one row produced by the AI analysis pass.
type Extraction struct {
	Product     string
	Description string
	Price       string
	Relevance   string
	Link        string
}
