// Package domain defines the core data types shared across the pipeline.
package domain

import "time"

// Question is one listing item with its answers, as observed on the page.
// Optional fields are pointers; nil means the source did not carry the value.
// Vote and view counts stay in their normalized textual form until the store
// write boundary so the record remains a faithful capture of the page.
type Question struct {
	ExternalID *int64
	Title      string
	Tags       []string
	Votes      string
	Views      string
	Username   string
	AskedAt    *time.Time
	DetailURL  string
	Answers    []Answer
}

// Answer is one answer on a question's detail page.
type Answer struct {
	ExternalID *int64
	Body       string
	Username   string
	Votes      string
	AnsweredAt *time.Time
}
