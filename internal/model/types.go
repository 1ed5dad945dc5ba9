// Package model defines shared data structures.
package model

import (
	"fmt"
	"time"
)

// Multipliers is the fixed range of the right-hand factor.
const (
	MinMultiplier = 1
	MaxMultiplier = 12
)

// Item is a single a × b fact. Order matters: 3×4 and 4×3 are distinct items.
type Item struct {
	A int `json:"a"`
	B int `json:"b"`
}

// Product returns a*b.
func (it Item) Product() int {
	return it.A * it.B
}

// Digits returns the number of decimal digits in the product.
func (it Item) Digits() int {
	p := it.Product()
	if p < 0 {
		p = -p
	}
	n := 1
	for p >= 10 {
		p /= 10
		n++
	}
	return n
}

// String renders the item as it is presented.
func (it Item) String() string {
	return fmt.Sprintf("%d × %d", it.A, it.B)
}

// Less orders items by A then B.
func (it Item) Less(other Item) bool {
	if it.A == other.A {
		return it.B < other.B
	}
	return it.A < other.A
}

// TimerPolicy selects how the per-question budget adapts.
type TimerPolicy string

const (
	// PolicyBand speeds up under a third of the budget and slows down above two thirds.
	PolicyBand TimerPolicy = "band"
	// PolicyHalf speeds up under half of the budget and only slows down on misses.
	PolicyHalf TimerPolicy = "half"
)

// Config defines practice settings.
type Config struct {
	User         string
	MinTable     int
	MaxTable     int
	PerQuestion  float64
	PerQFloor    float64
	PerQCeiling  float64
	TotalSeconds int
	Policy       TimerPolicy
	CarryOver    bool
	Grace        time.Duration
	WebhookURL   string
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	User        string
	Since       *time.Time
	Last        int
	CurveWindow int
	Facts       []Item
}

// CarryOver seeds a session with items missed in an earlier session.
// It only applies when the table range matches.
type CarryOver struct {
	MinTable int
	MaxTable int
	Items    []Item
}

// ItemStats captures per-item results for one session.
type ItemStats struct {
	Item        Item
	Asked       int
	Correct     int
	Wrong       int
	TimedOut    int
	TimeSpentMs int64
}

// Summary is the end-of-session hand-off consumed by reporting and notification.
type Summary struct {
	SessionID        string      `json:"session_id"`
	User             string      `json:"user"`
	StartedAt        time.Time   `json:"started_at"`
	EndedAt          time.Time   `json:"ended_at"`
	MinTable         int         `json:"min_table"`
	MaxTable         int         `json:"max_table"`
	TotalSeconds     int         `json:"total_seconds"`
	TotalQuestions   int         `json:"total_questions"`
	CorrectQuestions int         `json:"correct_questions"`
	TotalTimeSpent   float64     `json:"total_time_spent"`
	FinalPerQ        float64     `json:"final_per_q"`
	WrongOnce        []Item      `json:"wrong_once"`
	WrongTwice       []Item      `json:"wrong_twice"`
	TimedOut         []Item      `json:"timed_out"`
	Items            []ItemStats `json:"-"`
}

// Accuracy returns the share of correct questions in [0,1].
func (s Summary) Accuracy() float64 {
	if s.TotalQuestions == 0 {
		return 0
	}
	return float64(s.CorrectQuestions) / float64(s.TotalQuestions)
}

// AverageTime returns the mean seconds spent per question.
func (s Summary) AverageTime() float64 {
	if s.TotalQuestions == 0 {
		return 0
	}
	return s.TotalTimeSpent / float64(s.TotalQuestions)
}

// SessionAggregate summarizes a stored session for reporting.
type SessionAggregate struct {
	SessionID   int64
	EndedAt     time.Time
	Questions   int
	Correct     int
	TimeSpentMs int64
	FinalPerQ   float64
}

// ItemAggregate aggregates item stats across sessions.
type ItemAggregate struct {
	Item        Item
	Asked       int
	Correct     int
	Wrong       int
	TimedOut    int
	TimeSpentMs int64
}
