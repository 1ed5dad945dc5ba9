// Package drill implements the adaptive times-table session: item selection,
// short-term repeat scheduling, the per-question timer and outcome bookkeeping.
//
// A Session is not safe for concurrent use. The caller owns it and serializes
// every Start, Tick, Press and Stop call; hosts that share it across goroutines
// must guard the whole value with a single mutex.
package drill

import (
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/tuitables/internal/generator"
	"github.com/verte-zerg/tuitables/internal/model"
)

// ShakeWindow is how long a wrong entry is reported as FeedbackWrong.
const ShakeWindow = 450 * time.Millisecond

// Status is the session lifecycle state.
type Status int

const (
	StatusNotStarted Status = iota
	StatusRunning
	StatusFinished
)

// String returns the human-readable name of the status.
func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return "not-started"
	case StatusRunning:
		return "running"
	case StatusFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Phase is the state of the current question.
type Phase int

const (
	// PhasePresented accepts input until a correct entry or the deadline.
	PhasePresented Phase = iota
	// PhaseConfirming shows an accepted answer for the grace window.
	PhaseConfirming
	// PhaseResolved means no question is outstanding.
	PhaseResolved
)

// String returns the human-readable name of the phase.
func (p Phase) String() string {
	switch p {
	case PhasePresented:
		return "presented"
	case PhaseConfirming:
		return "confirming"
	case PhaseResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Resolution is the effect of one key press on the current question.
type Resolution int

const (
	ResolutionNone Resolution = iota
	ResolutionCorrect
	ResolutionIncorrect
)

// Feedback is the visual cue the UI should show at a given moment.
type Feedback int

const (
	FeedbackNone Feedback = iota
	FeedbackCorrect
	FeedbackWrong
)

// Session is the state of one timed practice session.
type Session struct {
	cfg      model.Config
	universe generator.Universe
	gen      *generator.Generator

	id       string
	status   Status
	clock    SessionClock
	timer    *AdaptiveTimer
	queue    *RepeatQueue
	ledger   *FailureLedger
	selector *Selector

	wrongOnce  ItemSet
	wrongTwice ItemSet
	timedOut   ItemSet
	itemStats  map[model.Item]*model.ItemStats

	current    model.Item
	phase      Phase
	phaseAt    time.Time
	entry      string
	accepted   string
	lastMissAt time.Time

	totalQuestions   int
	correctQuestions int
	totalTimeSpent   time.Duration
	endedAt          time.Time
}

// NewSession normalizes the configuration and returns a session ready to Start.
func NewSession(cfg model.Config, gen *generator.Generator) (*Session, error) {
	cfg, err := Normalize(cfg)
	if err != nil {
		return nil, err
	}
	if gen == nil {
		gen = generator.New()
	}
	s := &Session{
		cfg:      cfg,
		universe: generator.Universe{MinTable: cfg.MinTable, MaxTable: cfg.MaxTable},
		gen:      gen,
		phase:    PhaseResolved,
	}
	s.reset()
	return s, nil
}

func (s *Session) reset() {
	s.id = uuid.NewString()
	s.timer = NewAdaptiveTimer(s.cfg.PerQuestion, s.cfg.PerQFloor, s.cfg.PerQCeiling, s.cfg.Policy)
	s.queue = &RepeatQueue{}
	s.ledger = NewFailureLedger()
	s.selector = NewSelector(s.universe, s.gen, s.queue, s.ledger)
	s.wrongOnce = NewItemSet()
	s.wrongTwice = NewItemSet()
	s.timedOut = NewItemSet()
	s.itemStats = map[model.Item]*model.ItemStats{}
	s.clock = SessionClock{}
	s.current = model.Item{}
	s.phase = PhaseResolved
	s.phaseAt = time.Time{}
	s.entry = ""
	s.accepted = ""
	s.lastMissAt = time.Time{}
	s.totalQuestions = 0
	s.correctQuestions = 0
	s.totalTimeSpent = 0
	s.endedAt = time.Time{}
}

// Start begins a fresh session. The per-question budget carries over from a
// previous run of the same Session; everything else is reinitialized. A carry-over
// seed is applied only when its table range matches.
func (s *Session) Start(now time.Time, seed *model.CarryOver) {
	perQ := s.cfg.PerQuestion
	if s.status == StatusFinished {
		perQ = s.timer.Seconds()
	}
	s.reset()
	s.timer = NewAdaptiveTimer(perQ, s.cfg.PerQFloor, s.cfg.PerQCeiling, s.cfg.Policy)
	s.seed(seed)
	s.status = StatusRunning
	s.clock.StartSession(now, time.Duration(s.cfg.TotalSeconds)*time.Second)
	s.nextQuestion(now)
}

func (s *Session) seed(seed *model.CarryOver) {
	if seed == nil || seed.MinTable != s.cfg.MinTable || seed.MaxTable != s.cfg.MaxTable {
		return
	}
	items := s.gen.Shuffle(seed.Items)
	slot := 0
	for _, it := range items {
		if !s.universe.Contains(it) {
			continue
		}
		if s.queue.Push(it, 1+2*slot) {
			slot++
		}
	}
}

// Tick evaluates deadlines at now. It applies at most one outcome per call.
func (s *Session) Tick(now time.Time) {
	if s.status != StatusRunning {
		return
	}
	if s.phase == PhaseConfirming {
		if now.Before(s.phaseAt.Add(s.cfg.Grace)) {
			return
		}
		s.record(true, false, s.phaseAt)
		s.advance(now)
		return
	}
	if s.clock.SessionExpired(now) {
		s.finish(now)
		return
	}
	if s.phase == PhasePresented && s.clock.QuestionExpired(now) {
		s.record(false, true, now)
		s.advance(now)
	}
}

// Stop ends a running session immediately. An answer still in its grace
// window is counted.
func (s *Session) Stop(now time.Time) {
	if s.status != StatusRunning {
		return
	}
	if s.phase == PhaseConfirming {
		s.record(true, false, s.phaseAt)
	}
	s.finish(now)
}

// Press appends a digit to the entry. When the entry reaches the length of the
// product it is compared and cleared.
func (s *Session) Press(digit rune, now time.Time) Resolution {
	if !s.accepting() || digit < '0' || digit > '9' {
		return ResolutionNone
	}
	s.entry += string(digit)
	if len(s.entry) < s.current.Digits() {
		return ResolutionNone
	}
	return s.submit(now)
}

// Backspace removes the last entered digit.
func (s *Session) Backspace() {
	if !s.accepting() || s.entry == "" {
		return
	}
	s.entry = s.entry[:len(s.entry)-1]
}

// Clear empties the entry.
func (s *Session) Clear() {
	if !s.accepting() {
		return
	}
	s.entry = ""
}

func (s *Session) accepting() bool {
	return s.status == StatusRunning && s.phase == PhasePresented
}

func (s *Session) submit(now time.Time) Resolution {
	entry := s.entry
	s.entry = ""
	value, err := strconv.Atoi(entry)
	if err != nil || value != s.current.Product() {
		s.miss(s.current, false)
		s.lastMissAt = now
		return ResolutionIncorrect
	}
	s.accepted = entry
	if s.cfg.Grace <= 0 {
		s.record(true, false, now)
		s.advance(now)
		return ResolutionCorrect
	}
	s.phase = PhaseConfirming
	s.phaseAt = now
	return ResolutionCorrect
}

// record books a resolved question. answeredAt marks when the outcome happened.
func (s *Session) record(correct, timedOut bool, answeredAt time.Time) {
	it := s.current
	duration := s.clock.QuestionElapsed(answeredAt)
	s.totalQuestions++
	s.totalTimeSpent += duration

	st := s.statsFor(it)
	st.Asked++
	st.TimeSpentMs += duration.Milliseconds()

	if correct {
		s.correctQuestions++
		st.Correct++
		s.queue.Remove(it)
	} else {
		s.miss(it, timedOut)
	}
	s.timer.Update(correct, timedOut, duration)
	s.phase = PhaseResolved
	s.phaseAt = answeredAt
}

func (s *Session) miss(it model.Item, timedOut bool) {
	count := s.ledger.Record(it)
	st := s.statsFor(it)
	st.Wrong++
	s.wrongOnce.Add(it)
	if timedOut {
		st.TimedOut++
		s.timedOut.Add(it)
	}
	if count < BanThreshold {
		if !s.queue.Contains(it) {
			s.queue.Push(it, s.gen.RepeatDelay())
		}
		return
	}
	s.wrongTwice.Add(it)
	s.queue.Remove(it)
}

func (s *Session) advance(now time.Time) {
	if s.clock.SessionExpired(now) {
		s.finish(now)
		return
	}
	s.nextQuestion(now)
}

func (s *Session) nextQuestion(now time.Time) {
	s.current = s.selector.Next()
	s.clock.StartQuestion(now, s.timer.Budget())
	s.phase = PhasePresented
	s.phaseAt = now
	s.entry = ""
	s.accepted = ""
	s.lastMissAt = time.Time{}
}

func (s *Session) finish(now time.Time) {
	s.status = StatusFinished
	s.phase = PhaseResolved
	s.phaseAt = now
	s.entry = ""
	s.endedAt = now
}

func (s *Session) statsFor(it model.Item) *model.ItemStats {
	st, ok := s.itemStats[it]
	if !ok {
		st = &model.ItemStats{Item: it}
		s.itemStats[it] = st
	}
	return st
}

// Status returns the lifecycle state.
func (s *Session) Status() Status {
	return s.status
}

// Phase returns the state of the current question.
func (s *Session) Phase() Phase {
	return s.phase
}

// Current returns the item on screen, if any.
func (s *Session) Current() (model.Item, bool) {
	if s.status != StatusRunning {
		return model.Item{}, false
	}
	return s.current, true
}

// Entry returns the digits typed so far.
func (s *Session) Entry() string {
	return s.entry
}

// Accepted returns the correct answer being confirmed, if any.
func (s *Session) Accepted() string {
	if s.phase != PhaseConfirming {
		return ""
	}
	return s.accepted
}

// Feedback reports the visual cue to show at now.
func (s *Session) Feedback(now time.Time) Feedback {
	if s.phase == PhaseConfirming {
		return FeedbackCorrect
	}
	if !s.lastMissAt.IsZero() && now.Sub(s.lastMissAt) < ShakeWindow {
		return FeedbackWrong
	}
	return FeedbackNone
}

// PerQuestion returns the current adaptive budget in seconds.
func (s *Session) PerQuestion() float64 {
	return s.timer.Seconds()
}

// QuestionRemaining returns the time left on the current question.
func (s *Session) QuestionRemaining(now time.Time) time.Duration {
	if s.status != StatusRunning {
		return 0
	}
	return s.clock.QuestionRemaining(now)
}

// SessionRemaining returns the time left in the session.
func (s *Session) SessionRemaining(now time.Time) time.Duration {
	if s.status != StatusRunning {
		return 0
	}
	return s.clock.SessionRemaining(now)
}

// Asked returns the number of resolved questions.
func (s *Session) Asked() int {
	return s.totalQuestions
}

// Correct returns the number of correctly answered questions.
func (s *Session) Correct() int {
	return s.correctQuestions
}

// Failures returns the wrong-attempt count for the item.
func (s *Session) Failures(it model.Item) int {
	return s.ledger.Count(it)
}

// Repeats returns the scheduled repeats in queue order.
func (s *Session) Repeats() []ScheduledRepeat {
	return s.queue.Entries()
}

// Config returns the normalized configuration.
func (s *Session) Config() model.Config {
	return s.cfg
}

// Summary returns the derived statistics of the session.
func (s *Session) Summary() model.Summary {
	items := make([]model.ItemStats, 0, len(s.itemStats))
	for _, st := range s.itemStats {
		items = append(items, *st)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Item.Less(items[j].Item) })
	return model.Summary{
		SessionID:        s.id,
		User:             s.cfg.User,
		StartedAt:        s.clock.SessionStart,
		EndedAt:          s.endedAt,
		MinTable:         s.cfg.MinTable,
		MaxTable:         s.cfg.MaxTable,
		TotalSeconds:     s.cfg.TotalSeconds,
		TotalQuestions:   s.totalQuestions,
		CorrectQuestions: s.correctQuestions,
		TotalTimeSpent:   s.totalTimeSpent.Seconds(),
		FinalPerQ:        s.timer.Seconds(),
		WrongOnce:        s.wrongOnce.Sorted(),
		WrongTwice:       s.wrongTwice.Sorted(),
		TimedOut:         s.timedOut.Sorted(),
		Items:            items,
	}
}
