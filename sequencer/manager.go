package sequencer

import (
	"context"
	"sync"
	"time"

	"go-arp/debug"
	"go-arp/midi"
)

// Settings are the transport parameters of a Manager
type Settings struct {
	Tempo       int // bpm
	Gate        int // percent of the step
	Dividend    int
	Denominator int
	RootNote    int // added to every lane note
	InputBase   uint8
}

// DefaultSettings is 120bpm sixteenths, 50% gate, rooted at middle C
func DefaultSettings() Settings {
	return Settings{
		Tempo:       120,
		Gate:        50,
		Dividend:    1,
		Denominator: 16,
		RootNote:    60,
		InputBase:   48,
	}
}

// LaneView is a read-only copy of a lane for rendering
type LaneView struct {
	Notes     []Note
	Index     int
	Current   Note
	Mode      Mode
	Repeat    int
	Wrap      bool
	Transpose int
	MimicStep int
	Queued    int
}

// Snapshot is a consistent copy of manager state
type Snapshot struct {
	Lanes    []LaneView
	Focused  int
	Playing  bool
	Tick     int64
	Settings Settings
	Port     string
	Last     []midi.Event // most recent events, oldest first
	Err      error
}

const lastEventsKept = 8

// Manager is the host transport: it advances the pattern once per step and
// hands every sounding note to the scheduler.
type Manager struct {
	mu       sync.Mutex
	pattern  *Pattern
	sched    *midi.NoteScheduler
	outputs  *midi.Outputs
	settings Settings
	playing  bool
	tick     int64
	focused  int
	lastErr  error

	eventsMu sync.Mutex
	last     []midi.Event

	interruptChan chan struct{} // wake Run when play state changes

	// Notify TUI of updates
	UpdateChan chan struct{}
}

// NewManager creates a manager over pattern. sched may be nil, in which case
// notes are computed but nothing is sent.
func NewManager(pattern *Pattern, settings Settings) *Manager {
	m := &Manager{
		pattern:       pattern,
		settings:      settings,
		interruptChan: make(chan struct{}, 1),
		UpdateChan:    make(chan struct{}, 1),
	}
	return m
}

// SetScheduler wires the note scheduler. Events it sends show up in Snapshot.Last.
func (m *Manager) SetScheduler(s *midi.NoteScheduler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sched = s
}

// Observe records a sent event (pass to midi.WithObserver)
func (m *Manager) Observe(e midi.Event) {
	m.eventsMu.Lock()
	m.last = append(m.last, e)
	if len(m.last) > lastEventsKept {
		m.last = m.last[len(m.last)-lastEventsKept:]
	}
	m.eventsMu.Unlock()
}

// SetOutputs sets the port set and points the scheduler at its selection
func (m *Manager) SetOutputs(o *midi.Outputs) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outputs = o
	if m.sched != nil && o != nil {
		m.sched.SetOutput(o.Selected().Send)
	}
}

// NextOutput cycles the output port. Pending note-offs stay on the old port.
func (m *Manager) NextOutput() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outputs == nil {
		return
	}
	p := m.outputs.Next()
	if m.sched != nil {
		m.sched.SetOutput(p.Send)
	}
	debug.Log("ports", "output -> %s", p.Name)
	m.notifyUpdate()
}

// Play starts playback from the top of every lane
func (m *Manager) Play() {
	m.mu.Lock()
	if m.playing {
		m.mu.Unlock()
		return
	}
	m.playing = true
	m.tick = 0
	m.pattern.Reset()
	m.mu.Unlock()

	m.interrupt()
	m.notifyUpdate()
}

// Stop halts playback. Already scheduled note-offs still fire.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.playing {
		m.mu.Unlock()
		return
	}
	m.playing = false
	m.pattern.Reset()
	m.mu.Unlock()

	m.interrupt()
	m.notifyUpdate()
}

func (m *Manager) TogglePlay() {
	if m.IsPlaying() {
		m.Stop()
	} else {
		m.Play()
	}
}

func (m *Manager) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

// interrupt signals the run loop to recalculate
func (m *Manager) interrupt() {
	select {
	case m.interruptChan <- struct{}{}:
	default:
	}
}

// Run drives Tick at the step rate while playing (blocking - run in goroutine)
func (m *Manager) Run(ctx context.Context) {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	active := false
	for {
		select {
		case <-ctx.Done():
			m.Stop()
			return
		case <-m.interruptChan:
			playing := m.IsPlaying()
			if playing && !active {
				active = true
				timer.Reset(0)
			} else if !playing && active {
				active = false
				timer.Stop()
			}
		case <-timer.C:
			if !active {
				continue
			}
			m.Tick()
			timer.Reset(m.StepDuration())
		}
	}
}

// StepDuration is the length of one tick at the current tempo and division
func (m *Manager) StepDuration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stepDuration()
}

func (m *Manager) stepDuration() time.Duration {
	s := m.settings
	return StepDuration(s.Tempo, s.Dividend, s.Denominator)
}

// Tick advances every lane once and triggers the resulting notes.
// It returns the absolute notes produced (rests for silent lanes).
func (m *Manager) Tick() []Note {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.playing {
		return nil
	}

	notes, err := m.pattern.Tick()
	if err != nil {
		m.lastErr = err
		debug.Log("tick", "tick %d: %v", m.tick, err)
		m.notifyUpdate()
		return nil
	}
	m.lastErr = nil

	dur := m.stepDuration()
	out := make([]Note, len(notes))
	for i, n := range notes {
		if !n.OK || m.pattern.Lanes[i].Mode() == ModeMute {
			out[i] = Rest
			continue
		}
		abs := n.Transpose(m.settings.RootNote)
		out[i] = abs
		if m.sched == nil {
			continue
		}
		if err := m.sched.Trigger(abs.Num, dur, m.settings.Gate); err != nil {
			m.lastErr = err
			debug.Log("tick", "lane %d trigger %d: %v", i, abs.Num, err)
		}
	}
	debug.LogEvery(64, "tick", "tick=%d notes=%v", m.tick, out)
	m.tick++
	m.notifyUpdate()
	return out
}

// SetTempo sets the BPM
func (m *Manager) SetTempo(bpm int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if bpm < 20 {
		bpm = 20
	}
	if bpm > 300 {
		bpm = 300
	}
	m.settings.Tempo = bpm
}

// SetGate sets the gate percentage (1-100)
func (m *Manager) SetGate(pct int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if pct < 1 {
		pct = 1
	}
	if pct > 100 {
		pct = 100
	}
	m.settings.Gate = pct
}

// NextDivision cycles the denominator of the note length
func (m *Manager) NextDivision() {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := Denominators[0]
	for i, d := range Denominators {
		if d == m.settings.Denominator {
			next = Denominators[(i+1)%len(Denominators)]
			break
		}
	}
	m.settings.Denominator = next
}

// NextDividend cycles the numerator of the note length
func (m *Manager) NextDividend() {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := Dividends[0]
	for i, d := range Dividends {
		if d == m.settings.Dividend {
			next = Dividends[(i+1)%len(Dividends)]
			break
		}
	}
	m.settings.Dividend = next
}

// Settings returns the current transport settings
func (m *Manager) Settings() Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// Focus management

func (m *Manager) SetFocused(lane int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if lane >= 0 && lane < len(m.pattern.Lanes) {
		m.focused = lane
	}
}

func (m *Manager) Focused() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.focused
}

// WithLane runs fn on a lane under the manager lock. Returns fn's error, or
// nothing if the lane doesn't exist.
func (m *Manager) WithLane(lane int, fn func(s *Step) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.pattern.Lane(lane)
	if s == nil {
		return nil
	}
	err := fn(s)
	m.notifyUpdate()
	return err
}

// HandleNote queues the played note on the focused lane (live trigger)
func (m *Manager) HandleNote(evt midi.NoteEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := midi.QueueIndex(evt.Note, m.settings.InputBase)
	s := m.pattern.Lane(m.focused)
	if idx < 0 || s == nil {
		return
	}
	s.Queue(idx)
	debug.Log("input", "note %d -> queue lane %d index %d", evt.Note, m.focused, idx)
	m.notifyUpdate()
}

// ListenInput feeds an input's notes into HandleNote until it closes
func (m *Manager) ListenInput(ti *midi.TriggerInput) {
	go func() {
		for evt := range ti.NoteEvents() {
			m.HandleNote(evt)
		}
	}()
}

// Snapshot copies the state for rendering
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	snap := Snapshot{
		Focused:  m.focused,
		Playing:  m.playing,
		Tick:     m.tick,
		Settings: m.settings,
		Err:      m.lastErr,
	}
	if m.outputs != nil {
		snap.Port = m.outputs.Selected().Name
	}
	for _, s := range m.pattern.Lanes {
		ms := s.ModeSpecific()
		snap.Lanes = append(snap.Lanes, LaneView{
			Notes:     s.Notes(),
			Index:     s.Index(),
			Current:   s.Current(),
			Mode:      s.Mode(),
			Repeat:    ms.Repeat,
			Wrap:      ms.Wrap,
			Transpose: ms.Transpose,
			MimicStep: ms.MimicStep,
			Queued:    s.Queued(),
		})
	}
	m.mu.Unlock()

	m.eventsMu.Lock()
	snap.Last = append([]midi.Event(nil), m.last...)
	m.eventsMu.Unlock()
	return snap
}

// notifyUpdate nudges the TUI
func (m *Manager) notifyUpdate() {
	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
}
