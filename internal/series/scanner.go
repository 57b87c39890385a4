package series

import (
	"errors"
	"sync/atomic"
)

// ErrScanInProgress is returned by Scanner.Start while a scan is running.
var ErrScanInProgress = errors.New("a scan is already in progress")

// State is the lifecycle of a Scanner.
type State int32

const (
	StateIdle State = iota
	StateScanning
	StateScanned
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateScanning:
		return "scanning"
	case StateScanned:
		return "scanned"
	default:
		return "idle"
	}
}

// Msg is a message sent by a background scan.
type Msg interface {
	scanMsg()
}

// StartedMsg is sent once the number of files to examine is known.
type StartedMsg struct {
	Leaf  string
	Total int
}

// ProgressMsg is sent after each file is examined.
type ProgressMsg struct {
	Progress
}

// DoneMsg is the last message of a scan. Table is only ever delivered here, complete.
type DoneMsg struct {
	Leaf  string
	Table *Table
	Err   error
}

func (StartedMsg) scanMsg()  {}
func (ProgressMsg) scanMsg() {}
func (DoneMsg) scanMsg()     {}

// Scanner runs at most one Index call at a time on a background goroutine.
type Scanner struct {
	reader MetadataReader
	busy   atomic.Bool
	state  atomic.Int32
}

// NewScanner creates a scanner reading metadata with reader.
func NewScanner(reader MetadataReader) *Scanner {
	return &Scanner{reader: reader}
}

// State returns the current lifecycle state.
func (s *Scanner) State() State {
	return State(s.state.Load())
}

// Start indexes leaf (relative folders computed against root) in the background. The returned
// channel yields a StartedMsg, one ProgressMsg per file and a final DoneMsg, then is closed.
func (s *Scanner) Start(root, leaf string) (<-chan Msg, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrScanInProgress
	}
	s.state.Store(int32(StateScanning))

	// Unbuffered: the scanner stays busy until the receiver has taken DoneMsg.
	ch := make(chan Msg)
	go func() {
		defer close(ch)

		table, err := Index(root, leaf, s.reader, func(p Progress) {
			if p.Done == 0 {
				ch <- StartedMsg{Leaf: leaf, Total: p.Total}
				return
			}
			ch <- ProgressMsg{Progress: p}
		})

		if err != nil {
			s.state.Store(int32(StateIdle))
		} else {
			s.state.Store(int32(StateScanned))
		}
		ch <- DoneMsg{Leaf: leaf, Table: table, Err: err}
		s.busy.Store(false)
	}()
	return ch, nil
}

// Wait drains ch and returns the final table. It is a convenience for non-interactive callers.
func Wait(ch <-chan Msg, onProgress func(Progress)) (*Table, error) {
	var done DoneMsg
	for msg := range ch {
		switch m := msg.(type) {
		case StartedMsg:
			if onProgress != nil {
				onProgress(Progress{Total: m.Total})
			}
		case ProgressMsg:
			if onProgress != nil {
				onProgress(m.Progress)
			}
		case DoneMsg:
			done = m
		}
	}
	return done.Table, done.Err
}
