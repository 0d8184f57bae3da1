package session

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Chuan-Peng-Lab/trialkit/internal/display"
	"github.com/Chuan-Peng-Lab/trialkit/internal/engine"
	"github.com/Chuan-Peng-Lab/trialkit/internal/plugins/htmlresponse"
)

type Status string

const (
	StatusIdle     Status = "Idle"
	StatusRunning  Status = "Running"
	StatusFinished Status = "Finished"
	StatusAborted  Status = "Aborted"
)

// Session walks one participant through a timeline of trials. It owns the
// participant's engine and display surface; trial completion callbacks
// arrive on the engine dispatch and drive the next trial from there.
type Session struct {
	Code      string
	Token     string
	CreatedAt time.Time

	eng  *engine.Engine
	surf *display.Surface
	log  zerolog.Logger

	mu      sync.Mutex
	status  Status
	trials  []htmlresponse.Params
	ix      int
	results []htmlresponse.Result

	onTrialDone func(index int, r htmlresponse.Result)
	onFinished  func(results []htmlresponse.Result)

	exportFile string
}

func newSession(code, token string, trials []htmlresponse.Params, exportFile string) *Session {
	return &Session{
		Code:       code,
		Token:      token,
		CreatedAt:  time.Now().UTC(),
		eng:        engine.New(),
		surf:       display.New(),
		log:        log.With().Str("session", code).Logger(),
		status:     StatusIdle,
		trials:     trials,
		exportFile: exportFile,
	}
}

func (s *Session) Engine() *engine.Engine {
	return s.eng
}

func (s *Session) Surface() *display.Surface {
	return s.surf
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Index returns the current trial position and timeline length.
func (s *Session) Index() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ix, len(s.trials)
}

func (s *Session) Results() []htmlresponse.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]htmlresponse.Result, len(s.results))
	copy(out, s.results)
	return out
}

// Snapshot reads the current display HTML and trial position under the
// engine dispatch, so a running trial cannot mutate the tree mid-read.
// Must not be called from engine callbacks; those already hold dispatch.
func (s *Session) Snapshot() (html string, ix, total int) {
	s.eng.Do(func() {
		html = s.surf.Root().InnerHTML()
		ix, total = s.Index()
	})
	return
}

// OnTrialDone and OnFinished must be set before Start; callbacks arrive on
// the engine dispatch.
func (s *Session) OnTrialDone(fn func(index int, r htmlresponse.Result)) {
	s.onTrialDone = fn
}

func (s *Session) OnFinished(fn func(results []htmlresponse.Result)) {
	s.onFinished = fn
}

// Start runs the first trial. Further trials chain from completion
// callbacks until the timeline is exhausted.
func (s *Session) Start() error {
	s.mu.Lock()
	if s.status != StatusIdle {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.status = StatusRunning
	s.mu.Unlock()

	s.log.Info().Int("trials", len(s.trials)).Msg("session started")
	s.eng.Do(s.runCurrent)
	return nil
}

// runCurrent requires the engine dispatch (Start and trialDone hold it).
func (s *Session) runCurrent() {
	s.mu.Lock()
	p := s.trials[s.ix]
	ix := s.ix
	s.mu.Unlock()

	tr := htmlresponse.New(s.eng, p).WithLogger(s.log)
	if err := tr.Run(s.surf.Root(), s.trialDone); err != nil {
		s.log.Error().Err(err).Int("trial", ix).Msg("trial configuration invalid, aborting session")
		s.mu.Lock()
		s.status = StatusAborted
		cb := s.onFinished
		s.mu.Unlock()
		if cb != nil {
			cb(s.Results())
		}
	}
}

func (s *Session) trialDone(r htmlresponse.Result) {
	s.mu.Lock()
	ix := s.ix
	s.results = append(s.results, r)
	s.ix++
	more := s.ix < len(s.trials)
	if !more {
		s.status = StatusFinished
	}
	cbTrial := s.onTrialDone
	cbFin := s.onFinished
	s.mu.Unlock()

	if cbTrial != nil {
		cbTrial(ix, r)
	}
	if more {
		s.runCurrent()
		return
	}

	s.log.Info().Int("results", ix+1).Msg("session finished")
	if s.exportFile != "" {
		if err := ExportResults(s, s.exportFile); err != nil {
			s.log.Error().Err(err).Msg("results export failed")
		}
	}
	if cbFin != nil {
		cbFin(s.Results())
	}
}

// Close cancels anything still pending on the session's engine. Used when
// a client disconnects mid-trial.
func (s *Session) Close() {
	s.eng.CancelAll()
}
