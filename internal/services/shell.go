package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-reviewer/internal/metrics"
	"alfredoptarigan/resume-reviewer/internal/models"
)

var (
	// ErrNoFile is returned when the form was submitted without a resume.
	ErrNoFile = errors.New("please select a resume file to upload")
	// ErrReviewInProgress is returned when the form is submitted again
	// before the previous review finished.
	ErrReviewInProgress = errors.New("a review is already in progress")
)

type ShellOptions struct {
	RequestTimeout time.Duration
	SessionTTL     time.Duration
	Concurrency    int
	SweepInterval  time.Duration
}

// Shell owns every browser session and wires dispatch outcomes into them.
type Shell struct {
	client ReviewClient
	opts   ShellOptions
	log    *zap.Logger
	worker Worker
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewShell(client ReviewClient, opts ShellOptions, log *zap.Logger) *Shell {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 90 * time.Second
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * time.Minute
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = opts.SessionTTL / 2
	}

	s := &Shell{
		client:   client,
		opts:     opts,
		log:      log,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
	s.worker = NewWorker(s, opts.Concurrency, opts.SweepInterval, log)
	return s
}

func (s *Shell) Start(ctx context.Context) {
	s.worker.Start(ctx)
}

func (s *Shell) Stop() {
	s.worker.Stop()
}

// Session returns the session for id, creating it when id is empty or
// unknown. The returned session's ID may differ from id.
func (s *Shell) Session(id string) *Session {
	now := s.now()

	if id != "" {
		s.mu.RLock()
		sess, ok := s.sessions[id]
		s.mu.RUnlock()
		if ok {
			sess.touch(now)
			return sess
		}
	}

	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess
	}
	sess := newSession(id, now)
	s.sessions[id] = sess
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	return sess
}

// Submit starts a review for sess. A missing file is rejected before any
// state changes; a session that is already submitting is rejected as the
// form would be disabled.
func (s *Shell) Submit(sess *Session, req *models.UploadRequest) error {
	if !req.HasFile() {
		return ErrNoFile
	}
	if state, _ := sess.Snapshot(); state.Loading() {
		return ErrReviewInProgress
	}
	s.dispatch(sess, req)
	return nil
}

// dispatch clears the session, queues the request and returns. It does not
// check for an in-flight request.
func (s *Shell) dispatch(sess *Session, req *models.UploadRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.RequestTimeout)
	gen := sess.begin(FormState{FileName: req.FileName, JobDescription: req.JobDescription}, cancel, s.now())

	job := ReviewJob{
		Session: sess,
		Gen:     gen,
		Request: req,
		ctx:     ctx,
		cancel:  cancel,
	}

	if !s.worker.EnqueueJob(job) {
		cancel()
		sess.fail(gen, "The review service is busy or shutting down. Please try again.")
		metrics.ReviewSubmissions.WithLabelValues("failure").Inc()
	}
}

// Process implements JobProcessor. The session always leaves Submitting,
// whatever happens inside the call.
func (s *Shell) Process(job ReviewJob) {
	var (
		result *models.ReviewResult
		err    error
	)
	start := s.now()

	defer func() {
		job.cancel()
		if r := recover(); r != nil {
			err = fmt.Errorf("review dispatch panicked: %v", r)
		}
		if err == nil && result == nil {
			err = errors.New("review api returned an empty response")
		}

		metrics.DispatchDuration.Observe(s.now().Sub(start).Seconds())

		if err != nil {
			message := DisplayMessage(err, s.opts.RequestTimeout)
			s.log.Error("error reviewing resume",
				zap.String("session", job.Session.ID),
				zap.String("file", job.Request.FileName),
				zap.Error(err),
			)
			job.Session.fail(job.Gen, message)
			metrics.ReviewSubmissions.WithLabelValues("failure").Inc()
			return
		}

		job.Session.succeed(job.Gen, result)
		metrics.ReviewSubmissions.WithLabelValues("success").Inc()
	}()

	if err = job.ctx.Err(); err != nil {
		return
	}
	result, err = s.client.Review(job.ctx, job.Request)
}

// PruneIdle implements JobProcessor. Sessions unseen for longer than the TTL
// are dropped and their in-flight requests aborted.
func (s *Shell) PruneIdle(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := 0
	for id, sess := range s.sessions {
		if sess.idleSince(now) > s.opts.SessionTTL {
			sess.Abort()
			delete(s.sessions, id)
			pruned++
		}
	}
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	return pruned
}

// RequestTimeout is the deadline applied to every dispatch.
func (s *Shell) RequestTimeout() time.Duration {
	return s.opts.RequestTimeout
}
