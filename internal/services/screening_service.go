package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
)

// ScreeningSession is one browser's page. mu serializes every event applied to it.
type ScreeningSession struct {
	ID string
	// StagingKey names this incarnation's upload directory. A session recreated
	// under the same cookie never shares files with the one it replaced.
	StagingKey string

	mu   sync.Mutex
	page *ScreeningPage
	// staging counts uploads being written outside mu; sweep waits for zero.
	staging int
	closed  bool
}

type ScreeningService interface {
	Start(ctx context.Context)
	Stop()
	Snapshot(sessionID string) PageSnapshot
	AddFiles(sessionID string, slot models.SlotKind, files []*multipart.FileHeader, dropped bool)
	RemoveFile(sessionID string, slot models.SlotKind, index int)
	Submit(sessionID string) error
	Reset(sessionID string)
	HandleJob(ctx context.Context, job ScreeningJob)
}

type ScreeningServiceConfig struct {
	ResumeCapacity    int
	Timeout           time.Duration
	SessionTTL        time.Duration
	CleanupInterval   time.Duration
	WorkerConcurrency int
	WorkerQueueSize   int
}

type screeningService struct {
	client   ScreeningClient
	storage  StorageService
	runRepo  repositories.RunRepository
	sessions repositories.SessionRepository[*ScreeningSession]
	worker   Worker
	cfg      ScreeningServiceConfig
}

// NewScreeningService wires sessions, staging and the dispatch worker. runRepo may be nil.
func NewScreeningService(
	client ScreeningClient,
	storage StorageService,
	runRepo repositories.RunRepository,
	cfg ScreeningServiceConfig,
) ScreeningService {
	s := &screeningService{
		client:  client,
		storage: storage,
		runRepo: runRepo,
		cfg:     cfg,
	}

	s.sessions = repositories.NewSessionRepository(cfg.SessionTTL, cfg.CleanupInterval, s.evictSession)
	s.worker = NewWorker(s.HandleJob, cfg.WorkerConcurrency, cfg.WorkerQueueSize)

	return s
}

func (s *screeningService) Start(ctx context.Context) {
	s.worker.Start(ctx)
}

func (s *screeningService) Stop() {
	s.worker.Stop()
}

func (s *screeningService) Snapshot(sessionID string) PageSnapshot {
	sess := s.lockSession(sessionID)
	defer sess.mu.Unlock()

	return sess.page.Snapshot()
}

// AddFiles writes uploads outside the session lock. While staging is non-zero no
// sweep runs, so files not yet in a slot stay on disk.
func (s *screeningService) AddFiles(sessionID string, slot models.SlotKind, files []*multipart.FileHeader, dropped bool) {
	for {
		sess := s.lockSession(sessionID)
		sess.staging++
		sess.mu.Unlock()

		batch := s.stage(sess, files)

		sess.mu.Lock()
		sess.staging--
		if sess.closed {
			// evicted mid-upload; stage again into the session that replaced it
			sess.mu.Unlock()
			if err := s.storage.DeleteSession(sess.StagingKey); err != nil {
				log.Warn().Err(err).Str("session", sess.ID).Msg("⚠️  Failed to delete session files")
			}
			continue
		}

		if dropped {
			sess.page.DropFiles(slot, batch)
		} else {
			sess.page.AddFiles(slot, batch)
		}
		s.sweep(sess)
		sess.mu.Unlock()
		return
	}
}

func (s *screeningService) stage(sess *ScreeningSession, files []*multipart.FileHeader) []models.FileHandle {
	batch := make([]models.FileHandle, 0, len(files))
	for _, fh := range files {
		handle, err := s.storage.SaveFile(sess.StagingKey, fh)
		if err != nil {
			log.Warn().Err(err).Str("session", sess.ID).Str("file", fh.Filename).Msg("⚠️  Skipping file")
			continue
		}
		batch = append(batch, handle)
	}
	return batch
}

func (s *screeningService) RemoveFile(sessionID string, slot models.SlotKind, index int) {
	sess := s.lockSession(sessionID)
	defer sess.mu.Unlock()

	sess.page.RemoveFile(slot, index)
	s.sweep(sess)
}

func (s *screeningService) Submit(sessionID string) error {
	sess := s.lockSession(sessionID)
	dispatch, err := sess.page.Submit()
	sess.mu.Unlock()
	if err != nil {
		return err
	}

	job := ScreeningJob{SessionID: sess.ID, StagingKey: sess.StagingKey, Dispatch: *dispatch}
	if err := s.worker.EnqueueJob(job); err != nil {
		sess.mu.Lock()
		sess.page.Resolve(dispatch.Generation, nil, fmt.Errorf("%w: %v", ErrRequestFailed, err))
		sess.mu.Unlock()
		return fmt.Errorf("failed to dispatch screening request: %w", err)
	}

	return nil
}

func (s *screeningService) Reset(sessionID string) {
	sess := s.lockSession(sessionID)
	defer sess.mu.Unlock()

	sess.page.Reset()
	s.sweep(sess)
}

// HandleJob performs the network call for a dispatched submission and resolves the
// owning page. Responses for reset or expired sessions are dropped.
func (s *screeningService) HandleJob(ctx context.Context, job ScreeningJob) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	result, err := s.client.Screen(ctx, job.Dispatch.Request)

	sess, ok := s.sessions.Get(job.SessionID)
	if !ok {
		log.Debug().Str("session", job.SessionID).Msg("Session expired before screening response arrived")
		return
	}

	sess.mu.Lock()
	if sess.StagingKey != job.StagingKey {
		sess.mu.Unlock()
		log.Debug().Str("session", job.SessionID).Msg("Session was recreated before screening response arrived")
		return
	}
	applied := sess.page.Resolve(job.Dispatch.Generation, result, err)
	s.sweep(sess)
	sess.mu.Unlock()

	if applied {
		s.recordRun(job, result, err)
	}
}

// lockSession returns the live session for id with its mu held.
func (s *screeningService) lockSession(id string) *ScreeningSession {
	for {
		sess := s.sessions.GetOrCreate(id, func() *ScreeningSession {
			log.Debug().Str("session", id).Msg("New screening session")
			return &ScreeningSession{
				ID:         id,
				StagingKey: uuid.NewString(),
				page:       NewScreeningPage(s.cfg.ResumeCapacity),
			}
		})

		sess.mu.Lock()
		if !sess.closed {
			return sess
		}
		sess.mu.Unlock()
	}
}

// sweep deletes staged files that neither slot nor the in-flight request references.
// Caller holds sess.mu.
func (s *screeningService) sweep(sess *ScreeningSession) {
	if sess.staging > 0 {
		return
	}

	referenced := make(map[string]struct{})
	for _, f := range sess.page.Files(models.SlotJobDescription) {
		referenced[f.Path] = struct{}{}
	}
	for _, f := range sess.page.Files(models.SlotResumes) {
		referenced[f.Path] = struct{}{}
	}
	if req := sess.page.InFlightRequest(); req != nil {
		referenced[req.JobDescription.Path] = struct{}{}
		for _, f := range req.Resumes {
			referenced[f.Path] = struct{}{}
		}
	}

	staged, err := s.storage.StagedFiles(sess.StagingKey)
	if err != nil {
		log.Warn().Err(err).Str("session", sess.ID).Msg("⚠️  Failed to list staged files")
		return
	}

	for _, path := range staged {
		if _, ok := referenced[path]; ok {
			continue
		}
		if err := s.storage.DeleteFile(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("⚠️  Failed to delete staged file")
		}
	}
}

func (s *screeningService) evictSession(id string, sess *ScreeningSession) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.closed = true
	if sess.staging > 0 {
		// the uploader removes the directory once its writes finish
		return
	}
	if err := s.storage.DeleteSession(sess.StagingKey); err != nil {
		log.Warn().Err(err).Str("session", id).Msg("⚠️  Failed to delete session files")
	}
}

func (s *screeningService) recordRun(job ScreeningJob, result *models.ScreeningResult, screenErr error) {
	if s.runRepo == nil {
		return
	}

	run := &models.ScreeningRun{
		ID:             uuid.New(),
		SessionID:      job.SessionID,
		JobDescription: job.Dispatch.Request.JobDescription.Name,
		ResumeCount:    len(job.Dispatch.Request.Resumes),
		Status:         models.RunSucceeded,
		CreatedAt:      time.Now(),
	}

	if screenErr != nil || result == nil {
		msg := "empty result"
		if screenErr != nil {
			msg = screenErr.Error()
		}
		run.Status = models.RunFailed
		run.ErrorMessage = &msg
	} else {
		run.RelevantCount = len(result.Relevant)
		run.IrrelevantCount = len(result.Irrelevant)
		run.MatchRate = RelevantPercentage(run.RelevantCount, run.IrrelevantCount)
	}

	if err := s.runRepo.Create(run); err != nil {
		log.Warn().Err(err).Msg("⚠️  Failed to record screening run")
	}
}
