package services

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"alfredoptarigan/resume-screener/internal/models"
)

const JobDescriptionCapacity = 1

var (
	ErrMissingFiles       = errors.New("job description and at least one resume are required")
	ErrSubmissionInFlight = errors.New("a screening request is already in flight")
	ErrRequestFailed      = errors.New("screening request failed")
)

// Dispatch is a submitted request tagged with the generation it belongs to.
type Dispatch struct {
	Generation uint64
	Request    models.ScreeningRequest
}

type PageSnapshot struct {
	State          models.SubmissionState `json:"state"`
	JobDescription []models.FileHandle    `json:"job_description"`
	Resumes        []models.FileHandle    `json:"resumes"`
	ResumeCapacity int                    `json:"resume_capacity"`
	CanSubmit      bool                   `json:"can_submit"`
	ShowSubmit     bool                   `json:"show_submit"`
	ShowReset      bool                   `json:"show_reset"`
	Loading        bool                   `json:"loading"`
	Results        ResultsView            `json:"results"`
	Notices        []models.Notice        `json:"notices,omitempty"`
}

// ScreeningPage owns both slots and the submission state machine. It is not safe
// for concurrent use; callers apply events one at a time.
type ScreeningPage struct {
	jdFiles     []models.FileHandle
	resumeFiles []models.FileHandle

	jdSelector     *FileSelector
	resumeSelector *FileSelector

	state      models.SubmissionState
	result     *models.ScreeningResult
	lastErr    error
	generation uint64
	inFlight   *models.ScreeningRequest
	notices    []models.Notice
}

func NewScreeningPage(resumeCapacity int) *ScreeningPage {
	p := &ScreeningPage{state: models.StateIdle}

	p.jdSelector = NewFileSelector(JobDescriptionCapacity, false, func(files []models.FileHandle) {
		p.jdFiles = files
		p.filesChanged()
	})
	p.resumeSelector = NewFileSelector(resumeCapacity, true, func(files []models.FileHandle) {
		p.resumeFiles = files
		p.filesChanged()
	})

	return p
}

func (p *ScreeningPage) State() models.SubmissionState {
	return p.state
}

func (p *ScreeningPage) Generation() uint64 {
	return p.generation
}

func (p *ScreeningPage) Result() *models.ScreeningResult {
	return p.result
}

func (p *ScreeningPage) Err() error {
	return p.lastErr
}

func (p *ScreeningPage) Files(slot models.SlotKind) []models.FileHandle {
	if slot == models.SlotJobDescription {
		return p.jdFiles
	}
	return p.resumeFiles
}

func (p *ScreeningPage) Selector(slot models.SlotKind) *FileSelector {
	if slot == models.SlotJobDescription {
		return p.jdSelector
	}
	return p.resumeSelector
}

func (p *ScreeningPage) AddFiles(slot models.SlotKind, batch []models.FileHandle) {
	p.Selector(slot).Add(p.Files(slot), batch)
}

func (p *ScreeningPage) DropFiles(slot models.SlotKind, batch []models.FileHandle) {
	p.Selector(slot).Drop(p.Files(slot), batch)
}

func (p *ScreeningPage) RemoveFile(slot models.SlotKind, index int) {
	p.Selector(slot).Remove(p.Files(slot), index)
}

// InFlightRequest returns the request awaiting resolution, if any.
func (p *ScreeningPage) InFlightRequest() *models.ScreeningRequest {
	return p.inFlight
}

// Submit starts a screening request. The returned Dispatch must be resolved with
// Resolve once the network call finishes.
func (p *ScreeningPage) Submit() (*Dispatch, error) {
	if p.state == models.StateInFlight {
		return nil, ErrSubmissionInFlight
	}

	if len(p.jdFiles) == 0 || len(p.resumeFiles) == 0 {
		p.result = nil
		p.lastErr = nil
		p.state = p.slotState()
		p.notify(models.Notice{
			Kind:    models.NoticeMissingFiles,
			Title:   "Missing Files",
			Message: "Please upload both a job description and at least one resume.",
		})
		return nil, ErrMissingFiles
	}

	p.generation++
	p.state = models.StateInFlight
	p.result = nil
	p.lastErr = nil

	req := models.ScreeningRequest{
		JobDescription: p.jdFiles[0],
		Resumes:        append([]models.FileHandle(nil), p.resumeFiles...),
	}
	p.inFlight = &req

	return &Dispatch{Generation: p.generation, Request: req}, nil
}

// Resolve applies the outcome of the request tagged with generation. Outcomes of
// superseded requests are dropped and Resolve reports false.
func (p *ScreeningPage) Resolve(generation uint64, result *models.ScreeningResult, err error) bool {
	if generation != p.generation || p.state != models.StateInFlight {
		log.Debug().
			Uint64("generation", generation).
			Uint64("current", p.generation).
			Msg("Discarding stale screening response")
		return false
	}

	resumeCount := len(p.inFlight.Resumes)
	p.inFlight = nil

	if err == nil && result == nil {
		err = fmt.Errorf("%w: empty result", ErrRequestFailed)
	}

	if err != nil {
		log.Error().Err(err).Uint64("generation", generation).Msg("❌ Screening request failed")
		p.state = models.StateFailed
		p.lastErr = err
		p.result = nil
		p.notify(models.Notice{
			Kind:    models.NoticeRequestFailed,
			Title:   "Processing Failed",
			Message: "Failed to analyze resumes. Please check if the backend is running.",
		})
		return true
	}

	p.state = models.StateSucceeded
	p.result = result
	p.lastErr = nil
	p.notify(models.Notice{
		Kind:    models.NoticeSuccess,
		Title:   "Analysis Complete",
		Message: fmt.Sprintf("Successfully processed %d resumes.", resumeCount),
	})
	return true
}

// Reset clears everything and invalidates any pending response.
func (p *ScreeningPage) Reset() {
	p.generation++
	p.jdFiles = nil
	p.resumeFiles = nil
	p.result = nil
	p.lastErr = nil
	p.inFlight = nil
	p.notices = nil
	p.jdSelector.dragActive = false
	p.resumeSelector.dragActive = false
	p.state = models.StateIdle
}

// Snapshot returns the render model and drains pending notices.
func (p *ScreeningPage) Snapshot() PageSnapshot {
	loading := p.state == models.StateInFlight
	filled := len(p.jdFiles) > 0 && len(p.resumeFiles) > 0

	snap := PageSnapshot{
		State:          p.state,
		JobDescription: append([]models.FileHandle(nil), p.jdFiles...),
		Resumes:        append([]models.FileHandle(nil), p.resumeFiles...),
		ResumeCapacity: p.resumeSelector.Capacity(),
		CanSubmit:      filled && !loading,
		ShowSubmit:     filled && p.result == nil,
		ShowReset:      len(p.jdFiles) > 0 || len(p.resumeFiles) > 0,
		Loading:        loading,
		Results:        RenderResults(p.result, loading),
		Notices:        p.notices,
	}
	p.notices = nil

	return snap
}

func (p *ScreeningPage) filesChanged() {
	if p.state == models.StateInFlight {
		return
	}
	p.result = nil
	p.lastErr = nil
	p.state = p.slotState()
}

func (p *ScreeningPage) slotState() models.SubmissionState {
	jd, resumes := len(p.jdFiles) > 0, len(p.resumeFiles) > 0
	switch {
	case jd && resumes:
		return models.StateReady
	case jd || resumes:
		return models.StateAwaitingFiles
	default:
		return models.StateIdle
	}
}

func (p *ScreeningPage) notify(n models.Notice) {
	p.notices = append(p.notices, n)
}
