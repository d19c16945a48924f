package models

type SubmissionState string

const (
	StateIdle          SubmissionState = "idle"
	StateAwaitingFiles SubmissionState = "awaiting_files"
	StateReady         SubmissionState = "ready"
	StateInFlight      SubmissionState = "in_flight"
	StateSucceeded     SubmissionState = "succeeded"
	StateFailed        SubmissionState = "failed"
)

// ScreeningRequest is built at submit time and never stored.
type ScreeningRequest struct {
	JobDescription FileHandle
	Resumes        []FileHandle
}

type ScreeningResult struct {
	Relevant   []string `json:"relevant_resumes"`
	Irrelevant []string `json:"irrelevant_resumes"`
}

type NoticeKind string

const (
	NoticeMissingFiles  NoticeKind = "missing_files"
	NoticeRequestFailed NoticeKind = "request_failed"
	NoticeSuccess       NoticeKind = "success"
)

type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
}

func (n Notice) Destructive() bool {
	return n.Kind != NoticeSuccess
}
