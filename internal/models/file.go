package models

type SlotKind string

const (
	SlotJobDescription SlotKind = "jd"
	SlotResumes        SlotKind = "resumes"
)

func (k SlotKind) Valid() bool {
	return k == SlotJobDescription || k == SlotResumes
}

// FileHandle is one user-chosen file. Path points at the bytes on disk.
type FileHandle struct {
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	Path      string `json:"-"`
	PageCount int    `json:"page_count,omitempty"`
}

// SizeMB is the size shown in file lists.
func (f FileHandle) SizeMB() float64 {
	return float64(f.Size) / 1024 / 1024
}
