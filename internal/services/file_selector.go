package services

import (
	"alfredoptarigan/resume-screener/internal/models"
)

type DragEvent int

const (
	DragEnter DragEvent = iota
	DragOver
	DragLeave
)

// FileSelector handles intake for one slot. It never holds the file list itself:
// the owner passes the current list in and receives the new one through onChange.
type FileSelector struct {
	capacity      int
	allowMultiple bool
	onChange      func([]models.FileHandle)
	dragActive    bool
}

func NewFileSelector(capacity int, allowMultiple bool, onChange func([]models.FileHandle)) *FileSelector {
	if capacity < 1 {
		capacity = 1
	}
	if !allowMultiple {
		capacity = 1
	}

	return &FileSelector{
		capacity:      capacity,
		allowMultiple: allowMultiple,
		onChange:      onChange,
	}
}

func (s *FileSelector) Capacity() int {
	return s.capacity
}

func (s *FileSelector) AllowMultiple() bool {
	return s.allowMultiple
}

func (s *FileSelector) DragActive() bool {
	return s.dragActive
}

// Add appends batch to current. Files past capacity are dropped.
func (s *FileSelector) Add(current, batch []models.FileHandle) {
	if len(batch) == 0 {
		return
	}

	if !s.allowMultiple {
		s.emit([]models.FileHandle{batch[0]})
		return
	}

	next := make([]models.FileHandle, 0, min(len(current)+len(batch), s.capacity))
	for _, f := range current {
		if len(next) == s.capacity {
			break
		}
		next = append(next, f)
	}
	for _, f := range batch {
		if len(next) == s.capacity {
			break
		}
		next = append(next, f)
	}

	s.emit(next)
}

func (s *FileSelector) Remove(current []models.FileHandle, index int) {
	if index < 0 || index >= len(current) {
		return
	}

	next := make([]models.FileHandle, 0, len(current)-1)
	next = append(next, current[:index]...)
	next = append(next, current[index+1:]...)

	s.emit(next)
}

func (s *FileSelector) HandleDrag(evt DragEvent) {
	switch evt {
	case DragEnter, DragOver:
		s.dragActive = true
	case DragLeave:
		s.dragActive = false
	}
}

// Drop always clears the drag state, even when batch is empty.
func (s *FileSelector) Drop(current, batch []models.FileHandle) {
	s.dragActive = false
	s.Add(current, batch)
}

func (s *FileSelector) emit(files []models.FileHandle) {
	if s.onChange != nil {
		s.onChange(files)
	}
}
