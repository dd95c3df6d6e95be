package pose

import "sync"

// Store is the ordered collection of loaded pose files. One loader appends
// while the render loop reads; files are never removed or reordered.
type Store struct {
	mu    sync.RWMutex
	files []PoseFile
}

func NewStore() *Store {
	return &Store{}
}

// Append adds a file at the end of the store.
func (s *Store) Append(f PoseFile) {
	s.mu.Lock()
	s.files = append(s.files, f)
	s.mu.Unlock()
}

// Len returns the number of files loaded so far.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

// File returns the file at index i.
func (s *Store) File(i int) (PoseFile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.files) {
		return PoseFile{}, false
	}
	return s.files[i], true
}

// Frame returns frame j of file i. Missing indices report false.
func (s *Store) Frame(i, j int) (PoseFrame, bool) {
	f, ok := s.File(i)
	if !ok || j < 0 || j >= len(f.Frames) {
		return PoseFrame{}, false
	}
	return f.Frames[j], true
}

// Names lists the file names in store order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, len(s.files))
	for i, f := range s.files {
		names[i] = f.Name
	}
	return names
}

// TotalFrames sums the frame counts of every file.
func (s *Store) TotalFrames() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, f := range s.files {
		n += len(f.Frames)
	}
	return n
}
