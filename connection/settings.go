package connection

import "sync"

type memorySettings struct {
	mtx         sync.RWMutex
	credentials Credentials
}

// NewMemorySettings keeps credentials in memory only. SaveInformation
// behaves like SetInformation.
func NewMemorySettings(initial Credentials) Settings {
	return &memorySettings{
		credentials: initial,
	}
}

func (s *memorySettings) Information() Credentials {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return s.credentials
}

func (s *memorySettings) SaveInformation(c Credentials) error {
	s.SetInformation(c)

	return nil
}

func (s *memorySettings) SetInformation(c Credentials) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.credentials = c
}
