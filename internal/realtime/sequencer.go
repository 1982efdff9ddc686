package realtime

import "sync"

// sequencer - мьютекс на каждый диалог. Запись и рассылка выполняются под одним ключом,
// поэтому порядок рассылки совпадает с порядком коммитов.
type sequencer struct {
	mu    sync.Mutex
	locks map[int64]*seqLock
}

type seqLock struct {
	mu   sync.Mutex
	refs int
}

func newSequencer() *sequencer {
	return &sequencer{locks: make(map[int64]*seqLock)}
}

// Lock блокирует ключ и возвращает функцию разблокировки
func (s *sequencer) Lock(key int64) func() {
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &seqLock{}
		s.locks[key] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, key)
		}
		s.mu.Unlock()
	}
}

func (s *sequencer) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}
