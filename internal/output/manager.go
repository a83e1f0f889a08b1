package output

import "github.com/cockroachdb/errors"

// Sink is a destination for run events.
type Sink interface {
	Write(e Event) error
	Close() error
}

// Manager fans events out to multiple sinks. Sinks are written in the order
// they were added; one failing sink does not stop the others.
type Manager struct {
	sinks []Sink
}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) AddSink(s Sink) error {
	if m == nil {
		return errors.New("output manager is nil")
	}
	if s == nil {
		return errors.New("sink must not be nil")
	}
	m.sinks = append(m.sinks, s)
	return nil
}

func (m *Manager) Write(e Event) error {
	if m == nil {
		return errors.New("output manager is nil")
	}
	var errs []error
	for _, s := range m.sinks {
		if err := s.Write(e); err != nil {
			errs = append(errs, errors.Wrapf(err, "write %T", s))
		}
	}
	if len(errs) > 0 {
		return errors.Wrap(errors.Join(errs...), "errors writing to sinks")
	}
	return nil
}

func (m *Manager) Close() error {
	if m == nil {
		return errors.New("output manager is nil")
	}
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, errors.Wrapf(err, "close %T", s))
		}
	}
	if len(errs) > 0 {
		return errors.Wrap(errors.Join(errs...), "errors closing sinks")
	}
	return nil
}
