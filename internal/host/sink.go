package host

import (
	"sync"

	"github.com/sliink/flownode/internal/model"
)

// OutputCapture holds everything one output anchor pushed downstream
type OutputCapture struct {
	Schema  model.Schema   `json:"schema"`
	Records []model.Record `json:"records"`
	Closed  bool           `json:"closed"`
}

// CaptureSink records everything a node pushes downstream, standing in for
// the transport between nodes. Safe for concurrent pushes.
type CaptureSink struct {
	mutex    sync.RWMutex
	captures map[string]*OutputCapture
	order    []string
}

// NewCaptureSink creates an empty capture sink
func NewCaptureSink() *CaptureSink {
	return &CaptureSink{captures: make(map[string]*OutputCapture)}
}

// PushSchema records the schema pushed on an anchor
func (s *CaptureSink) PushSchema(anchor string, schema model.Schema) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.captureLocked(anchor).Schema = schema.Clone()
}

// PushRecord records one record pushed on an anchor
func (s *CaptureSink) PushRecord(anchor string, record model.Record) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	capture := s.captureLocked(anchor)
	capture.Records = append(capture.Records, record.Clone())
}

// CloseAnchor records that an anchor closed
func (s *CaptureSink) CloseAnchor(anchor string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.captureLocked(anchor).Closed = true
}

// Schema returns the schema captured for an anchor
func (s *CaptureSink) Schema(anchor string) (model.Schema, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	capture, exists := s.captures[anchor]
	if !exists {
		return model.Schema{}, false
	}
	return capture.Schema.Clone(), !capture.Schema.IsEmpty()
}

// Records returns the records captured for an anchor
func (s *CaptureSink) Records(anchor string) []model.Record {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	capture, exists := s.captures[anchor]
	if !exists {
		return nil
	}
	out := make([]model.Record, len(capture.Records))
	copy(out, capture.Records)
	return out
}

// Closed reports whether an anchor was closed
func (s *CaptureSink) Closed(anchor string) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	capture, exists := s.captures[anchor]
	return exists && capture.Closed
}

// Captured returns a copy of everything captured, keyed by anchor
func (s *CaptureSink) Captured() map[string]OutputCapture {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make(map[string]OutputCapture, len(s.captures))
	for _, name := range s.order {
		capture := s.captures[name]
		records := make([]model.Record, len(capture.Records))
		copy(records, capture.Records)
		out[name] = OutputCapture{
			Schema:  capture.Schema.Clone(),
			Records: records,
			Closed:  capture.Closed,
		}
	}
	return out
}

// Reset clears all captures
func (s *CaptureSink) Reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.captures = make(map[string]*OutputCapture)
	s.order = nil
}

func (s *CaptureSink) captureLocked(anchor string) *OutputCapture {
	capture, exists := s.captures[anchor]
	if !exists {
		capture = &OutputCapture{}
		s.captures[anchor] = capture
		s.order = append(s.order, anchor)
	}
	return capture
}
