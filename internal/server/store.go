package server

import (
	"sync"

	"kitenav/internal/document"
)

// DocumentStore holds the open documents, full-sync style: every change
// replaces the snapshot. Core operations only ever see immutable snapshots
// taken from here.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*document.Document
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		docs: make(map[string]*document.Document),
	}
}

func (s *DocumentStore) Open(uri, text string) *document.Document {
	doc := document.New(uri, text)
	s.mu.Lock()
	s.docs[uri] = doc
	s.mu.Unlock()
	return doc
}

func (s *DocumentStore) Get(uri string) (*document.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[uri]
	return doc, ok
}

func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
}

// List returns the URIs of all open documents.
func (s *DocumentStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uris := make([]string, 0, len(s.docs))
	for uri := range s.docs {
		uris = append(uris, uri)
	}
	return uris
}
