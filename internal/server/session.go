package server

import (
	"fmt"
	"sync"

	"github.com/ironsheep/pixelmosh/internal/mosh"
	"github.com/ironsheep/pixelmosh/internal/pngio"
)

// session holds one loaded original and its most recent mosh.
type session struct {
	mu       sync.Mutex
	path     string
	original *pngio.Image
	engine   *mosh.Engine
	last     *mosh.Result
	lastOpts mosh.Options
}

// moshed returns the last result as an image sharing the original's layout.
func (ss *session) moshed() (*pngio.Image, error) {
	if ss.last == nil {
		return nil, fmt.Errorf("no mosh has been run for %s; call mosh_run first", ss.path)
	}
	return &pngio.Image{
		Meta:    ss.original.Meta,
		Pix:     ss.last.Buffer,
		Palette: ss.original.Palette,
	}, nil
}

// openSession loads path through the cache and replaces any existing
// session for it.
func (s *Server) openSession(path string, strict bool) (*session, error) {
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}

	var opts []mosh.EngineOption
	opts = append(opts, mosh.WithLogger(s.log.Named("engine")))
	if strict {
		opts = append(opts, mosh.WithStrictGrayscaleAlpha())
	}
	engine, err := mosh.New(img.Meta, img.Pix, opts...)
	if err != nil {
		return nil, err
	}

	ss := &session{path: path, original: img, engine: engine}

	s.mu.Lock()
	s.sessions[path] = ss
	s.mu.Unlock()

	return ss, nil
}

// sessionFor returns the session for path, opening one on first use.
func (s *Server) sessionFor(path string) (*session, error) {
	s.mu.Lock()
	ss, ok := s.sessions[path]
	s.mu.Unlock()
	if ok {
		return ss, nil
	}
	return s.openSession(path, false)
}

// existingSession returns the session for path without loading anything.
func (s *Server) existingSession(path string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ss, ok := s.sessions[path]
	if !ok {
		return nil, fmt.Errorf("image not loaded: %s", path)
	}
	return ss, nil
}

// sessionDefaults returns a copy of the options used to fill in missing
// mosh_run arguments.
func (s *Server) sessionDefaults() mosh.Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.defaults
}

func (s *Server) setSessionDefaults(o mosh.Options) {
	s.mu.Lock()
	s.defaults = o
	s.mu.Unlock()
}
