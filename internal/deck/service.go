package deck

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

// Service defines presentation operations built on top of the parser,
// navigator and repository.
type Service interface {
	Open(ctx context.Context) error
	Deck() *Deck
	Current() (Slide, Position)
	Advance(ctx context.Context) (Slide, Position)
	Retreat(ctx context.Context) (Slide, Position)
	JumpTo(ctx context.Context, index int) (Slide, Position, error)
	Reload(ctx context.Context) error
	Export() (string, error)
	Watch() (<-chan Position, func())
}

// Options wires the deck service with its dependencies.
type Options struct {
	Path       string
	Wrap       bool
	Parser     *Parser
	Repository Repository
	Logger     *logrus.Logger
	SentryHub  *sentry.Hub
}

type service struct {
	path      string
	forceWrap bool
	parser    *Parser
	repo      Repository
	logger    *logrus.Logger
	sentryHub *sentry.Hub

	mu       sync.RWMutex
	deck     *Deck
	nav      *Navigator
	recordID uint
}

var _ Service = (*service)(nil)

// ErrNotLoaded indicates the deck has not been opened yet.
var ErrNotLoaded = eris.New("deck is not loaded")

// NewService constructs the deck service.
func NewService(opts Options) (Service, error) {
	if opts.Path == "" {
		return nil, eris.New("deck path is required")
	}
	if opts.Parser == nil {
		return nil, eris.New("deck parser is required")
	}
	if opts.Repository == nil {
		return nil, eris.New("deck repository is required")
	}

	return &service{
		path:      opts.Path,
		forceWrap: opts.Wrap,
		parser:    opts.Parser,
		repo:      opts.Repository,
		logger:    opts.Logger,
		sentryHub: opts.SentryHub,
	}, nil
}

// Open reads and parses the deck source, records it, and restores the
// bookmarked position when one exists.
func (s *service) Open(ctx context.Context) error {
	parsed, checksum, err := s.load()
	if err != nil {
		return err
	}

	nav, err := NewNavigator(parsed.Len(), parsed.Config.Wrap || s.forceWrap)
	if err != nil {
		return eris.Wrap(err, "initialising navigator")
	}

	record := &Record{
		Path:       s.path,
		Checksum:   checksum,
		Title:      parsed.Config.Title,
		SlideCount: parsed.Len(),
		OpenedAt:   time.Now(),
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		return eris.Wrap(err, "recording opened deck")
	}

	index, found, err := s.repo.GetBookmark(ctx, record.ID)
	if err != nil {
		s.recordError(logrus.Fields{"path": s.path}, err, "restoring bookmark")
	} else if found {
		if index > parsed.Len()-1 {
			index = parsed.Len() - 1
		}
		if index > 0 {
			if _, jumpErr := nav.JumpTo(index); jumpErr != nil {
				s.recordError(logrus.Fields{"path": s.path, "index": index}, jumpErr, "restoring bookmark position")
			}
		}
	}

	s.mu.Lock()
	s.deck = parsed
	s.nav = nav
	s.recordID = record.ID
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"path":   s.path,
			"slides": parsed.Len(),
			"title":  parsed.Config.Title,
		}).Info("deck opened")
	}

	return nil
}

// Deck returns the loaded deck, or nil before Open succeeds.
func (s *service) Deck() *Deck {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deck
}

// Current returns the slide under the navigation index.
func (s *service) Current() (Slide, Position) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.deck == nil || s.nav == nil {
		return Slide{}, Position{}
	}

	pos := s.nav.Current()
	slide, _ := s.deck.Slide(pos.Index)
	return slide, pos
}

// Advance moves one slide forward and persists the new position. It never
// fails; a bookmark write error is reported and navigation proceeds.
func (s *service) Advance(ctx context.Context) (Slide, Position) {
	return s.moveTo(ctx, func(nav *Navigator) Position { return nav.Advance() })
}

// Retreat moves one slide back and persists the new position.
func (s *service) Retreat(ctx context.Context) (Slide, Position) {
	return s.moveTo(ctx, func(nav *Navigator) Position { return nav.Retreat() })
}

// JumpTo sets the position to the given index. Out-of-range targets
// return ErrOutOfRange with the position unchanged.
func (s *service) JumpTo(ctx context.Context, index int) (Slide, Position, error) {
	s.mu.RLock()
	deck, nav := s.deck, s.nav
	s.mu.RUnlock()

	if deck == nil || nav == nil {
		return Slide{}, Position{}, ErrNotLoaded
	}

	pos, err := nav.JumpTo(index)
	if err != nil {
		return Slide{}, pos, err
	}

	s.persistBookmark(ctx, pos.Index)
	slide, _ := deck.Slide(pos.Index)
	return slide, pos, nil
}

// Reload re-parses the source file in place, clamping the index when the
// deck shrank.
func (s *service) Reload(ctx context.Context) error {
	parsed, checksum, err := s.load()
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.nav == nil {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	s.deck = parsed
	pos := s.nav.Resize(parsed.Len())
	recordID := s.recordID
	s.mu.Unlock()

	record := &Record{
		Path:       s.path,
		Checksum:   checksum,
		Title:      parsed.Config.Title,
		SlideCount: parsed.Len(),
		OpenedAt:   time.Now(),
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		s.recordError(logrus.Fields{"path": s.path}, err, "recording reloaded deck")
	}

	if recordID != 0 {
		if err := s.repo.SaveBookmark(ctx, recordID, pos.Index); err != nil {
			s.recordError(logrus.Fields{"path": s.path, "index": pos.Index}, err, "persisting position after reload")
		}
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"path": s.path, "slides": parsed.Len()}).Info("deck reloaded")
	}

	return nil
}

// Export returns the deck re-serialized into canonical source form.
func (s *service) Export() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.deck == nil {
		return "", ErrNotLoaded
	}
	return Serialize(s.deck), nil
}

// Watch subscribes to position changes until the cancel func is called.
func (s *service) Watch() (<-chan Position, func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.nav == nil {
		ch := make(chan Position)
		close(ch)
		return ch, func() {}
	}
	return s.nav.Subscribe()
}

func (s *service) moveTo(ctx context.Context, move func(*Navigator) Position) (Slide, Position) {
	s.mu.RLock()
	deck, nav := s.deck, s.nav
	s.mu.RUnlock()

	if deck == nil || nav == nil {
		return Slide{}, Position{}
	}

	pos := move(nav)
	s.persistBookmark(ctx, pos.Index)

	slide, _ := deck.Slide(pos.Index)
	return slide, pos
}

func (s *service) persistBookmark(ctx context.Context, index int) {
	s.mu.RLock()
	recordID := s.recordID
	s.mu.RUnlock()

	if recordID == 0 {
		return
	}

	if err := s.repo.SaveBookmark(ctx, recordID, index); err != nil {
		s.recordError(logrus.Fields{"index": index}, err, "persisting slide position")
	}
}

func (s *service) load() (*Deck, string, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, "", eris.Wrapf(err, "reading deck source: %s", s.path)
	}

	parsed, err := s.parser.Parse(string(raw))
	if err != nil {
		return nil, "", eris.Wrapf(err, "parsing deck source: %s", s.path)
	}

	sum := sha256.Sum256(raw)
	return parsed, hex.EncodeToString(sum[:]), nil
}

func (s *service) recordError(fields logrus.Fields, err error, message string) {
	if err == nil {
		return
	}

	if s.logger != nil {
		entry := s.logger.WithField("error", err.Error())
		if len(fields) > 0 {
			entry = entry.WithFields(fields)
		}
		entry.Error(message)
	}

	if s.sentryHub != nil {
		s.sentryHub.CaptureException(err)
	}
}
