package services

import (
	"context"
	"database/sql"

	"github.com/vytor/quizdeck/internal/deck"
	"github.com/vytor/quizdeck/internal/errors"
	"github.com/vytor/quizdeck/internal/logger"
	"github.com/vytor/quizdeck/internal/models"
	"github.com/vytor/quizdeck/internal/repository"
)

// DeckService handles the deck catalog
type DeckService interface {
	Import(ctx context.Context, src deck.Source) error
	ListDecks(ctx context.Context, filter models.DeckFilter) ([]models.DeckSummary, int, error)
	GetDeck(ctx context.Context, ref string) (*models.DeckSummary, error)
	LoadDeck(ctx context.Context, ref string) (*models.Deck, error)
	LevelCards(ctx context.Context, ref string, level int) ([]models.Card, error)
	DeleteDeck(ctx context.Context, ref string) error
	Prune(ctx context.Context, keep []string) ([]string, error)
}

type deckService struct {
	deckRepo repository.DeckRepository
}

// NewDeckService creates a new DeckService
func NewDeckService(deckRepo repository.DeckRepository) DeckService {
	return &deckService{deckRepo: deckRepo}
}

// Import loads and validates src, then stores it under its ref.
func (s *deckService) Import(ctx context.Context, src deck.Source) error {
	log := logger.FromContext(ctx)
	log.Debug("importing deck source: ref=%s", src.Ref())

	d, err := src.Load(ctx)
	if err != nil {
		if errors.Is(err, deck.ErrInvalidDeckShape) {
			log.Warn("rejected deck %s: %v", src.Ref(), err)
			return errors.NewInvalidDeckError(err)
		}
		log.Error("failed to load deck %s: %v", src.Ref(), err)
		return errors.NewInternalError(err)
	}

	id, err := s.deckRepo.Upsert(ctx, src.Ref(), location(src), d)
	if err != nil {
		log.Error("failed to store deck %s: %v", src.Ref(), err)
		return errors.NewInternalError(err)
	}
	log.Info("imported deck %q as %s (id=%d, %d cards)", d.Metadata.DeckName, src.Ref(), id, len(d.Cards))
	return nil
}

func (s *deckService) ListDecks(ctx context.Context, filter models.DeckFilter) ([]models.DeckSummary, int, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing decks: name=%s", filter.Name)

	decks, err := s.deckRepo.List(ctx, filter)
	if err != nil {
		log.Error("failed to list decks: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}
	total, err := s.deckRepo.Count(ctx, filter)
	if err != nil {
		log.Error("failed to count decks: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}
	if decks == nil {
		decks = []models.DeckSummary{}
	}
	return decks, total, nil
}

func (s *deckService) GetDeck(ctx context.Context, ref string) (*models.DeckSummary, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting deck: ref=%s", ref)

	summary, err := s.deckRepo.Summary(ctx, ref)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("deck", ref)
		}
		log.Error("failed to get deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return summary, nil
}

// LoadDeck returns the full deck stored under ref.
func (s *deckService) LoadDeck(ctx context.Context, ref string) (*models.Deck, error) {
	log := logger.FromContext(ctx)
	log.Debug("loading deck: ref=%s", ref)

	d, err := s.deckRepo.GetByRef(ctx, ref)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("deck", ref)
		}
		log.Error("failed to load deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return d, nil
}

// LevelCards returns the cards of one level of the deck stored under ref.
func (s *deckService) LevelCards(ctx context.Context, ref string, level int) ([]models.Card, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing cards: ref=%s, level=%d", ref, level)

	cards, err := s.deckRepo.CardsForLevel(ctx, ref, level)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("deck", ref)
		}
		log.Error("failed to list cards: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if cards == nil {
		cards = []models.Card{}
	}
	return cards, nil
}

func (s *deckService) DeleteDeck(ctx context.Context, ref string) error {
	log := logger.FromContext(ctx)

	if err := s.deckRepo.Delete(ctx, ref); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errors.NewNotFoundError("deck", ref)
		}
		log.Error("failed to delete deck: %v", err)
		return errors.NewInternalError(err)
	}
	log.Info("deleted deck %s", ref)
	return nil
}

// Prune deletes every file-backed deck whose ref is not in keep and returns
// the deleted refs. Uploaded decks have no source and are never pruned.
func (s *deckService) Prune(ctx context.Context, keep []string) ([]string, error) {
	log := logger.FromContext(ctx)

	wanted := make(map[string]bool, len(keep))
	for _, ref := range keep {
		wanted[ref] = true
	}

	var stale []string
	for offset := 0; ; offset += pruneBatch {
		page, err := s.deckRepo.List(ctx, models.DeckFilter{Limit: pruneBatch, Offset: offset})
		if err != nil {
			log.Error("failed to list decks for pruning: %v", err)
			return nil, errors.NewInternalError(err)
		}
		for _, d := range page {
			if d.Source != "" && !wanted[d.Ref] {
				stale = append(stale, d.Ref)
			}
		}
		if len(page) < pruneBatch {
			break
		}
	}

	var pruned []string
	for _, ref := range stale {
		if err := s.deckRepo.Delete(ctx, ref); err != nil && !errors.Is(err, sql.ErrNoRows) {
			log.Error("failed to prune deck %s: %v", ref, err)
			return pruned, errors.NewInternalError(err)
		}
		pruned = append(pruned, ref)
	}
	if len(pruned) > 0 {
		log.Info("pruned %d decks no longer on disk: %v", len(pruned), pruned)
	}
	return pruned, nil
}

const pruneBatch = 200

func location(src deck.Source) string {
	switch s := src.(type) {
	case deck.FileSource:
		return s.Path
	case deck.XLSXSource:
		return s.Path
	default:
		return ""
	}
}
