package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/quizdeck/internal/logger"
	"github.com/vytor/quizdeck/internal/models"
	"github.com/vytor/quizdeck/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

var summaryColumns = []string{"id", "ref", "name", "source", "max_level", "available_levels", "card_count", "imported_at"}

type deckRepository struct {
	db *sql.DB
}

// NewDeckRepository creates a new DeckRepository implementation
func NewDeckRepository(db *sql.DB) repository.DeckRepository {
	return &deckRepository{db: db}
}

// Upsert stores deck under ref, replacing any cards previously stored there.
func (r *deckRepository) Upsert(ctx context.Context, ref, source string, deck *models.Deck) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("upserting deck: ref=%s, cards=%d", ref, len(deck.Cards))

	levels, err := json.Marshal(deck.Metadata.AvailableLevels)
	if err != nil {
		return 0, err
	}

	var id int64
	err = tx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
INSERT INTO decks (ref, name, source, max_level, available_levels, card_count)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(ref) DO UPDATE SET
    name = excluded.name,
    source = excluded.source,
    max_level = excluded.max_level,
    available_levels = excluded.available_levels,
    card_count = excluded.card_count,
    imported_at = CURRENT_TIMESTAMP
RETURNING id
`, ref, deck.Metadata.DeckName, source, deck.Metadata.MaxLevel, string(levels), deck.TotalCards()).Scan(&id)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM cards WHERE deck_id = ?`, id); err != nil {
			return err
		}

		for start := 0; start < len(deck.Cards); start += cardInsertBatch {
			end := min(start+cardInsertBatch, len(deck.Cards))
			if err := insertCards(ctx, tx, id, start, deck.Cards[start:end]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to upsert deck %s: %v", ref, err)
		return 0, err
	}
	log.Debug("deck upserted: ref=%s, id=%d", ref, id)
	return id, nil
}

func (r *deckRepository) List(ctx context.Context, filter models.DeckFilter) ([]models.DeckSummary, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("listing decks with filter: name=%s, limit=%d, offset=%d", filter.Name, filter.Limit, filter.Offset)

	query := filtered(sqlBuilder.Select(summaryColumns...).From("decks"), filter).
		OrderBy("name ASC", "ref ASC")

	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query = query.Limit(uint64(limit)).Offset(uint64(offset))

	q, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		log.Error("failed to list decks: %v", err)
		return nil, err
	}
	defer rows.Close()

	var decks []models.DeckSummary
	for rows.Next() {
		d, err := scanSummary(rows)
		if err != nil {
			log.Error("failed to scan deck row: %v", err)
			return nil, err
		}
		decks = append(decks, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	log.Debug("listed %d decks", len(decks))
	return decks, nil
}

func (r *deckRepository) Count(ctx context.Context, filter models.DeckFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")

	q, args, err := filtered(sqlBuilder.Select("COUNT(*)").From("decks"), filter).ToSql()
	if err != nil {
		log.Error("failed to build count query: %v", err)
		return 0, err
	}
	var n int
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		log.Error("failed to count decks: %v", err)
		return 0, err
	}
	return n, nil
}

func (r *deckRepository) Summary(ctx context.Context, ref string) (*models.DeckSummary, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("getting deck summary: ref=%s", ref)

	q, args, err := sqlBuilder.Select(summaryColumns...).From("decks").Where(squirrel.Eq{"ref": ref}).ToSql()
	if err != nil {
		return nil, err
	}
	d, err := scanSummary(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("deck not found: ref=%s", ref)
		} else {
			log.Error("failed to get deck summary: %v", err)
		}
		return nil, err
	}
	return d, nil
}

// GetByRef rebuilds the full deck stored under ref, cards in import order.
func (r *deckRepository) GetByRef(ctx context.Context, ref string) (*models.Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")

	summary, err := r.Summary(ctx, ref)
	if err != nil {
		return nil, err
	}
	cards, err := r.cards(ctx, sqlBuilder.Select(cardColumns...).From("cards").
		Where(squirrel.Eq{"deck_id": summary.ID}).
		OrderBy("position ASC"))
	if err != nil {
		log.Error("failed to load cards for %s: %v", ref, err)
		return nil, err
	}

	return &models.Deck{
		Metadata: models.DeckMetadata{
			DeckName:        summary.Name,
			MaxLevel:        summary.MaxLevel,
			AvailableLevels: summary.AvailableLevels,
			CardCount:       summary.CardCount,
		},
		Cards: cards,
	}, nil
}

func (r *deckRepository) CardsForLevel(ctx context.Context, ref string, level int) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("loading cards: ref=%s, level=%d", ref, level)

	summary, err := r.Summary(ctx, ref)
	if err != nil {
		return nil, err
	}
	cards, err := r.cards(ctx, sqlBuilder.Select(cardColumns...).From("cards").
		Where(squirrel.Eq{"deck_id": summary.ID, "progression_level": level}).
		OrderBy("position ASC"))
	if err != nil {
		log.Error("failed to load level cards: %v", err)
		return nil, err
	}
	return cards, nil
}

func (r *deckRepository) Delete(ctx context.Context, ref string) error {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Info("deleting deck: ref=%s", ref)

	q, args, err := sqlBuilder.Delete("decks").Where(squirrel.Eq{"ref": ref}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		log.Error("failed to delete deck: %v", err)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// cardInsertBatch keeps each multi-row insert under SQLite's bound
// variable limit.
const cardInsertBatch = 500

// insertCards stores cards, numbering their positions from offset.
func insertCards(ctx context.Context, tx *sql.Tx, deckID int64, offset int, cards []models.Card) error {
	insert := sqlBuilder.Insert("cards").Columns(
		"deck_id", "card_id", "position", "definition", "term", "wrong_answers", "progression_level",
	)
	for i, c := range cards {
		wrong, err := json.Marshal(c.WrongAnswers)
		if err != nil {
			return err
		}
		insert = insert.Values(deckID, string(c.ID), offset+i, c.Definition, c.Term, string(wrong), c.ProgressionLevel)
	}
	query, args, err := insert.ToSql()
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

var cardColumns = []string{"card_id", "definition", "term", "wrong_answers", "progression_level"}

func (r *deckRepository) cards(ctx context.Context, query squirrel.SelectBuilder) ([]models.Card, error) {
	q, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		var (
			c     models.Card
			id    string
			wrong string
		)
		if err := rows.Scan(&id, &c.Definition, &c.Term, &wrong, &c.ProgressionLevel); err != nil {
			return nil, err
		}
		c.ID = models.CardID(id)
		if err := json.Unmarshal([]byte(wrong), &c.WrongAnswers); err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func filtered(query squirrel.SelectBuilder, filter models.DeckFilter) squirrel.SelectBuilder {
	if filter.Name != "" {
		query = query.Where(squirrel.Like{"LOWER(name)": "%" + strings.ToLower(filter.Name) + "%"})
	}
	return query
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSummary(row rowScanner) (*models.DeckSummary, error) {
	var (
		d      models.DeckSummary
		levels string
	)
	if err := row.Scan(&d.ID, &d.Ref, &d.Name, &d.Source, &d.MaxLevel, &levels, &d.CardCount, &d.ImportedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(levels), &d.AvailableLevels); err != nil {
		return nil, err
	}
	return &d, nil
}
