package worker

import (
	"context"

	"github.com/vytor/quizdeck/internal/deck"
	"github.com/vytor/quizdeck/internal/logger"
)

// DeckImporter loads one deck source into the catalog.
// This avoids import cycles by not importing the services package
type DeckImporter interface {
	Import(ctx context.Context, src deck.Source) error
}

// ImportDeckJob imports a single deck source.
type ImportDeckJob struct {
	Importer DeckImporter
	Source   deck.Source
}

func (j *ImportDeckJob) Name() string { return "import_deck:" + j.Source.Ref() }

func (j *ImportDeckJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("ref", j.Source.Ref())
	log.Debug("importing deck")
	return j.Importer.Import(logger.NewContext(ctx, log), j.Source)
}
