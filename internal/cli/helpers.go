// Shared helpers for pantry CLI commands.
package cli

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/pantry/pkg/sqlite"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

// withItems attaches a SQLite backend for the resolved data directory, runs
// fn against its item repository and detaches. A Detach failure is
// returned when fn itself succeeded.
func (a *app) withItems(fn func(items types.ItemRepository) error) (err error) {
	cfg, err := a.backendConfig()
	if err != nil {
		return err
	}

	backend := sqlite.NewBackend(sqlite.WithLogger(a.logger))
	if err := backend.Attach(cfg); err != nil {
		return dataError("attach backend", err)
	}
	defer func() {
		if derr := backend.Detach(); derr != nil && err == nil {
			err = dataError("detach backend", derr)
		}
	}()

	items, err := backend.Items()
	if err != nil {
		return dataError("open items", err)
	}
	return fn(items)
}

// loadItem fetches id, keeping ErrNotFound recognizable for the exit code.
func loadItem(items types.ItemRepository, id string) (*types.Item, error) {
	item, err := items.Load(id)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) || errors.Is(err, types.ErrInvalidID) {
			return nil, fmt.Errorf("item %q: %w", id, err)
		}
		return nil, dataError("load item", err)
	}
	return item, nil
}

// saveItem persists item; validation failures stay user errors.
func (a *app) saveItem(items types.ItemRepository, item *types.Item) error {
	id, err := items.Save(item)
	if err != nil {
		if types.Classify(err) == types.KindValidation {
			return err
		}
		return dataError("save item", err)
	}
	a.logger.Debug("item saved", zap.String("item_id", id), zap.String("name", item.Name))
	return nil
}

// printItem writes item as JSON or as a one-line summary.
func (a *app) printItem(item *types.Item, summary string) error {
	if a.flags.jsonMode {
		return a.printJSON(item)
	}
	_, err := fmt.Fprintln(a.stdout, summary)
	return err
}
