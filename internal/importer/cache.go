package importer

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/masterdata"
	mddto "github.com/fekuna/omnipos-inventory-service/internal/masterdata/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

// masterCache resolves master data names for one import run. Each kind is
// seeded from the store on first use; misses are created and remembered so a
// name is created at most once per run.
type masterCache struct {
	masters masterdata.UseCase
	index   NameIndexer
	actor   model.Actor
	names   map[model.MasterKind]map[string]string
}

func newMasterCache(masters masterdata.UseCase, index NameIndexer, actor model.Actor) *masterCache {
	return &masterCache{
		masters: masters,
		index:   index,
		actor:   actor,
		names:   make(map[model.MasterKind]map[string]string),
	}
}

func (c *masterCache) resolve(ctx context.Context, kind model.MasterKind, name string) (string, error) {
	known, ok := c.names[kind]
	if !ok {
		idx, err := c.index.NameIndex(ctx, kind)
		if err != nil {
			return "", apperror.Unexpected("failed to load master data", err)
		}
		known = idx
		c.names[kind] = known
	}
	if id, ok := known[name]; ok {
		return id, nil
	}

	m, err := c.masters.CreateMaster(ctx, kind, &mddto.MasterInput{Name: name}, c.actor)
	if err != nil {
		return "", err
	}
	known[name] = m.ID
	return m.ID, nil
}
