package players

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-formwizard/pkg/field"
	"github.com/goliatone/go-formwizard/pkg/liststore"
	"github.com/goliatone/go-formwizard/pkg/storage"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

// StorageKey holds the roster in the backing store.
const StorageKey = "playerProfiles"

// Roster is the persisted list of registered players, newest first.
type Roster struct {
	list   *liststore.List[Profile]
	logger *slog.Logger
}

// OpenRoster loads the roster from store.
func OpenRoster(ctx context.Context, store storage.Store, opts ...liststore.Option) (*Roster, error) {
	list, err := liststore.Open[Profile](ctx, store, StorageKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("players: open roster: %w", err)
	}
	return &Roster{list: list, logger: slog.Default()}, nil
}

// Add registers p with a fresh id, zeroed statistics and active status.
func (r *Roster) Add(ctx context.Context, p Profile) (Profile, error) {
	return r.list.Add(ctx, p)
}

// Remove drops the player with id.
func (r *Roster) Remove(ctx context.Context, id string) error {
	return r.list.Remove(ctx, id)
}

// Update applies fn to the player with id. The id and creation time cannot
// be changed through fn.
func (r *Roster) Update(ctx context.Context, id string, fn func(*Profile)) (bool, error) {
	return r.list.Update(ctx, id, func(p Profile) Profile {
		id, created := p.ID, p.CreatedDate
		fn(&p)
		p.ID, p.CreatedDate = id, created
		return p
	})
}

// Get returns the player with id.
func (r *Roster) Get(id string) (Profile, bool) {
	return r.list.Get(id)
}

// All returns every player, newest first.
func (r *Roster) All() []Profile {
	return r.list.All()
}

// Search matches query against names, position and skill level.
func (r *Roster) Search(query string) []Profile {
	return r.list.Search(query,
		func(p Profile) string { return p.FirstName },
		func(p Profile) string { return p.LastName },
		func(p Profile) string { return p.Position },
		func(p Profile) string { return p.SkillLevel },
	)
}

// Active returns the players still marked active.
func (r *Roster) Active() []Profile {
	return r.list.Find(func(p Profile) bool { return p.IsActive })
}

// Clear removes every player and the stored key.
func (r *Roster) Clear(ctx context.Context) error {
	return r.list.Clear(ctx)
}

// SubmitFunc adapts the roster into the registration wizard's submit
// handler. Each successful submit adds one player; onAdded, when set, sees
// the stored profile.
func (r *Roster) SubmitFunc(onAdded func(Profile)) wizard.SubmitFunc {
	return func(ctx context.Context, values field.Values) error {
		profile, err := ProfileFromValues(values)
		if err != nil {
			return err
		}
		added, err := r.Add(ctx, profile)
		if err != nil {
			return err
		}
		r.logger.Info("player_registered", "player_id", added.ID, "name", added.FullName())
		if onAdded != nil {
			onAdded(added)
		}
		return nil
	}
}
