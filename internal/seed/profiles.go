package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aaoeclipse/serverless-qr-manager/internal/store"
	"github.com/aaoeclipse/serverless-qr-manager/pkg/types"
)

type fakeProfileSeed struct {
	ID        string
	Email     string
	Name      string
	Tier      types.Tier
	Directory string
}

var fakeProfiles = []fakeProfileSeed{
	{ID: "seed-free-tenant-0000000", Email: "taqueria.norte+seed1@example.com", Name: "Taqueria Norte", Tier: types.TierFree, Directory: "dir-taqueria-norte"},
	{ID: "seed-pro-tenant-00000000", Email: "bistro.central+seed2@example.com", Name: "Bistro Central", Tier: types.TierPro, Directory: "dir-bistro-central"},
}

// SeedFakeProfiles writes development tenant profiles, skipping any that
// already exist.
func SeedFakeProfiles(ctx context.Context, profiles store.ProfileStore) error {
	seeded := 0
	for _, fake := range fakeProfiles {
		_, err := profiles.Get(ctx, fake.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, types.ErrNotFound) {
			return fmt.Errorf("failed to fetch profile %s: %w", fake.ID, err)
		}

		profile := &types.Profile{
			ID:                 fake.ID,
			Email:              fake.Email,
			Name:               fake.Name,
			CreatedAt:          time.Now(),
			Tier:               fake.Tier,
			Directory:          fake.Directory,
			SubscriptionStatus: types.SubscriptionNone,
		}
		if err := profiles.Put(ctx, profile); err != nil {
			return fmt.Errorf("failed to seed profile %s: %w", fake.ID, err)
		}
		seeded++
	}

	if seeded > 0 {
		fmt.Printf("seeded %d tenant profiles\n", seeded)
	}
	return nil
}
