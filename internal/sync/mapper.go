package sync

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ibertrade/fmbridge/internal/config"
	"github.com/ibertrade/fmbridge/internal/forcemanager"
	"github.com/ibertrade/fmbridge/internal/models"
)

// Remote datetimes arrive in two flavors depending on the endpoint.
var fmTimeLayouts = []string{
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05.000Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseFMTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range fmTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// Mapper translates between remote records and local models. It owns
// the reference resolution side effects: country fallback, stub user
// creation for unknown sales reps.
type Mapper struct {
	store RecordStore
	cfg   config.ForceManagerConfig
}

func NewMapper(store RecordStore, cfg config.ForceManagerConfig) *Mapper {
	return &Mapper{store: store, cfg: cfg}
}

// resolveCountry maps a remote country reference to a local country
// id: by stored remote link first, by name second, and finally the
// configured default country so an address never ends up countryless.
func (m *Mapper) resolveCountry(ctx context.Context, ref forcemanager.Reference) *uint {
	if ref.ID != 0 {
		if c, err := m.store.CountryByRemoteID(ctx, ref.ID); err == nil && c != nil {
			return &c.ID
		}
	}
	if ref.Label != "" {
		if c, err := m.store.CountryByName(ctx, ref.Label); err == nil && c != nil {
			return &c.ID
		}
	}
	if c, err := m.store.CountryByCode(ctx, m.cfg.DefaultCountry); err == nil && c != nil {
		return &c.ID
	}
	return nil
}

// resolveState maps a region name to a state of the given country.
func (m *Mapper) resolveState(ctx context.Context, name string, countryID *uint) *uint {
	if name == "" || countryID == nil {
		return nil
	}
	s, err := m.store.StateByNameAndCountry(ctx, name, *countryID)
	if err != nil || s == nil {
		return nil
	}
	return &s.ID
}

// resolveSalesRep maps a remote sales rep reference to a local user,
// creating a stub account when the rep is unknown locally so that
// ownership survives the sync.
func (m *Mapper) resolveSalesRep(ctx context.Context, ref forcemanager.Reference) *uint {
	if !ref.Valid || ref.ID == 0 {
		return nil
	}
	u, err := m.store.UserByRemoteID(ctx, ref.ID)
	if err != nil {
		return nil
	}
	if u == nil && ref.Label != "" {
		u, err = m.store.UserByName(ctx, ref.Label)
		if err != nil {
			return nil
		}
		if u != nil && u.ForceManagerID == 0 {
			u.ForceManagerID = ref.ID
			if err := m.store.UpdateUser(ctx, u); err != nil {
				return nil
			}
		}
	}
	if u == nil {
		name := ref.Label
		if name == "" {
			name = fmt.Sprintf("FM Rep %d", ref.ID)
		}
		u = &models.User{
			Name:           name,
			Login:          fmt.Sprintf("fm_%d@example.com", ref.ID),
			ForceManagerID: ref.ID,
		}
		if err := m.store.CreateUser(ctx, u); err != nil {
			log.Printf("⚠️ sales rep %d: stub creation failed: %v", ref.ID, err)
			return nil
		}
		log.Printf("📦 created stub user for sales rep %d (%s)", ref.ID, name)
	}
	return &u.ID
}

// salesRepPayload encodes a local user as an outbound sales rep
// reference. Users without a remote link fall back to the configured
// default rep, which the remote requires on every record.
func (m *Mapper) salesRepPayload(ctx context.Context, userID *uint) map[string]interface{} {
	if userID != nil {
		if u, err := m.store.UserByID(ctx, *userID); err == nil && u != nil && u.ForceManagerID != 0 {
			return forcemanager.RefValue(u.ForceManagerID, u.Name)
		}
	}
	return forcemanager.RefValue(m.cfg.FallbackRepID, m.cfg.FallbackRepName)
}

// putNonEmpty adds a string field to a push payload only when it has a
// value; the remote treats empty strings as deliberate blanking.
func putNonEmpty(payload map[string]interface{}, key, value string) {
	if value != "" {
		payload[key] = value
	}
}
