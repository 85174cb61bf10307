package sync

import (
	"context"
	"log"

	"github.com/ibertrade/fmbridge/internal/forcemanager"
	"github.com/ibertrade/fmbridge/internal/models"
)

// Resolution classifies how an inbound remote record maps onto the
// local store.
type Resolution int

const (
	// ResolutionLinked: a record already linked to this remote id
	// exists; update it in place.
	ResolutionLinked Resolution = iota
	// ResolutionAdopt: an unlinked record matched by natural key;
	// adopt it by writing the remote id onto it.
	ResolutionAdopt
	// ResolutionCreate: nothing matched; create a new record.
	ResolutionCreate
	// ResolutionSkip: the natural-key match is already linked to a
	// different remote id. Touching it would steal the link, so the
	// inbound record is dropped.
	ResolutionSkip
)

// Resolver implements the identity resolution ladder: remote-id link
// first, natural key second, create last. Adoption by natural key only
// happens when the matched record is not linked elsewhere.
type Resolver struct {
	store RecordStore
}

func NewResolver(store RecordStore) *Resolver {
	return &Resolver{store: store}
}

// ResolveCompany locates the local company for an inbound account.
// The natural key is the tax id.
func (r *Resolver) ResolveCompany(ctx context.Context, rec forcemanager.Record) (Resolution, *models.Partner, error) {
	fmID := rec.Int64("id")

	if fmID != 0 {
		p, err := r.store.PartnerByRemoteID(ctx, fmID, true)
		if err != nil {
			return ResolutionSkip, nil, err
		}
		if p != nil {
			return ResolutionLinked, p, nil
		}
	}

	if vat := rec.Str("Z_nif"); vat != "" {
		p, err := r.store.CompanyByVat(ctx, vat)
		if err != nil {
			return ResolutionSkip, nil, err
		}
		if p != nil {
			if p.RemoteLinked() && p.ForceManagerID != fmID {
				log.Printf("⚠️ account %d: vat %s already linked to %d, skipping", fmID, vat, p.ForceManagerID)
				return ResolutionSkip, p, nil
			}
			return ResolutionAdopt, p, nil
		}
	}

	return ResolutionCreate, nil, nil
}

// ResolveContact locates the local person for an inbound contact. The
// natural key is the email address, falling back to (company, name)
// when the contact has no email.
func (r *Resolver) ResolveContact(ctx context.Context, rec forcemanager.Record, parentID *uint) (Resolution, *models.Partner, error) {
	fmID := rec.Int64("id")

	if fmID != 0 {
		p, err := r.store.PartnerByRemoteID(ctx, fmID, false)
		if err != nil {
			return ResolutionSkip, nil, err
		}
		if p != nil {
			return ResolutionLinked, p, nil
		}
	}

	var match *models.Partner
	if email := rec.Str("email"); email != "" {
		p, err := r.store.ContactByEmail(ctx, email)
		if err != nil {
			return ResolutionSkip, nil, err
		}
		match = p
	} else if parentID != nil {
		name := contactName(rec)
		if name != "" {
			p, err := r.store.ContactByParentAndName(ctx, *parentID, name)
			if err != nil {
				return ResolutionSkip, nil, err
			}
			match = p
		}
	}

	if match != nil {
		if match.RemoteLinked() && match.ForceManagerID != fmID {
			log.Printf("⚠️ contact %d: match already linked to %d, skipping", fmID, match.ForceManagerID)
			return ResolutionSkip, match, nil
		}
		return ResolutionAdopt, match, nil
	}

	return ResolutionCreate, nil, nil
}

// ResolveLead locates the local opportunity for an inbound one. The
// natural key is the reference/name.
func (r *Resolver) ResolveLead(ctx context.Context, rec forcemanager.Record) (Resolution, *models.Lead, error) {
	fmID := rec.Int64("id")

	if fmID != 0 {
		l, err := r.store.LeadByRemoteID(ctx, fmID)
		if err != nil {
			return ResolutionSkip, nil, err
		}
		if l != nil {
			return ResolutionLinked, l, nil
		}
	}

	if name := rec.Str("reference"); name != "" {
		l, err := r.store.LeadByName(ctx, name)
		if err != nil {
			return ResolutionSkip, nil, err
		}
		if l != nil {
			if l.RemoteLinked() && l.ForceManagerID != fmID {
				log.Printf("⚠️ opportunity %d: name %q already linked to %d, skipping", fmID, name, l.ForceManagerID)
				return ResolutionSkip, l, nil
			}
			return ResolutionAdopt, l, nil
		}
	}

	return ResolutionCreate, nil, nil
}

// ResolveOrder locates the local sale order for an inbound one. Orders
// have no natural key besides the remote id; an unmatched order is
// always created.
func (r *Resolver) ResolveOrder(ctx context.Context, rec forcemanager.Record) (Resolution, *models.SaleOrder, error) {
	fmID := rec.Int64("id")
	if fmID == 0 {
		return ResolutionSkip, nil, nil
	}

	o, err := r.store.OrderByRemoteID(ctx, fmID)
	if err != nil {
		return ResolutionSkip, nil, err
	}
	if o != nil {
		return ResolutionLinked, o, nil
	}
	return ResolutionCreate, nil, nil
}
