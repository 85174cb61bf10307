package sync

import (
	"context"
	"strings"

	"github.com/ibertrade/fmbridge/internal/forcemanager"
	"github.com/ibertrade/fmbridge/internal/models"
)

func contactName(rec forcemanager.Record) string {
	return strings.TrimSpace(strings.TrimSpace(rec.Str("firstName")) + " " + strings.TrimSpace(rec.Str("lastName")))
}

// ApplyAccount copies an inbound account record onto a company
// partner. Reference side effects (country, sales rep stub) go through
// the mapper's resolvers.
func (m *Mapper) ApplyAccount(ctx context.Context, rec forcemanager.Record, p *models.Partner) {
	p.IsCompany = true
	p.ForceManagerID = rec.Int64("id")

	if name := rec.Str("name"); name != "" {
		p.Name = name
	}
	p.TradeName = rec.Str("Z_Nombre_Comercial")
	p.Street = rec.Str("address1")
	p.Street2 = rec.Str("address2")
	p.City = rec.Str("city")
	p.Zip = rec.Str("postcode")
	p.Phone = rec.Str("phone")
	p.Mobile = rec.Str("phone2")
	p.Email = rec.Str("email")
	p.Website = rec.Str("website")
	p.Comment = rec.Str("comment")
	if vat := rec.Str("Z_nif"); vat != "" {
		p.Vat = vat
	}
	p.EquivalenceSurcharge = rec.Bool("Z_Recargo_de_equivalencia")

	country := rec.Ref("countryId")
	p.ForceManagerCountryID = country.ID
	p.ForceManagerCountry = country.Label
	p.CountryID = m.resolveCountry(ctx, country)
	p.StateID = m.resolveState(ctx, rec.Str("region"), p.CountryID)

	rep := rec.Ref("salesRepId1")
	p.ForceManagerSalesRepID = rep.ID
	if userID := m.resolveSalesRep(ctx, rep); userID != nil {
		p.UserID = userID
	}
}

// ApplyContact copies an inbound contact record onto a person partner.
// When UseCompanyAddress is set the parent company address wins over
// whatever the record carries.
func (m *Mapper) ApplyContact(ctx context.Context, rec forcemanager.Record, p *models.Partner, parent *models.Partner) {
	p.IsCompany = false
	p.ForceManagerID = rec.Int64("id")

	if name := contactName(rec); name != "" {
		p.Name = name
	}
	p.Phone = rec.Str("phone1")
	p.Mobile = rec.Str("phone2")
	p.Email = rec.Str("email")
	p.Comment = rec.Str("comment")
	p.JobPosition = rec.Ref("typeId").Label

	if parent != nil {
		p.ParentID = &parent.ID
	}

	if rec.Bool("UseCompanyAddress") && parent != nil {
		p.Street = parent.Street
		p.Street2 = parent.Street2
		p.City = parent.City
		p.Zip = parent.Zip
		p.CountryID = parent.CountryID
		p.StateID = parent.StateID
	} else {
		p.Street = rec.Str("address1")
		p.Street2 = rec.Str("address2")
		p.City = rec.Str("city")
		p.Zip = rec.Str("postcode")
		country := rec.Ref("countryId")
		p.ForceManagerCountryID = country.ID
		p.ForceManagerCountry = country.Label
		p.CountryID = m.resolveCountry(ctx, country)
		p.StateID = m.resolveState(ctx, rec.Str("region"), p.CountryID)
	}

	rep := rec.Ref("salesRepId")
	p.ForceManagerSalesRepID = rep.ID
	if userID := m.resolveSalesRep(ctx, rep); userID != nil {
		p.UserID = userID
	}
}

// AccountPayload builds the outbound shape for a company partner.
func (m *Mapper) AccountPayload(ctx context.Context, p *models.Partner) map[string]interface{} {
	payload := map[string]interface{}{
		"name":                      p.Name,
		"salesRepId1":               m.salesRepPayload(ctx, p.UserID),
		"Z_Recargo_de_equivalencia": p.EquivalenceSurcharge,
	}
	putNonEmpty(payload, "address1", p.Street)
	putNonEmpty(payload, "address2", p.Street2)
	putNonEmpty(payload, "city", p.City)
	putNonEmpty(payload, "postcode", p.Zip)
	putNonEmpty(payload, "phone", p.Phone)
	putNonEmpty(payload, "phone2", p.Mobile)
	putNonEmpty(payload, "email", p.Email)
	putNonEmpty(payload, "website", p.Website)
	putNonEmpty(payload, "Z_nif", p.Vat)
	putNonEmpty(payload, "Z_Nombre_Comercial", p.TradeName)
	putNonEmpty(payload, "comment", p.Comment)

	if p.CountryID != nil {
		if c, err := m.store.CountryByID(ctx, *p.CountryID); err == nil && c != nil {
			if c.ForceManagerID != 0 {
				payload["countryId"] = forcemanager.RefValue(c.ForceManagerID, c.Name)
			} else {
				payload["countryId"] = forcemanager.RefValue(0, c.Name)
			}
		}
	}
	return payload
}

// ContactPayload builds the outbound shape for a person partner.
func (m *Mapper) ContactPayload(ctx context.Context, p *models.Partner, parent *models.Partner) map[string]interface{} {
	first, last := splitName(p.Name)
	payload := map[string]interface{}{
		"firstName":  first,
		"lastName":   last,
		"salesRepId": m.salesRepPayload(ctx, p.UserID),
	}
	putNonEmpty(payload, "phone1", p.Phone)
	putNonEmpty(payload, "phone2", p.Mobile)
	putNonEmpty(payload, "email", p.Email)
	putNonEmpty(payload, "comment", p.Comment)
	if parent != nil && parent.ForceManagerID != 0 {
		payload["accountId"] = parent.ForceManagerID
	}
	return payload
}

// splitName cuts a display name at the first space; the remote stores
// first and last names separately.
func splitName(name string) (first, last string) {
	parts := strings.SplitN(strings.TrimSpace(name), " ", 2)
	first = parts[0]
	if len(parts) > 1 {
		last = parts[1]
	}
	return first, last
}
