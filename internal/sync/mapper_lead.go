package sync

import (
	"context"

	"github.com/ibertrade/fmbridge/internal/forcemanager"
	"github.com/ibertrade/fmbridge/internal/models"
)

// ApplyOpportunity copies an inbound opportunity onto a lead. The
// remote probability scale is [0,10]; locally it is a percentage.
func (m *Mapper) ApplyOpportunity(ctx context.Context, rec forcemanager.Record, l *models.Lead) {
	l.ForceManagerID = rec.Int64("id")

	if name := rec.Str("reference"); name != "" {
		l.Name = name
	}
	l.Description = rec.Str("comments")
	l.Probability = rec.Float("salesProbability") * 10
	l.ExpectedRevenue = rec.Float("total")
	l.DateDeadline = parseFMTime(rec.Str("salesForecastDate"))

	if account := rec.Ref("accountId1"); account.ID != 0 {
		if p, err := m.store.PartnerByRemoteID(ctx, account.ID, true); err == nil && p != nil {
			l.PartnerID = &p.ID
		}
	}

	if status := rec.Ref("statusId"); status.Label != "" {
		if stage, err := m.store.StageByName(ctx, status.Label); err == nil && stage != nil {
			l.StageID = &stage.ID
		}
	}

	rep := rec.Ref("salesRepId")
	l.ForceManagerSalesRepID = rep.ID
	if userID := m.resolveSalesRep(ctx, rep); userID != nil {
		l.UserID = userID
	}
}

// OpportunityPayload builds the outbound shape for a lead. The remote
// push scale for probability is [0,1].
func (m *Mapper) OpportunityPayload(ctx context.Context, l *models.Lead) map[string]interface{} {
	payload := map[string]interface{}{
		"reference":        l.Name,
		"salesProbability": l.Probability / 100,
		"total":            l.ExpectedRevenue,
		"salesRepId":       m.salesRepPayload(ctx, l.UserID),
	}
	putNonEmpty(payload, "comments", l.Description)
	if l.DateDeadline != nil {
		payload["salesForecastDate"] = l.DateDeadline.UTC().Format("2006-01-02T15:04:05Z")
	}
	if l.PartnerID != nil {
		if p, err := m.store.PartnerByID(ctx, *l.PartnerID); err == nil && p != nil && p.ForceManagerID != 0 {
			payload["accountId1"] = p.ForceManagerID
		}
	}
	if l.StageID != nil {
		if stage, err := m.store.StageByID(ctx, *l.StageID); err == nil && stage != nil {
			payload["statusId"] = forcemanager.RefValue(0, stage.Name)
		}
	}
	return payload
}
