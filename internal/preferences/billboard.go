package preferences

import (
	"context"

	"github.com/five82/prefsync/internal/api"
)

// GroupBillboard groups events by call-to-action link, then by locale. A
// later event with the same link and locale replaces an earlier one.
func GroupBillboard(events []api.BillboardEvent) Billboard {
	out := make(Billboard)
	for _, event := range events {
		byLocale, ok := out[event.CallToActionLink]
		if !ok {
			byLocale = make(map[string]api.BillboardEvent)
			out[event.CallToActionLink] = byLocale
		}
		byLocale[event.Locale] = event
	}
	return out
}

// GetBillboardContents fetches billboard events and replaces the local
// billboard with their grouping. On error the billboard is left unchanged.
func (c *Controller) GetBillboardContents(ctx context.Context) error {
	events, err := c.backend.FetchBillboard(ctx)
	if err != nil {
		c.log.WithError(err).Error("fetch billboard failed")
		return err
	}
	grouped := GroupBillboard(events)
	c.store.Update(func(s *PreferenceState) { s.Billboard = grouped })
	c.log.WithField("links", len(grouped)).Debug("billboard refreshed")
	return nil
}
