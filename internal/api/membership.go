package api

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// GetPlans lists the membership plans.
func (c *Client) GetPlans(ctx context.Context) ([]Plan, error) {
	var plans []Plan
	if err := c.get(ctx, "/membership/plans", &plans); err != nil {
		return nil, fmt.Errorf("fetching plans: %w", err)
	}
	return plans, nil
}

// GetMembershipStats returns club-wide totals.
func (c *Client) GetMembershipStats(ctx context.Context) (*MembershipStats, error) {
	var stats MembershipStats
	if err := c.get(ctx, "/membership/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetMyCard returns the current member's digital card.
func (c *Client) GetMyCard(ctx context.Context) (*MemberCard, error) {
	var card MemberCard
	if err := c.get(ctx, "/membership/my-card", &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// Subscribe moves the current member onto planID.
func (c *Client) Subscribe(ctx context.Context, planID string) (*Subscription, error) {
	var sub Subscription
	if err := c.post(ctx, "/membership/subscribe", SubscribeRequest{PlanID: planID}, &sub); err != nil {
		return nil, fmt.Errorf("subscribing to %s: %w", planID, err)
	}
	return &sub, nil
}

// GenerateCard issues a fresh QR code for the current member's card.
func (c *Client) GenerateCard(ctx context.Context) (*CardRenewal, error) {
	var out CardRenewal
	if err := c.post(ctx, "/membership/generate-card", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetOverview fetches plans, upcoming events and stats concurrently.
func (c *Client) GetOverview(ctx context.Context) (*Overview, error) {
	var ov Overview
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		plans, err := c.GetPlans(ctx)
		ov.Plans = plans
		return err
	})
	g.Go(func() error {
		events, err := c.GetEvents(ctx, EventsUpcoming)
		ov.Upcoming = events
		return err
	})
	g.Go(func() error {
		stats, err := c.GetMembershipStats(ctx)
		if stats != nil {
			ov.Stats = *stats
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &ov, nil
}

func isUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
