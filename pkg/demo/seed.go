package demo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/tenantkit/pkg/org"
	"github.com/dmitrymomot/tenantkit/pkg/tier"
)

// Seeded child documents. These are deliberately thin: the demo only needs
// believable rows on the dashboard, the real domain logic for assets and
// work orders lives outside this module.

type seedAsset struct {
	ID             string    `bson:"_id"`
	OrganizationID string    `bson:"organization_id"`
	Name           string    `bson:"name"`
	Location       string    `bson:"location"`
	Status         string    `bson:"status"`
	CreatedAt      time.Time `bson:"created_at"`
}

type seedPMRule struct {
	ID             string    `bson:"_id"`
	OrganizationID string    `bson:"organization_id"`
	AssetID        string    `bson:"asset_id"`
	Title          string    `bson:"title"`
	IntervalDays   int       `bson:"interval_days"`
	CreatedAt      time.Time `bson:"created_at"`
}

type seedWorkOrder struct {
	ID             string    `bson:"_id"`
	OrganizationID string    `bson:"organization_id"`
	AssetID        string    `bson:"asset_id"`
	Title          string    `bson:"title"`
	Priority       string    `bson:"priority"`
	Status         string    `bson:"status"`
	CreatedAt      time.Time `bson:"created_at"`
}

type seedPart struct {
	ID             string    `bson:"_id"`
	OrganizationID string    `bson:"organization_id"`
	Name           string    `bson:"name"`
	SKU            string    `bson:"sku"`
	QuantityOnHand int       `bson:"quantity_on_hand"`
	CreatedAt      time.Time `bson:"created_at"`
}

// fakeTeamMembers appear in the organization member list only; they have no
// user documents and cannot log in.
var fakeTeamMembers = []struct {
	Name  string
	Email string
	Role  string
}{
	{Name: "Maria Chen", Email: "maria@demo.invalid", Role: "technician"},
	{Name: "Devon Wright", Email: "devon@demo.invalid", Role: "technician"},
	{Name: "Priya Natarajan", Email: "priya@demo.invalid", Role: "manager"},
}

// seedCounts reports how many countable documents seeding creates, so the
// organization counters start in sync with the seeded data.
func seedCounts() map[tier.Resource]int64 {
	return map[tier.Resource]int64{
		tier.ResourceAssets:     3,
		tier.ResourceUsers:      int64(1 + len(fakeTeamMembers)),
		tier.ResourcePMRules:    2,
		tier.ResourceWorkOrders: 3,
	}
}

// seedRecords populates the child collections with representative data
// scoped to the demo organization. Counts must stay consistent with
// seedCounts.
func (s *service) seedRecords(ctx context.Context, orgID string, now time.Time) error {
	assets := []seedAsset{
		{Name: "Air Compressor #1", Location: "Building A", Status: "operational"},
		{Name: "HVAC Rooftop Unit", Location: "Building A", Status: "operational"},
		{Name: "Forklift 2T", Location: "Warehouse", Status: "needs_attention"},
	}
	for i := range assets {
		assets[i].ID = uuid.NewString()
		assets[i].OrganizationID = orgID
		assets[i].CreatedAt = now
		if err := s.store.Create(ctx, org.CollectionAssets, assets[i]); err != nil {
			return err
		}
	}

	rules := []seedPMRule{
		{AssetID: assets[0].ID, Title: "Monthly compressor inspection", IntervalDays: 30},
		{AssetID: assets[1].ID, Title: "Quarterly filter replacement", IntervalDays: 90},
	}
	for i := range rules {
		rules[i].ID = uuid.NewString()
		rules[i].OrganizationID = orgID
		rules[i].CreatedAt = now
		if err := s.store.Create(ctx, org.CollectionPMRules, rules[i]); err != nil {
			return err
		}
	}

	orders := []seedWorkOrder{
		{AssetID: assets[2].ID, Title: "Replace hydraulic hose", Priority: "high", Status: "open"},
		{AssetID: assets[0].ID, Title: "Lubricate bearings", Priority: "medium", Status: "in_progress"},
		{AssetID: assets[1].ID, Title: "Check refrigerant levels", Priority: "low", Status: "completed"},
	}
	for i := range orders {
		orders[i].ID = uuid.NewString()
		orders[i].OrganizationID = orgID
		orders[i].CreatedAt = now
		if err := s.store.Create(ctx, org.CollectionWorkOrders, orders[i]); err != nil {
			return err
		}
	}

	parts := []seedPart{
		{Name: "Hydraulic hose 3/8\"", SKU: "HH-038", QuantityOnHand: 12},
		{Name: "HVAC filter 20x25", SKU: "FL-2025", QuantityOnHand: 8},
		{Name: "Bearing grease cartridge", SKU: "GR-400", QuantityOnHand: 24},
	}
	for i := range parts {
		parts[i].ID = uuid.NewString()
		parts[i].OrganizationID = orgID
		parts[i].CreatedAt = now
		if err := s.store.Create(ctx, org.CollectionParts, parts[i]); err != nil {
			return err
		}
	}

	return nil
}

func demoEmail(userID string) string {
	return fmt.Sprintf("%s@demo.invalid", userID)
}
