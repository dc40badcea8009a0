package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Subscription is a writer's plan. Created inactive at checkout and flipped
// active only by the reconciler once the linked payment completes.
type Subscription struct {
	ID          uuid.UUID
	WriterID    string
	Plan        string
	TasksPerDay int // 0 means unlimited
	Active      bool
	StartsAt    *time.Time
	CreatedAt   time.Time
}

// Plan is a purchasable tier. Prices are quoted in USD and converted to the
// wallet currency at payment time.
type Plan struct {
	Name        string
	PriceUSD    decimal.Decimal
	TasksPerDay int // 0 means unlimited
}

var plans = map[string]Plan{
	"basic":    {Name: "basic", PriceUSD: decimal.NewFromInt(5), TasksPerDay: 5},
	"standard": {Name: "standard", PriceUSD: decimal.NewFromInt(10), TasksPerDay: 15},
	"premium":  {Name: "premium", PriceUSD: decimal.NewFromInt(20), TasksPerDay: 0},
}

// PlanByName resolves a tier, or ErrInvalidPlan for anything unknown.
func PlanByName(name string) (Plan, error) {
	p, ok := plans[name]
	if !ok {
		return Plan{}, ErrInvalidPlan
	}
	return p, nil
}
