package roster

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JIATech/SIGVIP-sub002/internal/calendar"
	id "github.com/JIATech/SIGVIP-sub002/pkg/domain"
)

// SeedDemo loads a small facility for local development: a unit open
// every day from 07:00 to 16:00, two inmates and two visitors. Returns
// the seeded establishment so callers can wire the scheduler.
func SeedDemo(ctx context.Context, store Store) (*Establishment, error) {
	now := time.Now().UTC()

	rules, err := calendar.NewVisitingRules(
		[]time.Weekday{time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday},
		calendar.TimeOfDay(7*60), calendar.TimeOfDay(16*60))
	if err != nil {
		return nil, fmt.Errorf("seed visiting rules: %w", err)
	}

	establishment, err := NewEstablishment(id.EstablishmentID(uuid.New()), "Unidad 1 - La Plata", rules, false, now)
	if err != nil {
		return nil, fmt.Errorf("seed establishment: %w", err)
	}
	if err := store.SaveEstablishment(ctx, establishment); err != nil {
		return nil, fmt.Errorf("seed establishment: %w", err)
	}

	inmates := []struct {
		fileNumber string
		cellBlock  string
		floor      int
	}{
		{"LP-2024-0001", "A", 1},
		{"LP-2024-0002", "B", 2},
	}
	for _, in := range inmates {
		inmate, err := NewInmate(id.InmateID(uuid.New()), in.fileNumber, in.cellBlock, in.floor, now)
		if err != nil {
			return nil, fmt.Errorf("seed inmate %s: %w", in.fileNumber, err)
		}
		if err := store.CreateInmate(ctx, inmate); err != nil {
			return nil, fmt.Errorf("seed inmate %s: %w", in.fileNumber, err)
		}
	}

	visitors := []struct {
		nationalID string
		fullName   string
	}{
		{"30123456", "María González"},
		{"28987654", "Carlos Fernández"},
	}
	for _, v := range visitors {
		visitor, err := NewVisitor(id.VisitorID(uuid.New()), v.nationalID, v.fullName, now)
		if err != nil {
			return nil, fmt.Errorf("seed visitor %s: %w", v.nationalID, err)
		}
		if err := store.CreateVisitor(ctx, visitor); err != nil {
			return nil, fmt.Errorf("seed visitor %s: %w", v.nationalID, err)
		}
	}

	return establishment, nil
}
