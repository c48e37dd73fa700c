package visit

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/JIATech/SIGVIP-sub002/internal/calendar"
	id "github.com/JIATech/SIGVIP-sub002/pkg/domain"
)

const (
	// Redis key prefixes for the two ledger lookups
	inmateDateKeyPrefix = "visits:inmate:"
	pairDateKeyPrefix   = "visits:pair:"
)

// RedisLedger keeps visit records as JSON documents in two Redis lists per
// record, one per lookup key. RPUSH preserves append order, so list order
// is decided-at order. For distributed deployments where several engine
// instances share one ledger.
type RedisLedger struct {
	client *redis.Client
}

// NewRedisLedger constructs a Redis-backed ledger. The client lifecycle is
// managed externally.
func NewRedisLedger(client *redis.Client) *RedisLedger {
	return &RedisLedger{client: client}
}

// visitDoc is the storage shape. Unlike VisitRecord's wire JSON it carries
// the pass code hash, which must survive the round trip for gate checks.
type visitDoc struct {
	ID           string    `json:"id"`
	InmateID     string    `json:"inmate_id"`
	VisitorID    string    `json:"visitor_id"`
	Date         string    `json:"date"`
	SlotStart    int       `json:"slot_start"`
	SlotEnd      int       `json:"slot_end"`
	Decision     string    `json:"decision"`
	Reason       string    `json:"reason,omitempty"`
	Detail       string    `json:"detail,omitempty"`
	PassCodeHash string    `json:"pass_code_hash,omitempty"`
	DecidedAt    time.Time `json:"decided_at"`
}

func (l *RedisLedger) Append(ctx context.Context, record *VisitRecord) (*VisitRecord, error) {
	stored := record.Clone()
	stored.ID = id.VisitID(uuid.New())
	stored.Date = calendar.DateOf(stored.Date)
	stored.PassCode = ""

	payload, err := json.Marshal(docFromRecord(stored))
	if err != nil {
		return nil, fmt.Errorf("marshal visit: %w", err)
	}

	// One pipeline so both lists see the record or neither does.
	pipe := l.client.TxPipeline()
	pipe.RPush(ctx, inmateDateListKey(stored.InmateID, stored.Date), payload)
	pipe.RPush(ctx, pairDateListKey(stored.VisitorID, stored.InmateID, stored.Date), payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("append visit: %w", err)
	}
	return stored, nil
}

func (l *RedisLedger) FindByInmateAndDate(ctx context.Context, inmateID id.InmateID, date time.Time) ([]*VisitRecord, error) {
	return l.readList(ctx, inmateDateListKey(inmateID, calendar.DateOf(date)))
}

func (l *RedisLedger) FindByVisitorAndInmateAndDate(ctx context.Context, visitorID id.VisitorID, inmateID id.InmateID, date time.Time) ([]*VisitRecord, error) {
	return l.readList(ctx, pairDateListKey(visitorID, inmateID, calendar.DateOf(date)))
}

func (l *RedisLedger) readList(ctx context.Context, key string) ([]*VisitRecord, error) {
	raw, err := l.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read visits: %w", err)
	}

	records := make([]*VisitRecord, 0, len(raw))
	for _, item := range raw {
		var doc visitDoc
		if err := json.Unmarshal([]byte(item), &doc); err != nil {
			return nil, fmt.Errorf("unmarshal visit: %w", err)
		}
		record, err := doc.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].DecidedAt.Before(records[j].DecidedAt)
	})
	return records, nil
}

func docFromRecord(record *VisitRecord) visitDoc {
	return visitDoc{
		ID:           record.ID.String(),
		InmateID:     record.InmateID.String(),
		VisitorID:    record.VisitorID.String(),
		Date:         record.Date.Format("2006-01-02"),
		SlotStart:    int(record.Slot.Start),
		SlotEnd:      int(record.Slot.End),
		Decision:     string(record.Decision),
		Reason:       string(record.Reason),
		Detail:       record.Detail,
		PassCodeHash: record.PassCodeHash,
		DecidedAt:    record.DecidedAt,
	}
}

func (d visitDoc) toRecord() (*VisitRecord, error) {
	visitID, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("parse visit id %q: %w", d.ID, err)
	}
	inmateID, err := uuid.Parse(d.InmateID)
	if err != nil {
		return nil, fmt.Errorf("parse inmate id %q: %w", d.InmateID, err)
	}
	visitorID, err := uuid.Parse(d.VisitorID)
	if err != nil {
		return nil, fmt.Errorf("parse visitor id %q: %w", d.VisitorID, err)
	}
	date, err := time.ParseInLocation("2006-01-02", d.Date, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("parse visit date %q: %w", d.Date, err)
	}
	return &VisitRecord{
		ID:           id.VisitID(visitID),
		InmateID:     id.InmateID(inmateID),
		VisitorID:    id.VisitorID(visitorID),
		Date:         date,
		Slot:         calendar.Slot{Start: calendar.TimeOfDay(d.SlotStart), End: calendar.TimeOfDay(d.SlotEnd)},
		Decision:     Decision(d.Decision),
		Reason:       RejectionReason(d.Reason),
		Detail:       d.Detail,
		PassCodeHash: d.PassCodeHash,
		DecidedAt:    d.DecidedAt,
	}, nil
}

func inmateDateListKey(inmateID id.InmateID, date time.Time) string {
	return inmateDateKeyPrefix + inmateID.String() + ":" + date.Format("2006-01-02")
}

func pairDateListKey(visitorID id.VisitorID, inmateID id.InmateID, date time.Time) string {
	return pairDateKeyPrefix + visitorID.String() + ":" + inmateID.String() + ":" + date.Format("2006-01-02")
}
