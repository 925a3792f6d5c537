package po

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"jewelry/domain/order"
	"jewelry/domain/shared"
)

// OutboxEventPO is one row of the transactional outbox.
type OutboxEventPO struct {
	ID          string    `gorm:"primaryKey;size:64"`
	AggregateID string    `gorm:"size:64;index;not null"`
	EventType   string    `gorm:"size:100;index;not null"`
	Payload     string    `gorm:"type:json;not null"`
	Status      string    `gorm:"size:20;default:PENDING;not null;index"`
	RetryCount  int       `gorm:"default:0;not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (OutboxEventPO) TableName() string {
	return "outbox_events"
}

type EventStatus string

const (
	EventStatusPending    EventStatus = "PENDING"
	EventStatusProcessing EventStatus = "PROCESSING"
	EventStatusPublished  EventStatus = "PUBLISHED"
	EventStatusFailed     EventStatus = "FAILED"
)

func FromDomainEvent(event shared.DomainEvent) (*OutboxEventPO, error) {
	payload, err := EventPayload(event)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &OutboxEventPO{
		ID:          uuid.NewString(),
		AggregateID: event.GetAggregateID(),
		EventType:   event.EventName(),
		Payload:     payload,
		Status:      string(EventStatusPending),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// EventPayload renders the JSON body published for an event. The in-memory
// store uses it too so both stores publish identical messages.
func EventPayload(event shared.DomainEvent) (string, error) {
	data := map[string]any{
		"event_name":   event.EventName(),
		"aggregate_id": event.GetAggregateID(),
		"occurred_on":  event.OccurredOn(),
	}

	switch e := event.(type) {
	case *order.OrderPlacedEvent:
		data["order_id"] = e.OrderID()
		data["total"] = e.Total().Amount().StringFixed(2)
		data["currency"] = e.Total().Currency()
		data["guest"] = e.Guest()
		data["line_count"] = e.LineCount()
	case *order.StatusChangedEvent:
		data["order_id"] = e.OrderID()
		data["from"] = e.From().String()
		data["to"] = e.To().String()
	case *order.OrderPaidEvent:
		data["order_id"] = e.OrderID()
		data["total"] = e.Total().Amount().StringFixed(2)
		data["currency"] = e.Total().Currency()
		data["lines"] = e.Lines()
	case *order.InvoiceAttachedEvent:
		data["order_id"] = e.OrderID()
		data["invoice_ref"] = e.InvoiceRef()
	}

	b, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (po *OutboxEventPO) ToEventData() (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(po.Payload), &data); err != nil {
		return nil, err
	}
	return data, nil
}
