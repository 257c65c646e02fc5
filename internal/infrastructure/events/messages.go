package events

import (
	"encoding/json"
	"time"

	"github.com/jhoicas/smartcart-api/internal/application/dto"
	"github.com/jhoicas/smartcart-api/internal/domain/entity"
)

// RoutingKeyRecordCreated routing key of RecordCreatedMessage.
const RoutingKeyRecordCreated = "record.created"

// RecordCreatedMessage announces a finished trip. Consumers fetch the full record by id.
type RecordCreatedMessage struct {
	RecordID       string     `json:"recordId"`
	ShopperID      string     `json:"shopperId"`
	Store          string     `json:"store"`
	EstimatedTotal dto.Amount `json:"estimatedTotal"`
	Date           time.Time  `json:"date"`
}

// NewRecordCreatedMessage builds the message for rec.
func NewRecordCreatedMessage(shopperID string, rec *entity.ShoppingRecord) *RecordCreatedMessage {
	return &RecordCreatedMessage{
		RecordID:       rec.ID,
		ShopperID:      shopperID,
		Store:          rec.Store,
		EstimatedTotal: dto.NewAmount(rec.EstimatedTotal),
		Date:           rec.Date,
	}
}

// ToJSON encodes the message.
func (m *RecordCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordCreatedMessageFromJSON decodes a message.
func RecordCreatedMessageFromJSON(data []byte) (*RecordCreatedMessage, error) {
	var msg RecordCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
