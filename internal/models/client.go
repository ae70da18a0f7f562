package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClientIDKey is the extra_data key that always carries the client's reference id
const ClientIDKey = "clientId"

// Client represents a feedback recipient managed by administrators
type Client struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid"`
	Name        string    `json:"name" gorm:"not null" validate:"required,min=1,max=255"`
	Email       string    `json:"email" gorm:"not null;uniqueIndex" validate:"required,email"`
	ReferenceID *string   `json:"reference_id,omitempty" gorm:"index"`
	ExtraData   StringMap `json:"extra_data" gorm:"type:jsonb"`
	CreatedBy   string    `json:"created_by,omitempty" gorm:"type:uuid"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the table name for Client
func (Client) TableName() string {
	return "clients"
}

// BeforeCreate assigns an id when the caller did not supply one
func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Reference returns the client's reference id, preferring the dedicated
// column and falling back to extra_data.clientId. Empty means none.
func (c *Client) Reference() string {
	if c.ReferenceID != nil {
		if ref := strings.TrimSpace(*c.ReferenceID); ref != "" {
			return ref
		}
	}
	return strings.TrimSpace(c.ExtraData[ClientIDKey])
}

// SetReference stores ref both in the reference column and in extra_data
func (c *Client) SetReference(ref string) {
	if ref == "" {
		return
	}
	c.ReferenceID = &ref
	if c.ExtraData == nil {
		c.ExtraData = StringMap{}
	}
	c.ExtraData[ClientIDKey] = ref
}
