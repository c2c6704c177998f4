package model

import "gorm.io/datatypes"

// WhatsappTemplate is an operator-editable message template
type WhatsappTemplate struct {
	ID      string `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"index" json:"name"`
	Message string `json:"message"`
}

// TableName specifies the table name for GORM
func (WhatsappTemplate) TableName() string {
	return "whatsapp_templates"
}

// CountryTemplate is a named, reusable set of country codes
type CountryTemplate struct {
	ID           string                      `gorm:"primaryKey" json:"id"`
	Name         string                      `gorm:"index" json:"name"`
	CountryCodes datatypes.JSONSlice[string] `json:"countryCodes"`
}

// TableName specifies the table name for GORM
func (CountryTemplate) TableName() string {
	return "country_templates"
}

// WhatsappLog archives a sent message. Logging is best-effort and never
// fails the operation that triggered the message.
type WhatsappLog struct {
	ID           string `gorm:"primaryKey" json:"id"`
	CustomerID   string `gorm:"not null;index" json:"customer_id"`
	Timestamp    int64  `gorm:"index" json:"timestamp"`
	Message      string `json:"message"`
	TemplateName string `json:"template_name,omitempty"`
}

// TableName specifies the table name for GORM
func (WhatsappLog) TableName() string {
	return "whatsapp_logs"
}
