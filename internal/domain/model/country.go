package model

// Country is static reference data for the country picker.
type Country struct {
	Code string `gorm:"primaryKey" json:"code"`
	Name string `gorm:"index" json:"name"`
}

// TableName specifies the table name for GORM
func (Country) TableName() string {
	return "countries"
}
