// Package schema provides database schema models for gitmo.
// Models keep the table and column names of the original
// detainees.db file.
package schema

// Country is a country referenced by detainee records.
type Country struct {
	// ISO is a short country code, the primary key.
	ISO string `gorm:"column:iso;primaryKey" json:"iso"`

	// Name is the display name of the country.
	Name string `gorm:"column:name" json:"name"`
}

// TableName overrides gorm naming.
func (Country) TableName() string {
	return "countries"
}

// Detainee is a single detainee record.
//
// ISO refers to Country.ISO, but the reference is not enforced:
// source data contains empty and dangling codes. ArrivalDate is free
// text and is ordered lexically, not as a calendar date.
type Detainee struct {
	// ISN is the detainee identifying number, the primary key.
	ISN string `gorm:"column:isn;primaryKey" json:"isn"`

	// Name of the detainee.
	Name string `gorm:"column:name" json:"name"`

	// Nationality as given by the source, may disagree with ISO.
	Nationality string `gorm:"column:nationality" json:"nationality"`

	// ISO is the country code of the detainee.
	ISO string `gorm:"column:iso" json:"iso"`

	// ArrivalDate as given by the source, may be empty.
	ArrivalDate string `gorm:"column:arrival_date" json:"arrival_date"`

	// TransferReason may be empty.
	TransferReason string `gorm:"column:transfer_reason" json:"transfer_reason"`

	// CaptureDetails may be empty.
	CaptureDetails string `gorm:"column:capture_details" json:"capture_details"`
}

// TableName overrides gorm naming.
func (Detainee) TableName() string {
	return "detainees"
}
