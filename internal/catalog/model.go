package catalog

import "time"

// Country is a reference entry in the country catalog.
type Country struct {
	ID       int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name     string `gorm:"column:name;size:190;not null;index" json:"name"`
	IsoCode  string `gorm:"column:iso_code;size:3;not null;uniqueIndex" json:"isoCode"`
	IsActive bool   `gorm:"column:is_active;not null;default:true" json:"isActive"`
}

// TableName provides the explicit table binding for GORM.
func (Country) TableName() string {
	return "countries"
}

// Visa describes one visa pathway offered by a country.
type Visa struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CountryID    int64     `gorm:"column:country_id;not null;index:idx_visas_country_name,priority:1" json:"countryId"`
	VisaName     string    `gorm:"column:visa_name;size:190;not null;index:idx_visas_country_name,priority:2" json:"visaName"`
	VisaCode     string    `gorm:"column:visa_code;size:32" json:"visaCode"`
	Type         string    `gorm:"column:type;size:64" json:"type"`
	PathwayToPR  bool      `gorm:"column:pathway_to_pr;not null;default:false" json:"pathwayToPr"`
	AllowsWork   bool      `gorm:"column:allows_work;not null;default:false" json:"allowsWork"`
	Description  string    `gorm:"column:description;type:text" json:"description"`
	ExternalLink string    `gorm:"column:external_link;size:512" json:"externalLink"`
	IsPublic     bool      `gorm:"column:is_public;not null;default:true" json:"isPublic"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName provides the explicit table binding for GORM.
func (Visa) TableName() string {
	return "visas"
}

// Language is a reference entry in the language catalog.
type Language struct {
	ID         int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Code       string `gorm:"column:code;size:16;not null;uniqueIndex" json:"code"`
	Name       string `gorm:"column:name;size:190;not null;index" json:"name"`
	NativeName string `gorm:"column:native_name;size:190" json:"nativeName"`
	Direction  string `gorm:"column:direction;size:3;not null;default:ltr" json:"direction"`
	IsActive   bool   `gorm:"column:is_active;not null;default:true" json:"isActive"`
}

// TableName provides the explicit table binding for GORM.
func (Language) TableName() string {
	return "languages"
}

// Interest is a reference entry in the interest catalog.
type Interest struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"column:name;size:190;not null;index" json:"name"`
	Category  string    `gorm:"column:category;size:190;index" json:"category"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true" json:"isActive"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName provides the explicit table binding for GORM.
func (Interest) TableName() string {
	return "interests"
}
