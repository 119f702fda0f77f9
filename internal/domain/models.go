package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns the primary key client-side so the same models run on
// postgres and on the sqlite driver used in tests.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Company represents an estimating firm (tenant)
type Company struct {
	BaseModel
	Name     string `gorm:"type:varchar(200);not null;uniqueIndex"`
	Address  string `gorm:"type:varchar(500)"`
	Phone    string `gorm:"type:varchar(50)"`
	IsActive bool   `gorm:"not null;default:true;column:is_active"`

	Projects  []Project  `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE"`
	Materials []Material `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE"`
}

// Project represents a bid/estimating project owned by a company
type Project struct {
	BaseModel
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;index;column:company_id"`
	Company     *Company  `gorm:"foreignKey:CompanyID"`
	Name        string    `gorm:"type:varchar(200);not null;index"`
	Description string    `gorm:"type:text"`

	Drawings      []Drawing     `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	CustomScales  []CustomScale `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	WbsCategories []WbsCategory `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Rfqs          []Rfq         `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

// Drawing is an identity record for an uploaded plan set. File storage and
// rendering live outside this service; only the page count is tracked here.
type Drawing struct {
	BaseModel
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index;column:project_id"`
	Project   *Project  `gorm:"foreignKey:ProjectID"`
	Name      string    `gorm:"type:varchar(200);not null"`
	PageCount int       `gorm:"not null;default:1;column:page_count"`

	PageScales    []PageScale    `gorm:"foreignKey:DrawingID;constraint:OnDelete:CASCADE"`
	ScaleZones    []ScaleZone    `gorm:"foreignKey:DrawingID;constraint:OnDelete:CASCADE"`
	TakeoffItems  []TakeoffItem  `gorm:"foreignKey:DrawingID;constraint:OnDelete:CASCADE"`
	DetectedItems []DetectedItem `gorm:"foreignKey:DrawingID;constraint:OnDelete:CASCADE"`
}

// DetectedItem is a fixture candidate found on a drawing page by the external
// detection pipeline. Kept here so categories referenced by detections cannot
// be deleted out from under them.
type DetectedItem struct {
	BaseModel
	DrawingID     uuid.UUID    `gorm:"type:uuid;not null;index;column:drawing_id"`
	PageNumber    int          `gorm:"not null;column:page_number"`
	ItemType      string       `gorm:"type:varchar(100);not null;column:item_type"`
	X             float64      `gorm:"not null"`
	Y             float64      `gorm:"not null"`
	Width         float64      `gorm:"not null"`
	Height        float64      `gorm:"not null"`
	Confidence    float64      `gorm:"not null;default:0"`
	Verified      bool         `gorm:"not null;default:false"`
	Notes         string       `gorm:"type:text"`
	WbsCategoryID *uuid.UUID   `gorm:"type:uuid;index;column:wbs_category_id"`
	WbsCategory   *WbsCategory `gorm:"foreignKey:WbsCategoryID"`
}

// ScaleFamily classifies a standard scale
type ScaleFamily string

const (
	ScaleFamilyArchitectural ScaleFamily = "architectural"
	ScaleFamilyEngineering   ScaleFamily = "engineering"
	ScaleFamilyMetric        ScaleFamily = "metric"
)

// CustomScale is a project-defined pixel-to-unit conversion, usually produced
// by calibrating against a known distance. Names are not unique.
type CustomScale struct {
	BaseModel
	ProjectID     uuid.UUID `gorm:"type:uuid;not null;index;column:project_id"`
	Name          string    `gorm:"type:varchar(200);not null"`
	PixelsPerUnit float64   `gorm:"not null;column:pixels_per_unit"`
	Unit          string    `gorm:"type:varchar(50);not null;default:'feet'"`
}

// PageScale is the default scale for one page of a drawing. At most one row
// exists per (drawing, page); setting it again replaces the prior value.
type PageScale struct {
	BaseModel
	DrawingID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_page_scale_page;column:drawing_id"`
	PageNumber    int       `gorm:"not null;uniqueIndex:idx_page_scale_page;column:page_number"`
	ScaleRef      string    `gorm:"type:varchar(100);column:scale_ref"`
	ScaleName     string    `gorm:"type:varchar(200);column:scale_name"`
	PixelsPerUnit float64   `gorm:"not null;column:pixels_per_unit"`
}

// ScaleZone is a rectangle on a drawing page carrying its own scale, taking
// precedence over the page default inside its bounds. Overlaps are allowed.
type ScaleZone struct {
	BaseModel
	DrawingID     uuid.UUID `gorm:"type:uuid;not null;index;column:drawing_id"`
	PageNumber    int       `gorm:"not null;column:page_number"`
	Name          string    `gorm:"type:varchar(200);not null"`
	X             float64   `gorm:"not null"`
	Y             float64   `gorm:"not null"`
	Width         float64   `gorm:"not null"`
	Height        float64   `gorm:"not null"`
	ScaleRef      string    `gorm:"type:varchar(100);column:scale_ref"`
	ScaleName     string    `gorm:"type:varchar(200);column:scale_name"`
	PixelsPerUnit float64   `gorm:"not null;column:pixels_per_unit"`
}

// Contains reports whether a page-pixel point falls inside the zone.
func (z *ScaleZone) Contains(x, y float64) bool {
	return x >= z.X && x <= z.X+z.Width && y >= z.Y && y <= z.Y+z.Height
}

// Area returns the zone rectangle's area in square page pixels.
func (z *ScaleZone) Area() float64 {
	return z.Width * z.Height
}

// WbsCategory is a node in a project's work breakdown structure. Roots have a
// nil parent; depth is unbounded. Parents must belong to the same project.
type WbsCategory struct {
	BaseModel
	ProjectID uuid.UUID    `gorm:"type:uuid;not null;index;column:project_id"`
	ParentID  *uuid.UUID   `gorm:"type:uuid;index;column:parent_id"`
	Parent    *WbsCategory `gorm:"foreignKey:ParentID"`
	Name      string       `gorm:"type:varchar(200);not null"`
	SortOrder int          `gorm:"not null;default:0;column:sort_order"`
}

// Material is a company-owned pricebook row. Part numbers are unique per
// company; rows are soft-deleted via the active flag.
type Material struct {
	BaseModel
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_material_part;column:company_id"`
	PartNumber  string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_material_part;column:part_number"`
	Category    string    `gorm:"type:varchar(200);not null;index"`
	Description string    `gorm:"type:varchar(500);not null"`
	Size        string    `gorm:"type:varchar(50)"`
	Unit        string    `gorm:"type:varchar(20);not null"`
	ListPrice   float64   `gorm:"not null;column:list_price"`
	LaborUnits  float64   `gorm:"not null;column:labor_units"`
	IsActive    bool      `gorm:"not null;default:true;column:is_active"`
}

// MeasurementType distinguishes measured lengths from fixture counts
type MeasurementType string

const (
	MeasurementTypeMeasured MeasurementType = "measured"
	MeasurementTypeCount    MeasurementType = "count"
)

// TakeoffItem is one priced quantity on a drawing page. Material and
// drawing/page are fixed at creation; quantity, multiplier, category and
// notes stay editable.
type TakeoffItem struct {
	BaseModel
	DrawingID       uuid.UUID       `gorm:"type:uuid;not null;index;column:drawing_id"`
	PageNumber      int             `gorm:"not null;column:page_number"`
	MaterialID      uuid.UUID       `gorm:"type:uuid;not null;index;column:material_id"`
	Material        *Material       `gorm:"foreignKey:MaterialID"`
	WbsCategoryID   *uuid.UUID      `gorm:"type:uuid;index;column:wbs_category_id"`
	WbsCategory     *WbsCategory    `gorm:"foreignKey:WbsCategoryID"`
	Quantity        float64         `gorm:"not null"`
	Multiplier      float64         `gorm:"not null;default:1.0"`
	MeasurementType MeasurementType `gorm:"type:varchar(20);not null;default:'measured';column:measurement_type"`
	Notes           string          `gorm:"type:text"`
}

// ExtendedPrice is quantity after multiplier times the material list price.
func (t *TakeoffItem) ExtendedPrice() float64 {
	if t.Material == nil {
		return 0
	}
	return t.Quantity * t.Multiplier * t.Material.ListPrice
}

// ExtendedLabor is quantity times labor units. The multiplier covers material
// waste only and never applies to labor.
func (t *TakeoffItem) ExtendedLabor() float64 {
	if t.Material == nil {
		return 0
	}
	return t.Quantity * t.Material.LaborUnits
}

// RfqStatus represents where a quote request is in its lifecycle
type RfqStatus string

const (
	RfqStatusDraft  RfqStatus = "draft"
	RfqStatusSent   RfqStatus = "sent"
	RfqStatusClosed RfqStatus = "closed"
)

// Rfq is a supplier quote request. Numbers are unique within a project and
// lines are snapshots taken at assembly time, never live-linked to the ledger.
type Rfq struct {
	BaseModel
	ProjectID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_rfq_number;column:project_id"`
	RfqNumber     string     `gorm:"type:varchar(100);not null;uniqueIndex:idx_rfq_number;column:rfq_number"`
	SupplierName  string     `gorm:"type:varchar(200);column:supplier_name"`
	SupplierEmail string     `gorm:"type:varchar(255);column:supplier_email"`
	SupplierPhone string     `gorm:"type:varchar(50);column:supplier_phone"`
	Status        RfqStatus  `gorm:"type:varchar(20);not null;default:'draft';index"`
	Notes         string     `gorm:"type:text"`
	SentAt        *time.Time `gorm:"column:sent_at"`

	Items []RfqItem `gorm:"foreignKey:RfqID;constraint:OnDelete:CASCADE"`
}

// RfqItem is one snapshotted line of a quote request
type RfqItem struct {
	BaseModel
	RfqID      uuid.UUID `gorm:"type:uuid;not null;index;column:rfq_id"`
	MaterialID uuid.UUID `gorm:"type:uuid;not null;column:material_id"`
	Material   *Material `gorm:"foreignKey:MaterialID"`
	Quantity   float64   `gorm:"not null"`
	Unit       string    `gorm:"type:varchar(20);not null"`
	Notes      string    `gorm:"type:text"`
}

// AuditLog records who changed what for mutating API calls
type AuditLog struct {
	BaseModel
	UserID     string     `gorm:"type:varchar(100);not null;index;column:user_id"`
	UserEmail  string     `gorm:"type:varchar(255);column:user_email"`
	CompanyID  *uuid.UUID `gorm:"type:uuid;index;column:company_id"`
	Action     string     `gorm:"type:varchar(20);not null"`
	EntityType string     `gorm:"type:varchar(100);not null;index;column:entity_type"`
	EntityID   string     `gorm:"type:varchar(100);index;column:entity_id"`
	Path       string     `gorm:"type:varchar(500);not null"`
	StatusCode int        `gorm:"not null;column:status_code"`
}

// AllModels returns every model for migration helpers and test databases.
func AllModels() []interface{} {
	return []interface{}{
		&Company{},
		&Project{},
		&Drawing{},
		&DetectedItem{},
		&CustomScale{},
		&PageScale{},
		&ScaleZone{},
		&WbsCategory{},
		&Material{},
		&TakeoffItem{},
		&Rfq{},
		&RfqItem{},
		&AuditLog{},
	}
}
