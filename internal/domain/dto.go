package domain

import (
	"github.com/google/uuid"
)

// DTOs for API responses

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

type CompanyDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt string    `json:"createdAt"` // ISO 8601
	UpdatedAt string    `json:"updatedAt"` // ISO 8601
}

type ProjectDTO struct {
	ID           uuid.UUID `json:"id"`
	CompanyID    uuid.UUID `json:"companyId"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	DrawingCount int       `json:"drawingCount,omitempty"`
	CreatedAt    string    `json:"createdAt"`
	UpdatedAt    string    `json:"updatedAt"`
}

type DrawingDTO struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"projectId"`
	Name      string    `json:"name"`
	PageCount int       `json:"pageCount"`
	CreatedAt string    `json:"createdAt"`
	UpdatedAt string    `json:"updatedAt"`
}

type DetectedItemDTO struct {
	ID            uuid.UUID  `json:"id"`
	DrawingID     uuid.UUID  `json:"drawingId"`
	PageNumber    int        `json:"pageNumber"`
	ItemType      string     `json:"itemType"`
	X             float64    `json:"x"`
	Y             float64    `json:"y"`
	Width         float64    `json:"width"`
	Height        float64    `json:"height"`
	Confidence    float64    `json:"confidence"`
	Verified      bool       `json:"verified"`
	Notes         string     `json:"notes,omitempty"`
	WbsCategoryID *uuid.UUID `json:"wbsCategoryId,omitempty"`
}

type CustomScaleDTO struct {
	ID            uuid.UUID `json:"id"`
	ProjectID     uuid.UUID `json:"projectId"`
	Name          string    `json:"name"`
	PixelsPerUnit float64   `json:"pixelsPerUnit"`
	Unit          string    `json:"unit"`
	CreatedAt     string    `json:"createdAt"`
}

type PageScaleDTO struct {
	ID            uuid.UUID `json:"id"`
	DrawingID     uuid.UUID `json:"drawingId"`
	PageNumber    int       `json:"pageNumber"`
	ScaleRef      string    `json:"scaleRef,omitempty"`
	ScaleName     string    `json:"scaleName,omitempty"`
	PixelsPerUnit float64   `json:"pixelsPerUnit"`
	UpdatedAt     string    `json:"updatedAt"`
}

type ScaleZoneDTO struct {
	ID            uuid.UUID `json:"id"`
	DrawingID     uuid.UUID `json:"drawingId"`
	PageNumber    int       `json:"pageNumber"`
	Name          string    `json:"name"`
	X             float64   `json:"x"`
	Y             float64   `json:"y"`
	Width         float64   `json:"width"`
	Height        float64   `json:"height"`
	ScaleRef      string    `json:"scaleRef,omitempty"`
	ScaleName     string    `json:"scaleName,omitempty"`
	PixelsPerUnit float64   `json:"pixelsPerUnit"`
	CreatedAt     string    `json:"createdAt"`
}

// ResolvedScaleDTO is the answer to "what conversion factor applies here"
type ResolvedScaleDTO struct {
	PixelsPerUnit float64 `json:"pixelsPerUnit"`
	ScaleName     string  `json:"scaleName"`
	// Source is "zone" or "page" depending on which level won
	Source string     `json:"source"`
	ZoneID *uuid.UUID `json:"zoneId,omitempty"`
}

// CalibrationResultDTO carries both the conversion factor and its inverse
// (real units per pixel) for display.
type CalibrationResultDTO struct {
	PixelsPerUnit float64    `json:"pixelsPerUnit"`
	ScaleRatio    float64    `json:"scaleRatio"`
	Unit          string     `json:"unit"`
	ScaleID       *uuid.UUID `json:"scaleId,omitempty"`
}

type WbsCategoryDTO struct {
	ID        uuid.UUID  `json:"id"`
	ProjectID uuid.UUID  `json:"projectId"`
	ParentID  *uuid.UUID `json:"parentId,omitempty"`
	Name      string     `json:"name"`
	SortOrder int        `json:"sortOrder"`
	CreatedAt string     `json:"createdAt"`
	UpdatedAt string     `json:"updatedAt"`
}

// WbsTreeNodeDTO is a category with its children nested for UI consumption
type WbsTreeNodeDTO struct {
	WbsCategoryDTO
	Children []WbsTreeNodeDTO `json:"children"`
}

// WbsPathDTO is the display path of a category from root to node
type WbsPathDTO struct {
	ID   uuid.UUID `json:"id"`
	Path string    `json:"path"`
}

type MaterialDTO struct {
	ID          uuid.UUID `json:"id"`
	CompanyID   uuid.UUID `json:"companyId"`
	PartNumber  string    `json:"partNumber"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Size        string    `json:"size,omitempty"`
	Unit        string    `json:"unit"`
	ListPrice   float64   `json:"listPrice"`
	LaborUnits  float64   `json:"laborUnits"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   string    `json:"createdAt"`
	UpdatedAt   string    `json:"updatedAt"`
}

type TakeoffItemDTO struct {
	ID                  uuid.UUID       `json:"id"`
	DrawingID           uuid.UUID       `json:"drawingId"`
	PageNumber          int             `json:"pageNumber"`
	MaterialID          uuid.UUID       `json:"materialId"`
	PartNumber          string          `json:"partNumber,omitempty"`
	MaterialDescription string          `json:"materialDescription,omitempty"`
	Unit                string          `json:"unit,omitempty"`
	WbsCategoryID       *uuid.UUID      `json:"wbsCategoryId,omitempty"`
	WbsCategoryName     string          `json:"wbsCategoryName,omitempty"`
	Quantity            float64         `json:"quantity"`
	Multiplier          float64         `json:"multiplier"`
	MeasurementType     MeasurementType `json:"measurementType"`
	Notes               string          `json:"notes,omitempty"`
	ExtendedPrice       float64         `json:"extendedPrice"`
	ExtendedLabor       float64         `json:"extendedLabor"`
	CreatedAt           string          `json:"createdAt"`
	UpdatedAt           string          `json:"updatedAt"`
}

// RollupGroupDTO is one (WBS category, material) aggregation bucket
type RollupGroupDTO struct {
	WbsCategoryID       *uuid.UUID `json:"wbsCategoryId,omitempty"`
	WbsPath             string     `json:"wbsPath"`
	MaterialID          uuid.UUID  `json:"materialId"`
	PartNumber          string     `json:"partNumber"`
	MaterialCategory    string     `json:"materialCategory"`
	MaterialDescription string     `json:"materialDescription"`
	Size                string     `json:"size,omitempty"`
	Unit                string     `json:"unit"`
	TotalQuantity       float64    `json:"totalQuantity"`
	TotalPrice          float64    `json:"totalPrice"`
	TotalLabor          float64    `json:"totalLabor"`
	ItemCount           int        `json:"itemCount"`
}

// RollupDTO is a full rollup for a drawing or a project
type RollupDTO struct {
	Scope         string           `json:"scope"`
	ScopeID       uuid.UUID        `json:"scopeId"`
	Groups        []RollupGroupDTO `json:"groups"`
	TotalPrice    float64          `json:"totalPrice"`
	TotalLabor    float64          `json:"totalLabor"`
	TotalQuantity float64          `json:"totalQuantity"`
}

type RfqItemDTO struct {
	ID                  uuid.UUID `json:"id"`
	RfqID               uuid.UUID `json:"rfqId"`
	MaterialID          uuid.UUID `json:"materialId"`
	PartNumber          string    `json:"partNumber,omitempty"`
	MaterialDescription string    `json:"materialDescription,omitempty"`
	Quantity            float64   `json:"quantity"`
	Unit                string    `json:"unit"`
	Notes               string    `json:"notes,omitempty"`
}

type RfqDTO struct {
	ID            uuid.UUID    `json:"id"`
	ProjectID     uuid.UUID    `json:"projectId"`
	RfqNumber     string       `json:"rfqNumber"`
	SupplierName  string       `json:"supplierName,omitempty"`
	SupplierEmail string       `json:"supplierEmail,omitempty"`
	SupplierPhone string       `json:"supplierPhone,omitempty"`
	Status        RfqStatus    `json:"status"`
	Notes         string       `json:"notes,omitempty"`
	SentAt        *string      `json:"sentAt,omitempty"`
	ItemCount     int          `json:"itemCount"`
	Items         []RfqItemDTO `json:"items,omitempty"`
	CreatedAt     string       `json:"createdAt"`
	UpdatedAt     string       `json:"updatedAt"`
}

type AuditLogDTO struct {
	ID         uuid.UUID `json:"id"`
	UserID     string    `json:"userId"`
	UserEmail  string    `json:"userEmail,omitempty"`
	Action     string    `json:"action"`
	EntityType string    `json:"entityType"`
	EntityID   string    `json:"entityId,omitempty"`
	Path       string    `json:"path"`
	StatusCode int       `json:"statusCode"`
	CreatedAt  string    `json:"createdAt"`
}

// Request DTOs

type CreateProjectRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description,omitempty"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty"`
}

type CreateDrawingRequest struct {
	Name      string `json:"name" validate:"required,max=200"`
	PageCount int    `json:"pageCount" validate:"required,gte=1"`
}

type UpdateDrawingRequest struct {
	Name *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
}

type CreateCustomScaleRequest struct {
	Name          string  `json:"name" validate:"required,max=200"`
	PixelsPerUnit float64 `json:"pixelsPerUnit" validate:"required,gt=0"`
	Unit          string  `json:"unit,omitempty" validate:"max=50"`
}

// SetPageScaleRequest upserts the default scale for one page. ScaleRef may
// name a standard scale id or a custom scale id; PixelsPerUnit is the
// resolved factor the client measured against.
type SetPageScaleRequest struct {
	ScaleRef      string  `json:"scaleRef,omitempty" validate:"max=100"`
	ScaleName     string  `json:"scaleName,omitempty" validate:"max=200"`
	PixelsPerUnit float64 `json:"pixelsPerUnit" validate:"required,gt=0"`
}

type CreateScaleZoneRequest struct {
	Name          string  `json:"name" validate:"required,max=200"`
	X             float64 `json:"x" validate:"gte=0"`
	Y             float64 `json:"y" validate:"gte=0"`
	Width         float64 `json:"width" validate:"required,gt=0"`
	Height        float64 `json:"height" validate:"required,gt=0"`
	ScaleRef      string  `json:"scaleRef,omitempty" validate:"max=100"`
	ScaleName     string  `json:"scaleName,omitempty" validate:"max=200"`
	PixelsPerUnit float64 `json:"pixelsPerUnit" validate:"required,gt=0"`
}

type UpdateScaleZoneRequest struct {
	Name          *string  `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	X             *float64 `json:"x,omitempty" validate:"omitempty,gte=0"`
	Y             *float64 `json:"y,omitempty" validate:"omitempty,gte=0"`
	Width         *float64 `json:"width,omitempty" validate:"omitempty,gt=0"`
	Height        *float64 `json:"height,omitempty" validate:"omitempty,gt=0"`
	ScaleRef      *string  `json:"scaleRef,omitempty" validate:"omitempty,max=100"`
	ScaleName     *string  `json:"scaleName,omitempty" validate:"omitempty,max=200"`
	PixelsPerUnit *float64 `json:"pixelsPerUnit,omitempty" validate:"omitempty,gt=0"`
}

// CalibrateRequest derives a conversion factor from a known distance. When
// Name is set the result is persisted as a custom scale on the drawing's
// project; otherwise the call has no side effects.
type CalibrateRequest struct {
	PageNumber    int     `json:"pageNumber" validate:"gte=0"`
	PixelDistance float64 `json:"pixelDistance" validate:"required"`
	RealDistance  float64 `json:"realDistance" validate:"required"`
	Unit          string  `json:"unit,omitempty" validate:"max=50"`
	Name          string  `json:"name,omitempty" validate:"max=200"`
}

type CreateWbsCategoryRequest struct {
	Name      string     `json:"name" validate:"required,max=200"`
	ParentID  *uuid.UUID `json:"parentId,omitempty"`
	SortOrder *int       `json:"sortOrder,omitempty" validate:"omitempty,gte=0"`
}

type UpdateWbsCategoryRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	SortOrder *int    `json:"sortOrder,omitempty" validate:"omitempty,gte=0"`
}

// BulkReassignWbsRequest moves many ledger items to a category in one atomic
// call. A nil category clears the assignment.
type BulkReassignWbsRequest struct {
	ItemIDs       []uuid.UUID `json:"itemIds" validate:"required,min=1"`
	WbsCategoryID *uuid.UUID  `json:"wbsCategoryId,omitempty"`
}

type CreateMaterialRequest struct {
	PartNumber  string  `json:"partNumber" validate:"required,max=100"`
	Category    string  `json:"category" validate:"required,max=200"`
	Description string  `json:"description" validate:"required,max=500"`
	Size        string  `json:"size,omitempty" validate:"max=50"`
	Unit        string  `json:"unit" validate:"required,max=20"`
	ListPrice   float64 `json:"listPrice" validate:"gte=0"`
	LaborUnits  float64 `json:"laborUnits" validate:"gte=0"`
}

type UpdateMaterialRequest struct {
	Category    *string  `json:"category,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description,omitempty" validate:"omitempty,min=1,max=500"`
	Size        *string  `json:"size,omitempty" validate:"omitempty,max=50"`
	Unit        *string  `json:"unit,omitempty" validate:"omitempty,min=1,max=20"`
	ListPrice   *float64 `json:"listPrice,omitempty" validate:"omitempty,gte=0"`
	LaborUnits  *float64 `json:"laborUnits,omitempty" validate:"omitempty,gte=0"`
	IsActive    *bool    `json:"isActive,omitempty"`
}

type CreateTakeoffItemRequest struct {
	PageNumber      int             `json:"pageNumber" validate:"gte=0"`
	MaterialID      uuid.UUID       `json:"materialId" validate:"required"`
	WbsCategoryID   *uuid.UUID      `json:"wbsCategoryId,omitempty"`
	Quantity        float64         `json:"quantity"`
	Multiplier      *float64        `json:"multiplier,omitempty" validate:"omitempty,gt=0"`
	MeasurementType MeasurementType `json:"measurementType,omitempty" validate:"omitempty,oneof=measured count"`
	Notes           string          `json:"notes,omitempty"`
}

// UpdateTakeoffItemRequest applies only the supplied fields. Material and
// drawing/page are immutable after creation and have no fields here. Setting
// ClearWbsCategory detaches the item instead of leaving the pointer ambiguous
// between "absent" and "null".
type UpdateTakeoffItemRequest struct {
	Quantity         *float64   `json:"quantity,omitempty"`
	Multiplier       *float64   `json:"multiplier,omitempty" validate:"omitempty,gt=0"`
	WbsCategoryID    *uuid.UUID `json:"wbsCategoryId,omitempty"`
	ClearWbsCategory bool       `json:"clearWbsCategory,omitempty"`
	Notes            *string    `json:"notes,omitempty"`
}

type CreateRfqItemRequest struct {
	MaterialID uuid.UUID `json:"materialId" validate:"required"`
	Quantity   float64   `json:"quantity" validate:"required,gt=0"`
	Unit       string    `json:"unit" validate:"required,max=20"`
	Notes      string    `json:"notes,omitempty"`
}

type CreateRfqRequest struct {
	RfqNumber     string                 `json:"rfqNumber" validate:"required,max=100"`
	SupplierName  string                 `json:"supplierName,omitempty" validate:"max=200"`
	SupplierEmail string                 `json:"supplierEmail,omitempty" validate:"omitempty,email"`
	SupplierPhone string                 `json:"supplierPhone,omitempty" validate:"max=50"`
	Notes         string                 `json:"notes,omitempty"`
	Items         []CreateRfqItemRequest `json:"items,omitempty" validate:"omitempty,dive"`
}

// AssembleRfqRequest builds an RFQ from the current project rollup. When
// WbsCategoryIDs is set only groups under those categories are included.
type AssembleRfqRequest struct {
	RfqNumber      string      `json:"rfqNumber" validate:"required,max=100"`
	SupplierName   string      `json:"supplierName,omitempty" validate:"max=200"`
	SupplierEmail  string      `json:"supplierEmail,omitempty" validate:"omitempty,email"`
	SupplierPhone  string      `json:"supplierPhone,omitempty" validate:"max=50"`
	Notes          string      `json:"notes,omitempty"`
	WbsCategoryIDs []uuid.UUID `json:"wbsCategoryIds,omitempty"`
}

type UpdateRfqStatusRequest struct {
	Status RfqStatus `json:"status" validate:"required,oneof=draft sent closed"`
}

type UpdateDetectedItemRequest struct {
	ItemType      *string    `json:"itemType,omitempty" validate:"omitempty,min=1,max=100"`
	Verified      *bool      `json:"verified,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	WbsCategoryID *uuid.UUID `json:"wbsCategoryId,omitempty"`
}

type CreateDetectedItemRequest struct {
	PageNumber int     `json:"pageNumber" validate:"gte=0"`
	ItemType   string  `json:"itemType" validate:"required,max=100"`
	X          float64 `json:"x" validate:"gte=0"`
	Y          float64 `json:"y" validate:"gte=0"`
	Width      float64 `json:"width" validate:"gt=0"`
	Height     float64 `json:"height" validate:"gt=0"`
	Confidence float64 `json:"confidence" validate:"gte=0,lte=1"`
}
