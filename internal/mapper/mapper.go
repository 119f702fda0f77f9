package mapper

import (
	"github.com/blueline-estimating/takeoff-api/internal/domain"
)

const timeFormat = "2006-01-02T15:04:05Z"

// ToCompanyDTO converts Company to CompanyDTO
func ToCompanyDTO(company *domain.Company) *domain.CompanyDTO {
	return &domain.CompanyDTO{
		ID:        company.ID,
		Name:      company.Name,
		Address:   company.Address,
		Phone:     company.Phone,
		IsActive:  company.IsActive,
		CreatedAt: company.CreatedAt.Format(timeFormat),
		UpdatedAt: company.UpdatedAt.Format(timeFormat),
	}
}

// ToProjectDTO converts Project to ProjectDTO
func ToProjectDTO(project *domain.Project) *domain.ProjectDTO {
	return &domain.ProjectDTO{
		ID:          project.ID,
		CompanyID:   project.CompanyID,
		Name:        project.Name,
		Description: project.Description,
		CreatedAt:   project.CreatedAt.Format(timeFormat),
		UpdatedAt:   project.UpdatedAt.Format(timeFormat),
	}
}

// ToDrawingDTO converts Drawing to DrawingDTO
func ToDrawingDTO(drawing *domain.Drawing) *domain.DrawingDTO {
	return &domain.DrawingDTO{
		ID:        drawing.ID,
		ProjectID: drawing.ProjectID,
		Name:      drawing.Name,
		PageCount: drawing.PageCount,
		CreatedAt: drawing.CreatedAt.Format(timeFormat),
		UpdatedAt: drawing.UpdatedAt.Format(timeFormat),
	}
}

// ToDetectedItemDTO converts DetectedItem to DetectedItemDTO
func ToDetectedItemDTO(item *domain.DetectedItem) *domain.DetectedItemDTO {
	return &domain.DetectedItemDTO{
		ID:            item.ID,
		DrawingID:     item.DrawingID,
		PageNumber:    item.PageNumber,
		ItemType:      item.ItemType,
		X:             item.X,
		Y:             item.Y,
		Width:         item.Width,
		Height:        item.Height,
		Confidence:    item.Confidence,
		Verified:      item.Verified,
		Notes:         item.Notes,
		WbsCategoryID: item.WbsCategoryID,
	}
}

// ToCustomScaleDTO converts CustomScale to CustomScaleDTO
func ToCustomScaleDTO(scale *domain.CustomScale) *domain.CustomScaleDTO {
	return &domain.CustomScaleDTO{
		ID:            scale.ID,
		ProjectID:     scale.ProjectID,
		Name:          scale.Name,
		PixelsPerUnit: scale.PixelsPerUnit,
		Unit:          scale.Unit,
		CreatedAt:     scale.CreatedAt.Format(timeFormat),
	}
}

// ToPageScaleDTO converts PageScale to PageScaleDTO
func ToPageScaleDTO(scale *domain.PageScale) *domain.PageScaleDTO {
	return &domain.PageScaleDTO{
		ID:            scale.ID,
		DrawingID:     scale.DrawingID,
		PageNumber:    scale.PageNumber,
		ScaleRef:      scale.ScaleRef,
		ScaleName:     scale.ScaleName,
		PixelsPerUnit: scale.PixelsPerUnit,
		UpdatedAt:     scale.UpdatedAt.Format(timeFormat),
	}
}

// ToScaleZoneDTO converts ScaleZone to ScaleZoneDTO
func ToScaleZoneDTO(zone *domain.ScaleZone) *domain.ScaleZoneDTO {
	return &domain.ScaleZoneDTO{
		ID:            zone.ID,
		DrawingID:     zone.DrawingID,
		PageNumber:    zone.PageNumber,
		Name:          zone.Name,
		X:             zone.X,
		Y:             zone.Y,
		Width:         zone.Width,
		Height:        zone.Height,
		ScaleRef:      zone.ScaleRef,
		ScaleName:     zone.ScaleName,
		PixelsPerUnit: zone.PixelsPerUnit,
		CreatedAt:     zone.CreatedAt.Format(timeFormat),
	}
}

// ToWbsCategoryDTO converts WbsCategory to WbsCategoryDTO
func ToWbsCategoryDTO(category *domain.WbsCategory) *domain.WbsCategoryDTO {
	return &domain.WbsCategoryDTO{
		ID:        category.ID,
		ProjectID: category.ProjectID,
		ParentID:  category.ParentID,
		Name:      category.Name,
		SortOrder: category.SortOrder,
		CreatedAt: category.CreatedAt.Format(timeFormat),
		UpdatedAt: category.UpdatedAt.Format(timeFormat),
	}
}

// ToMaterialDTO converts Material to MaterialDTO
func ToMaterialDTO(material *domain.Material) *domain.MaterialDTO {
	return &domain.MaterialDTO{
		ID:          material.ID,
		CompanyID:   material.CompanyID,
		PartNumber:  material.PartNumber,
		Category:    material.Category,
		Description: material.Description,
		Size:        material.Size,
		Unit:        material.Unit,
		ListPrice:   material.ListPrice,
		LaborUnits:  material.LaborUnits,
		IsActive:    material.IsActive,
		CreatedAt:   material.CreatedAt.Format(timeFormat),
		UpdatedAt:   material.UpdatedAt.Format(timeFormat),
	}
}

// ToTakeoffItemDTO converts TakeoffItem to TakeoffItemDTO with extended
// price and labor computed from the preloaded material.
func ToTakeoffItemDTO(item *domain.TakeoffItem) *domain.TakeoffItemDTO {
	dto := domain.TakeoffItemDTO{
		ID:              item.ID,
		DrawingID:       item.DrawingID,
		PageNumber:      item.PageNumber,
		MaterialID:      item.MaterialID,
		WbsCategoryID:   item.WbsCategoryID,
		Quantity:        item.Quantity,
		Multiplier:      item.Multiplier,
		MeasurementType: item.MeasurementType,
		Notes:           item.Notes,
		ExtendedPrice:   item.ExtendedPrice(),
		ExtendedLabor:   item.ExtendedLabor(),
		CreatedAt:       item.CreatedAt.Format(timeFormat),
		UpdatedAt:       item.UpdatedAt.Format(timeFormat),
	}
	if item.Material != nil {
		dto.PartNumber = item.Material.PartNumber
		dto.MaterialDescription = item.Material.Description
		dto.Unit = item.Material.Unit
	}
	if item.WbsCategory != nil {
		dto.WbsCategoryName = item.WbsCategory.Name
	}
	return &dto
}

// ToRfqItemDTO converts RfqItem to RfqItemDTO
func ToRfqItemDTO(item *domain.RfqItem) domain.RfqItemDTO {
	dto := domain.RfqItemDTO{
		ID:         item.ID,
		RfqID:      item.RfqID,
		MaterialID: item.MaterialID,
		Quantity:   item.Quantity,
		Unit:       item.Unit,
		Notes:      item.Notes,
	}
	if item.Material != nil {
		dto.PartNumber = item.Material.PartNumber
		dto.MaterialDescription = item.Material.Description
	}
	return dto
}

// ToRfqDTO converts Rfq to RfqDTO. Lines are included when loaded.
func ToRfqDTO(rfq *domain.Rfq, includeItems bool) *domain.RfqDTO {
	dto := domain.RfqDTO{
		ID:            rfq.ID,
		ProjectID:     rfq.ProjectID,
		RfqNumber:     rfq.RfqNumber,
		SupplierName:  rfq.SupplierName,
		SupplierEmail: rfq.SupplierEmail,
		SupplierPhone: rfq.SupplierPhone,
		Status:        rfq.Status,
		Notes:         rfq.Notes,
		ItemCount:     len(rfq.Items),
		CreatedAt:     rfq.CreatedAt.Format(timeFormat),
		UpdatedAt:     rfq.UpdatedAt.Format(timeFormat),
	}
	if rfq.SentAt != nil {
		sentAt := rfq.SentAt.Format(timeFormat)
		dto.SentAt = &sentAt
	}
	if includeItems {
		dto.Items = make([]domain.RfqItemDTO, len(rfq.Items))
		for i := range rfq.Items {
			dto.Items[i] = ToRfqItemDTO(&rfq.Items[i])
		}
	}
	return &dto
}

// ToAuditLogDTO converts AuditLog to AuditLogDTO
func ToAuditLogDTO(log *domain.AuditLog) *domain.AuditLogDTO {
	return &domain.AuditLogDTO{
		ID:         log.ID,
		UserID:     log.UserID,
		UserEmail:  log.UserEmail,
		Action:     log.Action,
		EntityType: log.EntityType,
		EntityID:   log.EntityID,
		Path:       log.Path,
		StatusCode: log.StatusCode,
		CreatedAt:  log.CreatedAt.Format(timeFormat),
	}
}
