package domain

import "github.com/google/uuid"

type pricebookEntry struct {
	PartNumber  string
	Category    string
	Description string
	Size        string
	Unit        string
	ListPrice   float64
	LaborUnits  float64
}

// defaultPricebook is the starter PVC catalog loaded for new companies.
// Prices are distributor list prices; labor units are hours per unit installed.
var defaultPricebook = []pricebookEntry{
	// Schedule 40 PVC pipe
	{"PVC04005", "PVC Sch 40 Pipe", `1/2" Sch 40 PVC Plain End Pipe`, `1/2"`, "LF", 0.85, 0.05},
	{"PVC04007", "PVC Sch 40 Pipe", `3/4" Sch 40 PVC Plain End Pipe`, `3/4"`, "LF", 1.15, 0.06},
	{"PVC04010", "PVC Sch 40 Pipe", `1" Sch 40 PVC Plain End Pipe`, `1"`, "LF", 1.45, 0.07},
	{"PVC04012", "PVC Sch 40 Pipe", `1-1/4" Sch 40 PVC Plain End Pipe`, `1-1/4"`, "LF", 1.95, 0.08},
	{"PVC04015", "PVC Sch 40 Pipe", `1-1/2" Sch 40 PVC Plain End Pipe`, `1-1/2"`, "LF", 2.35, 0.09},
	{"PVC04020", "PVC Sch 40 Pipe", `2" Sch 40 PVC Plain End Pipe`, `2"`, "LF", 3.25, 0.10},
	{"PVC04025", "PVC Sch 40 Pipe", `2-1/2" Sch 40 PVC Plain End Pipe`, `2-1/2"`, "LF", 5.15, 0.12},
	{"PVC04030", "PVC Sch 40 Pipe", `3" Sch 40 PVC Plain End Pipe`, `3"`, "LF", 6.85, 0.14},
	{"PVC04040", "PVC Sch 40 Pipe", `4" Sch 40 PVC Plain End Pipe`, `4"`, "LF", 10.25, 0.16},
	{"PVC04060", "PVC Sch 40 Pipe", `6" Sch 40 PVC Plain End Pipe`, `6"`, "LF", 18.50, 0.20},
	{"PVC04080", "PVC Sch 40 Pipe", `8" Sch 40 PVC Plain End Pipe`, `8"`, "LF", 32.75, 0.25},

	// DWV 90 elbows
	{"PVC00402", "PVC DWV Fittings", `1-1/2" PVC DWV 90° Elbow`, `1-1/2"`, "EA", 2.15, 0.15},
	{"PVC00404", "PVC DWV Fittings", `2" PVC DWV 90° Elbow`, `2"`, "EA", 2.85, 0.17},
	{"PVC00406", "PVC DWV Fittings", `3" PVC DWV 90° Elbow`, `3"`, "EA", 5.25, 0.20},
	{"PVC00408", "PVC DWV Fittings", `4" PVC DWV 90° Elbow`, `4"`, "EA", 8.50, 0.22},

	// DWV 45 elbows
	{"PVC00412", "PVC DWV Fittings", `1-1/2" PVC DWV 45° Elbow`, `1-1/2"`, "EA", 1.95, 0.15},
	{"PVC00414", "PVC DWV Fittings", `2" PVC DWV 45° Elbow`, `2"`, "EA", 2.65, 0.17},
	{"PVC00416", "PVC DWV Fittings", `3" PVC DWV 45° Elbow`, `3"`, "EA", 4.85, 0.20},
	{"PVC00418", "PVC DWV Fittings", `4" PVC DWV 45° Elbow`, `4"`, "EA", 7.95, 0.22},

	// DWV sanitary tees
	{"PVC00422", "PVC DWV Fittings", `1-1/2" PVC DWV Sanitary Tee`, `1-1/2"`, "EA", 3.25, 0.20},
	{"PVC00424", "PVC DWV Fittings", `2" PVC DWV Sanitary Tee`, `2"`, "EA", 4.50, 0.22},
	{"PVC00426", "PVC DWV Fittings", `3" PVC DWV Sanitary Tee`, `3"`, "EA", 8.75, 0.25},
	{"PVC00428", "PVC DWV Fittings", `4" PVC DWV Sanitary Tee`, `4"`, "EA", 14.50, 0.28},

	// DWV wyes
	{"PVC00432", "PVC DWV Fittings", `1-1/2" PVC DWV Wye`, `1-1/2"`, "EA", 3.50, 0.20},
	{"PVC00434", "PVC DWV Fittings", `2" PVC DWV Wye`, `2"`, "EA", 4.85, 0.22},
	{"PVC00436", "PVC DWV Fittings", `3" PVC DWV Wye`, `3"`, "EA", 9.25, 0.25},
	{"PVC00438", "PVC DWV Fittings", `4" PVC DWV Wye`, `4"`, "EA", 15.75, 0.28},

	// DWV couplings
	{"PVC00442", "PVC DWV Fittings", `1-1/2" PVC DWV Coupling`, `1-1/2"`, "EA", 1.25, 0.10},
	{"PVC00444", "PVC DWV Fittings", `2" PVC DWV Coupling`, `2"`, "EA", 1.65, 0.12},
	{"PVC00446", "PVC DWV Fittings", `3" PVC DWV Coupling`, `3"`, "EA", 2.95, 0.14},
	{"PVC00448", "PVC DWV Fittings", `4" PVC DWV Coupling`, `4"`, "EA", 4.25, 0.16},

	// DWV P-traps
	{"PVC00452", "PVC DWV Fittings", `1-1/2" PVC DWV P-Trap`, `1-1/2"`, "EA", 4.50, 0.25},
	{"PVC00454", "PVC DWV Fittings", `2" PVC DWV P-Trap`, `2"`, "EA", 6.25, 0.28},

	// DWV cleanouts
	{"PVC00464", "PVC DWV Fittings", `2" PVC DWV Cleanout Adapter`, `2"`, "EA", 3.85, 0.20},
	{"PVC00466", "PVC DWV Fittings", `3" PVC DWV Cleanout Adapter`, `3"`, "EA", 6.50, 0.22},
	{"PVC00468", "PVC DWV Fittings", `4" PVC DWV Cleanout Adapter`, `4"`, "EA", 9.75, 0.25},
}

// DefaultMaterials builds the starter catalog rows for a company.
func DefaultMaterials(companyID uuid.UUID) []Material {
	materials := make([]Material, 0, len(defaultPricebook))
	for _, e := range defaultPricebook {
		materials = append(materials, Material{
			CompanyID:   companyID,
			PartNumber:  e.PartNumber,
			Category:    e.Category,
			Description: e.Description,
			Size:        e.Size,
			Unit:        e.Unit,
			ListPrice:   e.ListPrice,
			LaborUnits:  e.LaborUnits,
			IsActive:    true,
		})
	}
	return materials
}
