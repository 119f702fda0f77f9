package domain

// StandardScale is an immutable catalog entry. The ratio is drawing units per
// real-world unit at the stated print scale; for imperial scales it is the
// number of pixels per foot when the page renders at 96 DPI.
type StandardScale struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Ratio  float64     `json:"ratio"`
	Family ScaleFamily `json:"type"`
}

// StandardScales is the fixed catalog of common architectural, engineering
// and metric drawing scales. Never mutated at runtime.
var StandardScales = []StandardScale{
	{ID: "arch_3_32", Name: `3/32" = 1'-0"`, Ratio: 128, Family: ScaleFamilyArchitectural},
	{ID: "arch_1_8", Name: `1/8" = 1'-0"`, Ratio: 96, Family: ScaleFamilyArchitectural},
	{ID: "arch_3_16", Name: `3/16" = 1'-0"`, Ratio: 64, Family: ScaleFamilyArchitectural},
	{ID: "arch_1_4", Name: `1/4" = 1'-0"`, Ratio: 48, Family: ScaleFamilyArchitectural},
	{ID: "arch_3_8", Name: `3/8" = 1'-0"`, Ratio: 32, Family: ScaleFamilyArchitectural},
	{ID: "arch_1_2", Name: `1/2" = 1'-0"`, Ratio: 24, Family: ScaleFamilyArchitectural},
	{ID: "arch_3_4", Name: `3/4" = 1'-0"`, Ratio: 16, Family: ScaleFamilyArchitectural},
	{ID: "arch_1", Name: `1" = 1'-0"`, Ratio: 12, Family: ScaleFamilyArchitectural},
	{ID: "arch_1_5", Name: `1-1/2" = 1'-0"`, Ratio: 8, Family: ScaleFamilyArchitectural},
	{ID: "arch_3", Name: `3" = 1'-0"`, Ratio: 4, Family: ScaleFamilyArchitectural},

	{ID: "eng_10", Name: `1" = 10'`, Ratio: 120, Family: ScaleFamilyEngineering},
	{ID: "eng_20", Name: `1" = 20'`, Ratio: 240, Family: ScaleFamilyEngineering},
	{ID: "eng_30", Name: `1" = 30'`, Ratio: 360, Family: ScaleFamilyEngineering},
	{ID: "eng_40", Name: `1" = 40'`, Ratio: 480, Family: ScaleFamilyEngineering},
	{ID: "eng_50", Name: `1" = 50'`, Ratio: 600, Family: ScaleFamilyEngineering},
	{ID: "eng_60", Name: `1" = 60'`, Ratio: 720, Family: ScaleFamilyEngineering},
	{ID: "eng_100", Name: `1" = 100'`, Ratio: 1200, Family: ScaleFamilyEngineering},

	{ID: "metric_1_100", Name: "1:100", Ratio: 100, Family: ScaleFamilyMetric},
	{ID: "metric_1_50", Name: "1:50", Ratio: 50, Family: ScaleFamilyMetric},
	{ID: "metric_1_20", Name: "1:20", Ratio: 20, Family: ScaleFamilyMetric},
	{ID: "metric_1_10", Name: "1:10", Ratio: 10, Family: ScaleFamilyMetric},
	{ID: "metric_1_5", Name: "1:5", Ratio: 5, Family: ScaleFamilyMetric},
}

// StandardScaleByID looks up a catalog entry by its identifier.
func StandardScaleByID(id string) (StandardScale, bool) {
	for _, s := range StandardScales {
		if s.ID == id {
			return s, true
		}
	}
	return StandardScale{}, false
}
