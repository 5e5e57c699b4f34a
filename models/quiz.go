package models

// QuizAnswer is one submission of the recommendation quiz. Empty WanPref and
// PricePref mean the user expressed no preference.
type QuizAnswer struct {
	Coverage   string `json:"coverage" validate:"required"`
	DeviceLoad string `json:"deviceLoad" validate:"required"`
	PrimaryUse string `json:"primaryUse" validate:"required"`
	MeshNeed   bool   `json:"meshNeed"`
	WanPref    string `json:"wanPref,omitempty"`
	PricePref  string `json:"pricePref,omitempty"`
}

// NewQuizAnswer maps the three quiz form fields to an answer. Large homes are
// assumed to need mesh.
func NewQuizAnswer(coverage, deviceLoad, primaryUse string) QuizAnswer {
	return QuizAnswer{
		Coverage:   coverage,
		DeviceLoad: deviceLoad,
		PrimaryUse: primaryUse,
		MeshNeed:   coverage == CoverageLarge,
	}
}
