package enum

// LineType tells whether an invoice line bills a product or a service
type LineType string

const (
	LineTypeProduct LineType = "PRODUCT"
	LineTypeService LineType = "SERVICE"
)

func (t LineType) String() string {
	return string(t)
}
