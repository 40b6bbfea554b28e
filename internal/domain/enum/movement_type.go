package enum

// MovementType is the direction of a stock movement
type MovementType string

const (
	MovementIn  MovementType = "IN"
	MovementOut MovementType = "OUT"
)

func (t MovementType) String() string {
	return string(t)
}
