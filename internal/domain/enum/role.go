package enum

import (
	"encoding/json"
	"fmt"
)

// Role is a staff user's role. RoleSeller is the restricted role.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleSeller Role = "SELLER"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleSeller
}

// IsRestricted reports whether the role only sees its own invoices and no purchase prices.
func (r Role) IsRestricted() bool {
	return r != RoleAdmin
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	v := Role(str)
	if !v.IsValid() {
		return fmt.Errorf("invalid role %q", str)
	}
	*r = v
	return nil
}
