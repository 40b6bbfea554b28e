package enum_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/beautypos-api/internal/domain/enum"
)

func TestBillingType_UnmarshalJSON(t *testing.T) {
	var b enum.BillingType
	require.NoError(t, json.Unmarshal([]byte(`"PER_HOUR"`), &b))
	assert.Equal(t, enum.BillingPerHour, b)
	assert.True(t, b.IsTimed())

	assert.Error(t, json.Unmarshal([]byte(`"HOURLY"`), &b))
}

func TestParseInvoiceStatus(t *testing.T) {
	s, err := enum.ParseInvoiceStatus("VALIDATED")
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusValidated, s)

	_, err = enum.ParseInvoiceStatus("PAID")
	assert.Error(t, err)
}

func TestRole_IsRestricted(t *testing.T) {
	assert.False(t, enum.RoleAdmin.IsRestricted())
	assert.True(t, enum.RoleSeller.IsRestricted())
}
