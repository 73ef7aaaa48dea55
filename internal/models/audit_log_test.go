package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONBMap_ValueAndScan(t *testing.T) {
	original := JSONBMap{
		"amount":           "100.00",
		"transaction_type": "deposit",
		"mirrored":         true,
	}

	value, err := original.Value()
	require.NoError(t, err)
	require.IsType(t, "", value)

	var scanned JSONBMap
	require.NoError(t, scanned.Scan(value))

	assert.Equal(t, "100.00", scanned["amount"])
	assert.Equal(t, "deposit", scanned["transaction_type"])
	assert.Equal(t, true, scanned["mirrored"])
}

func TestJSONBMap_EmptyValue(t *testing.T) {
	var empty JSONBMap

	value, err := empty.Value()
	require.NoError(t, err)
	assert.Nil(t, value)

	var scanned JSONBMap
	require.NoError(t, scanned.Scan(nil))
	assert.Nil(t, scanned)
}

func TestJSONBMap_ScanRejectsUnknownType(t *testing.T) {
	var m JSONBMap
	err := m.Scan(42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot scan")
}

func TestAuditLog_SetMetadata(t *testing.T) {
	log := AuditLog{
		Action:   AuditActionTransactionCompleted,
		Resource: "transaction",
	}

	log.SetMetadata("reference_number", "TXN-ABCD1234-20260828120000")
	log.SetMetadata("amount", "500.00")

	require.NotNil(t, log.Metadata)
	assert.Equal(t, "500.00", log.Metadata["amount"])
}

func TestAuditLog_String(t *testing.T) {
	userID := uuid.New()

	withUser := AuditLog{
		UserID:   &userID,
		Action:   AuditActionAccountCreated,
		Resource: "account",
	}
	assert.Contains(t, withUser.String(), userID.String())

	system := AuditLog{
		Action:   AuditActionBalanceUpdated,
		Resource: "account",
	}
	assert.Contains(t, system.String(), "system")
}
