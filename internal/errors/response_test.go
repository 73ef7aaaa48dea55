package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewErrorResponse(t *testing.T) {
	response := NewErrorResponse(AccountNotFound, "trace-123")

	assert.Equal(t, string(AccountNotFound), response.Error.Code)
	assert.Equal(t, GetErrorMessage(AccountNotFound), response.Error.Message)
	assert.Equal(t, "trace-123", response.Error.TraceID)
	assert.Empty(t, response.Error.Details)
}

func TestNewErrorResponse_WithOptions(t *testing.T) {
	response := NewErrorResponse(ValidationGeneral, "trace-456",
		WithMessage("custom message"),
		WithDetails("amount: must be positive", "owner_id: required"),
	)

	assert.Equal(t, "custom message", response.Error.Message)
	assert.Len(t, response.Error.Details, 2)
}

func TestNewValidationError(t *testing.T) {
	response := NewValidationError(map[string]string{
		"amount": "must be a valid amount",
	}, "trace-789")

	assert.Equal(t, string(ValidationGeneral), response.Error.Code)
	require.Len(t, response.Error.Details, 1)
	assert.Equal(t, "amount: must be a valid amount", response.Error.Details[0])
}

func TestWrapSystemError(t *testing.T) {
	internal := stderrors.New("connection pool exhausted")

	response, err := WrapSystemError(internal, "trace-abc")

	// The internal error comes back for logging, never in the response body
	assert.Equal(t, internal, err)
	assert.Equal(t, string(SystemInternalError), response.Error.Code)
	assert.NotContains(t, response.Error.Message, "connection pool")
}

func TestWrapDatabaseError(t *testing.T) {
	internal := stderrors.New("pq: duplicate key value")

	response, err := WrapDatabaseError(internal, "trace-def")

	assert.Equal(t, internal, err)
	assert.Equal(t, string(SystemDatabaseError), response.Error.Code)
	assert.NotContains(t, response.Error.Message, "pq:")
}

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ValidationGeneral, http.StatusBadRequest},
		{OwnerInvalidID, http.StatusBadRequest},
		{TransactionInvalidAmount, http.StatusBadRequest},
		{OwnerNotFound, http.StatusNotFound},
		{AccountNotFound, http.StatusNotFound},
		{TransactionNotFound, http.StatusNotFound},
		{CollateralNotFound, http.StatusNotFound},
		{TransactionInvalidTransition, http.StatusConflict},
		{CollateralInvalidTransition, http.StatusConflict},
		{AccountInactive, http.StatusUnprocessableEntity},
		{TransactionInsufficientBalance, http.StatusUnprocessableEntity},
		{CollateralLimitExceeded, http.StatusUnprocessableEntity},
		{SettlementInsufficientFund, http.StatusUnprocessableEntity},
		{SystemRateLimitExceeded, http.StatusTooManyRequests},
		{SettlementFailure, http.StatusBadGateway},
		{SystemServiceUnavailable, http.StatusServiceUnavailable},
		{SystemInternalError, http.StatusInternalServerError},
		{SystemDatabaseError, http.StatusInternalServerError},
		{ErrorCode("UNKNOWN_999"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.code))
		})
	}
}

func TestErrorResponse_ClassifyAndSerialize(t *testing.T) {
	client := NewErrorResponse(AccountNotFound, "trace-1")
	assert.True(t, client.IsClientError())
	assert.False(t, client.IsServerError())

	server := NewErrorResponse(SystemInternalError, "trace-2")
	assert.True(t, server.IsServerError())
	assert.False(t, server.IsClientError())

	data, err := client.ToJSON()
	require.NoError(t, err)

	var decoded ErrorResponse
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, string(AccountNotFound), decoded.Error.Code)
	assert.Equal(t, "trace-1", decoded.Error.TraceID)
}
