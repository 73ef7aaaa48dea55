package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"lendvault/internal/errors"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

type PanicRecoveryTestSuite struct {
	suite.Suite
	echo *echo.Echo
}

func (s *PanicRecoveryTestSuite) SetupTest() {
	s.echo = echo.New()
}

func TestPanicRecoveryTestSuite(t *testing.T) {
	suite.Run(t, new(PanicRecoveryTestSuite))
}

func (s *PanicRecoveryTestSuite) recoverFrom(panicWith interface{}, traceID string) (*httptest.ResponseRecorder, errors.ErrorResponse) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions/deposit", nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	if traceID != "" {
		c.Set(TraceIDContextKey, traceID)
	}

	handler := PanicRecovery()(func(c echo.Context) error {
		panic(panicWith)
	})

	s.NotPanics(func() {
		_ = handler(c)
	})

	var response errors.ErrorResponse
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &response))
	return rec, response
}

func (s *PanicRecoveryTestSuite) TestRecoversWithSystemError() {
	rec, response := s.recoverFrom("ledger state corrupted", "trace-panic-1")

	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Equal("SYSTEM_001", response.Error.Code)
	s.Equal("trace-panic-1", response.Error.TraceID)
	// Internals never leak into the body
	s.NotContains(rec.Body.String(), "ledger state corrupted")
}

func (s *PanicRecoveryTestSuite) TestMissingTraceIDFallsBackToUnknown() {
	rec, response := s.recoverFrom("boom", "")

	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Equal("unknown", response.Error.TraceID)
}

func (s *PanicRecoveryTestSuite) TestRecoversFromArbitraryPanicValues() {
	for _, panicWith := range []interface{}{
		"string panic",
		42,
		struct{ msg string }{"error"},
		nil,
	} {
		rec, response := s.recoverFrom(panicWith, "trace-panic-2")
		s.Equal(http.StatusInternalServerError, rec.Code)
		s.Equal("SYSTEM_001", response.Error.Code)
	}
}

func (s *PanicRecoveryTestSuite) TestLeavesHealthyRequestsAlone() {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)

	handler := PanicRecovery()(func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	s.NoError(handler(c))
	s.Equal(http.StatusOK, rec.Code)
}
