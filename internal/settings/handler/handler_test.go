package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"payout/internal/settings/handler/mocks"
	"payout/internal/settings/models"
	settingsservice "payout/internal/settings/service"
	"payout/pkg/domain"
	"payout/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type HandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
	caller  domain.Address
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.caller = testutil.Addr(1)
	s.router = chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
}

func (s *HandlerSuite) do(method, path string, body any) *testutil.Response {
	req := testutil.NewJSONRequest(s.T(), method, path, body)
	return testutil.Do(s.T(), s.router, testutil.WithCaller(req, s.caller))
}

func (s *HandlerSuite) TestGet() {
	s.service.EXPECT().Current(gomock.Any()).Return(&models.Settings{
		WithdrawalFrequencyLimit: 10,
		ConfirmationsRequired:    3,
		OracleAddress:            testutil.Addr(9),
		DeployedAt:               time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}, nil)

	resp := s.do(http.MethodGet, "/settings", nil)

	s.Equal(http.StatusOK, resp.Code)
	s.EqualValues(10, resp.JSON["withdrawal_frequency_limit"])
	s.EqualValues(3, resp.JSON["confirmations_required"])
	s.Equal(testutil.Addr(9).Hex(), resp.JSON["oracle_address"])
}

func (s *HandlerSuite) TestUpdates() {
	s.Run("frequency limit", func() {
		s.service.EXPECT().UpdateWithdrawalFrequencyLimit(gomock.Any(), s.caller, uint64(20)).Return(nil)
		resp := s.do(http.MethodPut, "/settings/withdrawal-frequency-limit", map[string]any{"value": 20})
		s.Equal(http.StatusNoContent, resp.Code)
	})

	s.Run("confirmations required", func() {
		s.service.EXPECT().UpdateConfirmationsRequired(gomock.Any(), s.caller, uint32(5)).Return(nil)
		resp := s.do(http.MethodPut, "/settings/confirmations-required", map[string]any{"value": 5})
		s.Equal(http.StatusNoContent, resp.Code)
	})

	s.Run("deviation above uint32 is rejected before the service", func() {
		resp := s.do(http.MethodPut, "/settings/confirmations-deviation", map[string]any{"value": uint64(1) << 33})
		s.Equal(http.StatusBadRequest, resp.Code)
	})

	s.Run("missing value is rejected", func() {
		resp := s.do(http.MethodPut, "/settings/confirmations-deviation", map[string]any{})
		s.Equal(http.StatusBadRequest, resp.Code)
	})

	s.Run("oracle address", func() {
		oracle := testutil.Addr(7)
		s.service.EXPECT().UpdateOracleAddress(gomock.Any(), s.caller, oracle).Return(nil)
		resp := s.do(http.MethodPut, "/settings/oracle-address", map[string]any{"address": oracle.Hex()})
		s.Equal(http.StatusNoContent, resp.Code)
	})

	s.Run("non admin maps to 403", func() {
		s.service.EXPECT().UpdateWithdrawalFrequencyLimit(gomock.Any(), s.caller, uint64(1)).Return(settingsservice.ErrNotAdmin)
		resp := s.do(http.MethodPut, "/settings/withdrawal-frequency-limit", map[string]any{"value": 1})
		s.Equal(http.StatusForbidden, resp.Code)
	})
}
