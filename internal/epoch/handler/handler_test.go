package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"payout/internal/epoch"
	"payout/internal/epoch/handler/mocks"
	"payout/pkg/domain"
	"payout/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Oracle Reporter

type HandlerSuite struct {
	suite.Suite
	oracle   *mocks.MockOracle
	reporter *mocks.MockReporter
	router   chi.Router
	caller   domain.Address
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.oracle = mocks.NewMockOracle(ctrl)
	s.reporter = mocks.NewMockReporter(ctrl)
	s.caller = testutil.Addr(9)
	s.router = chi.NewRouter()
	New(s.oracle, s.reporter, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
}

func (s *HandlerSuite) do(method string, body any) *testutil.Response {
	req := testutil.NewJSONRequest(s.T(), method, "/epoch", body)
	return testutil.Do(s.T(), s.router, testutil.WithCaller(req, s.caller))
}

func (s *HandlerSuite) TestGet() {
	s.oracle.EXPECT().CurrentPeriod(gomock.Any()).Return(domain.Period(210), nil)

	resp := s.do(http.MethodGet, nil)

	s.Equal(http.StatusOK, resp.Code)
	s.EqualValues(210, resp.JSON["period"])
}

func (s *HandlerSuite) TestGet_OracleUnavailable() {
	s.oracle.EXPECT().CurrentPeriod(gomock.Any()).Return(domain.Period(0), errors.New("redis down"))

	resp := s.do(http.MethodGet, nil)

	s.Equal(http.StatusInternalServerError, resp.Code)
}

func (s *HandlerSuite) TestReport() {
	s.Run("advances", func() {
		s.reporter.EXPECT().Report(gomock.Any(), s.caller, domain.Period(211)).Return(nil)
		resp := s.do(http.MethodPost, map[string]any{"period": 211})
		s.Equal(http.StatusNoContent, resp.Code)
	})

	s.Run("missing period", func() {
		resp := s.do(http.MethodPost, map[string]any{})
		s.Equal(http.StatusBadRequest, resp.Code)
	})

	s.Run("not oracle", func() {
		s.reporter.EXPECT().Report(gomock.Any(), s.caller, domain.Period(212)).Return(epoch.ErrNotOracle)
		resp := s.do(http.MethodPost, map[string]any{"period": 212})
		s.Equal(http.StatusForbidden, resp.Code)
	})

	s.Run("regression", func() {
		s.reporter.EXPECT().Report(gomock.Any(), s.caller, domain.Period(1)).Return(epoch.ErrPeriodRegressed)
		resp := s.do(http.MethodPost, map[string]any{"period": 1})
		s.Equal(http.StatusBadRequest, resp.Code)
	})
}
