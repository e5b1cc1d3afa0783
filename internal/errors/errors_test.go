package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/KirkDiggler/deadgrid/internal/errors"
)

type ErrorsTestSuite struct {
	suite.Suite
}

func TestErrorsSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}

func (s *ErrorsTestSuite) TestNewError() {
	testCases := []struct {
		name     string
		code     errors.Code
		message  string
		expected string
	}{
		{
			name:     "not found error",
			code:     errors.CodeNotFound,
			message:  "playthrough not found",
			expected: "NOT_FOUND: playthrough not found",
		},
		{
			name:     "invalid argument error",
			code:     errors.CodeInvalidArgument,
			message:  "unknown direction",
			expected: "INVALID_ARGUMENT: unknown direction",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			err := errors.New(tc.code, tc.message)
			s.Assert().Equal(tc.expected, err.Error())
			s.Assert().Equal(tc.code, err.Code)
			s.Assert().Equal(tc.message, err.Message)
		})
	}
}

func (s *ErrorsTestSuite) TestWrap() {
	baseErr := fmt.Errorf("redis connection refused")
	wrapped := errors.Wrap(baseErr, "failed to load journal")

	s.Assert().Equal(errors.CodeInternal, wrapped.Code)
	s.Assert().Equal("failed to load journal", wrapped.Message)
	s.Assert().Equal(baseErr, wrapped.Unwrap())
}

func (s *ErrorsTestSuite) TestWrapPreservesCodeAndReason() {
	baseErr := errors.InvalidAction(errors.ReasonBlocked, "tile is occupied")
	wrapped := errors.Wrapf(baseErr, "playthrough %s", "pt_1")

	s.Assert().Equal(errors.CodeFailedPrecondition, wrapped.Code)
	s.Assert().Equal(errors.ReasonBlocked, errors.GetReason(wrapped))
	s.Assert().True(errors.IsInvalidAction(wrapped))
}

func (s *ErrorsTestSuite) TestWrapWithCode() {
	baseErr := fmt.Errorf("zstd: invalid header")
	wrapped := errors.WrapWithCode(baseErr, errors.CodeDataLoss, "journal corrupted")

	s.Assert().Equal(errors.CodeDataLoss, wrapped.Code)
	s.Assert().Equal(baseErr, wrapped.Unwrap())
}

func (s *ErrorsTestSuite) TestWrapNil() {
	s.Assert().Nil(errors.Wrap(nil, "should be nil"))
	s.Assert().Nil(errors.WrapWithCode(nil, errors.CodeNotFound, "should be nil"))
}

func (s *ErrorsTestSuite) TestInvalidActionCodes() {
	testCases := []struct {
		reason errors.Reason
		code   errors.Code
	}{
		{errors.ReasonNotYourTurn, errors.CodeFailedPrecondition},
		{errors.ReasonOutOfRange, errors.CodeFailedPrecondition},
		{errors.ReasonInsufficientAmmo, errors.CodeFailedPrecondition},
		{errors.ReasonGameOver, errors.CodeFailedPrecondition},
		{errors.ReasonUnknownAction, errors.CodeInvalidArgument},
		{errors.ReasonUnknownChoice, errors.CodeInvalidArgument},
	}

	for _, tc := range testCases {
		s.Run(string(tc.reason), func() {
			err := errors.InvalidAction(tc.reason, "declined")
			s.Assert().Equal(tc.code, err.Code)
			s.Assert().Equal(tc.reason, errors.GetReason(err))
		})
	}
}

func (s *ErrorsTestSuite) TestReasonHelpers() {
	s.Assert().True(errors.IsNotYourTurn(errors.InvalidAction(errors.ReasonNotYourTurn, "x")))
	s.Assert().False(errors.IsNotYourTurn(errors.InvalidAction(errors.ReasonBlocked, "x")))
	s.Assert().True(errors.IsGameOver(errors.InvalidAction(errors.ReasonGameOver, "x")))
	s.Assert().False(errors.IsInvalidAction(errors.NotFound("x")))
	s.Assert().False(errors.IsInvalidAction(nil))
	s.Assert().Equal(errors.Reason(""), errors.GetReason(fmt.Errorf("plain")))
}

func (s *ErrorsTestSuite) TestErrorIs() {
	err1 := errors.NotFound("a")
	err2 := errors.NotFound("b")
	err3 := errors.InvalidArgument("a")

	s.Assert().True(err1.Is(err2))
	s.Assert().False(err1.Is(err3))
	s.Assert().True(errors.Is(errors.Wrap(err1, "wrapped"), err2))
}

func (s *ErrorsTestSuite) TestGetCode() {
	err := errors.NotFound("test")
	wrapped := errors.Wrap(err, "wrapped")

	s.Assert().Equal(errors.CodeNotFound, errors.GetCode(err))
	s.Assert().Equal(errors.CodeNotFound, errors.GetCode(wrapped))
	s.Assert().Equal(errors.CodeInternal, errors.GetCode(fmt.Errorf("standard error")))
	s.Assert().Equal(errors.CodeOK, errors.GetCode(nil))
}

func (s *ErrorsTestSuite) TestGetMessage() {
	err := errors.NotFound("playthrough gone")
	wrapped := errors.Wrap(err, "wrapped message")

	s.Assert().Equal("playthrough gone", errors.GetMessage(err))
	s.Assert().Equal("wrapped message", errors.GetMessage(wrapped))
	s.Assert().Equal("standard error", errors.GetMessage(fmt.Errorf("standard error")))
}

func (s *ErrorsTestSuite) TestGRPCRoundTripKeepsReason() {
	err := errors.InvalidAction(errors.ReasonNotYourTurn, "an event choice is pending").
		WithMeta("phase", "pending_event_choice")

	grpcErr := errors.ToGRPCError(err)
	st, ok := status.FromError(grpcErr)
	s.Require().True(ok)
	s.Assert().Equal(codes.FailedPrecondition, st.Code())
	s.Assert().Equal("an event choice is pending", st.Message())

	back := errors.FromGRPCError(grpcErr)
	s.Assert().Equal(errors.CodeFailedPrecondition, errors.GetCode(back))
	s.Assert().True(errors.IsNotYourTurn(back))
	s.Assert().Equal("pending_event_choice", errors.GetMeta(back)["phase"])
}

func (s *ErrorsTestSuite) TestToGRPCErrorPlain() {
	s.Assert().Nil(errors.ToGRPCError(nil))

	st, ok := status.FromError(errors.ToGRPCError(fmt.Errorf("boom")))
	s.Require().True(ok)
	s.Assert().Equal(codes.Internal, st.Code())

	already := status.Error(codes.NotFound, "missing")
	s.Assert().Equal(already, errors.ToGRPCError(already))
}

func (s *ErrorsTestSuite) TestCodeMappings() {
	testCases := []struct {
		code errors.Code
		grpc codes.Code
		http int
	}{
		{errors.CodeNotFound, codes.NotFound, 404},
		{errors.CodeInvalidArgument, codes.InvalidArgument, 400},
		{errors.CodeFailedPrecondition, codes.FailedPrecondition, 412},
		{errors.CodeInternal, codes.Internal, 500},
		{errors.CodeUnavailable, codes.Unavailable, 503},
	}

	for _, tc := range testCases {
		s.Run(string(tc.code), func() {
			s.Assert().Equal(tc.grpc, tc.code.GRPCCode())
			s.Assert().Equal(tc.http, tc.code.HTTPStatus())
		})
	}
}
