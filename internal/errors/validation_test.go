package errors_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/deadgrid/internal/errors"
)

type ValidationTestSuite struct {
	suite.Suite
}

func TestValidationSuite(t *testing.T) {
	suite.Run(t, new(ValidationTestSuite))
}

func (s *ValidationTestSuite) TestBuilderCollectsFields() {
	vb := errors.NewValidationBuilder()
	errors.ValidateRange("simulation.width", 2, 8, 256, vb)
	errors.ValidateMin("simulation.turns_per_day", 0, 1, vb)
	errors.ValidateProbability("threat.wander_chance", 1.5, vb)
	errors.ValidateRequired("server.feed_address", " ", vb)

	err := vb.Build()
	s.Require().Error(err)
	s.Assert().True(errors.IsInvalidArgument(err))
	s.Assert().Contains(err.Error(), "simulation.width: must be between 8 and 256")
	s.Assert().Contains(err.Error(), "simulation.turns_per_day: must be at least 1")
	s.Assert().Contains(err.Error(), "threat.wander_chance")
	s.Assert().Contains(err.Error(), "server.feed_address: is required")
	s.Assert().NotNil(errors.GetMeta(err)["validation_errors"])
}

func (s *ValidationTestSuite) TestBuilderNoErrors() {
	vb := errors.NewValidationBuilder()
	errors.ValidateRange("simulation.width", 20, 8, 256, vb)
	errors.ValidateProbability("threat.wander_chance", 0.2, vb)
	s.Assert().NoError(vb.Build())
}

func (s *ValidationTestSuite) TestErrorMessageIsOrdered() {
	vb := errors.NewValidationBuilder()
	vb.Field("b", "bad").Field("a", "bad")
	s.Assert().Equal("INVALID_ARGUMENT: validation failed: a: bad; b: bad", vb.Build().Error())
}
