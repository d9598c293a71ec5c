package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCronSchedule_AcceptsStandardExpression(t *testing.T) {
	assert.NoError(t, ValidateCronSchedule("30 5 * * *"))
	assert.NoError(t, ValidateCronSchedule("*/15 * * * *"))
}

func TestValidateCronSchedule_RejectsEmptyAndMalformed(t *testing.T) {
	assert.Error(t, ValidateCronSchedule(""))
	assert.Error(t, ValidateCronSchedule("not a schedule"))
}

func TestValidateTimezone_AcceptsKnownIANAName(t *testing.T) {
	assert.NoError(t, ValidateTimezone("UTC"))
	assert.NoError(t, ValidateTimezone("America/New_York"))
}

func TestValidateTimezone_RejectsEmptyAndUnknown(t *testing.T) {
	assert.Error(t, ValidateTimezone(""))
	assert.Error(t, ValidateTimezone("Not/A_Zone"))
}
