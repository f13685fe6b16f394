package utils_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/portscheduler-go/pkg/utils"
)

func TestGenerateRunID(t *testing.T) {
	id := utils.GenerateRunID("simulate")

	assert.Regexp(t, regexp.MustCompile(`^simulate-[0-9a-f]{8}$`), id)
	assert.NotEqual(t, id, utils.GenerateRunID("simulate"))
}

func TestGenerateSessionID(t *testing.T) {
	assert.Regexp(t, `^search-d3-t17-[0-9a-f]{8}$`, utils.GenerateSessionID(3, 17))
}
