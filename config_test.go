package apftune

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetTargetAPF_SingleSetSucceeds(t *testing.T) {
	resetTargetAPFForTest()
	t.Cleanup(resetTargetAPFForTest)

	assert.NotPanics(t, func() {
		SetTargetAPF(500)
	})
	assert.Equal(t, 500, targetAPF())
}

func TestSetTargetAPF_DoubleSetPanics(t *testing.T) {
	resetTargetAPFForTest()
	t.Cleanup(resetTargetAPFForTest)

	SetTargetAPF(500)
	assert.PanicsWithError(t, "apftune: target apf already set", func() {
		SetTargetAPF(1000)
	})
}

func TestTargetAPF_PanicsWhenUnconfigured(t *testing.T) {
	resetTargetAPFForTest()
	t.Cleanup(resetTargetAPFForTest)

	assert.PanicsWithError(t, "apftune: target apf not configured, call SetTargetAPF first", func() {
		targetAPF()
	})
}
