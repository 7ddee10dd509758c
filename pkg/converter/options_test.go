package converter_test

import (
	"testing"

	"github.com/stackvity/json2csv/pkg/converter"
	"github.com/stretchr/testify/assert"
)

func TestPointerHelpers(t *testing.T) {
	b := converter.Bool(false)
	s := converter.String("")
	assert.False(t, *b)
	assert.Equal(t, "", *s)
	assert.NotSame(t, converter.Bool(true), converter.Bool(true), "every call returns a fresh pointer")
}

func TestNoOpHooks(t *testing.T) {
	var h converter.Hooks = &converter.NoOpHooks{}
	assert.NoError(t, h.OnFileStatusUpdate("a.json", converter.StatusSuccess, "", 0))
	assert.NoError(t, h.OnRunComplete(converter.Report{}))
}
