package bank

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_statusCell_Transition(t *testing.T) {
	var cell statusCell
	assert.Equal(t, Created, cell.load())

	assert.True(t, cell.transition(Running, Created, Stopped))
	assert.False(t, cell.transition(Running, Created, Stopped))
	assert.True(t, cell.transition(Interrupting, Running))
	assert.True(t, cell.transition(Stopped, Interrupting))
	assert.True(t, cell.transition(Running, Created, Stopped))
	assert.Equal(t, Running, cell.load())
}

func Test_Status_String(t *testing.T) {
	assert.Equal(t, "created", Created.String())
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "interrupting", Interrupting.String())
	assert.Equal(t, "stopped", Stopped.String())
	assert.Equal(t, "unknown", Status(42).String())
}
