package clipboard

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/jsonlens/internal/errors"
)

func TestNew(t *testing.T) {
	assert.IsType(t, System{}, New(true))
	assert.IsType(t, Disabled{}, New(false))
}

func TestDisabled(t *testing.T) {
	err := Disabled{}.WriteAll("x")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.NewClipboardError("", nil)))
}

func TestMemory(t *testing.T) {
	m := &Memory{}
	require.NoError(t, m.WriteAll("a\t1\n"))
	require.NoError(t, m.WriteAll("b\t2\n"))
	assert.Equal(t, "b\t2\n", m.Text)
	assert.Equal(t, 2, m.Writes)

	m.Err = stderrors.New("permission denied")
	assert.Error(t, m.WriteAll("c"))
	assert.Equal(t, "b\t2\n", m.Text, "failed write leaves previous text")
}
