package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_FallsBackToDefault(t *testing.T) {
	assert.Equal(t, "gold", Lookup("gold").ID)
	assert.Equal(t, Default, Lookup("").ID)
	assert.Equal(t, Default, Lookup("chartreuse").ID)
	assert.True(t, Exists("blue"))
	assert.False(t, Exists("chartreuse"))
}

func TestHSL_Hex(t *testing.T) {
	assert.Equal(t, "#ffffff", HSL{0, 0, 100}.Hex())
	assert.Equal(t, "#000000", HSL{0, 0, 0}.Hex())
	assert.Equal(t, "#ff0000", HSL{0, 100, 50}.Hex())
	assert.Equal(t, "#0000ff", HSL{240, 100, 50}.Hex())
	assert.Equal(t, "#00ff00", HSL{120, 100, 50}.Hex())
}

func TestHSL_RGB(t *testing.T) {
	r, g, b := HSL{346, 77, 50}.RGB()
	assert.Equal(t, [3]uint8{0xe2, 0x1d, 0x4b}, [3]uint8{r, g, b})
}

func TestAll(t *testing.T) {
	all := All()
	require.Len(t, all, 5)
	assert.Equal(t, Default, all[0].ID)
	for _, th := range all {
		assert.NotEmpty(t, th.Name)
		assert.NotEmpty(t, th.Emoji)
	}

	all[0].ID = "changed"
	assert.Equal(t, Default, All()[0].ID)
}
