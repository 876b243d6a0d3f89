package menu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_RoundTrip(t *testing.T) {
	tests := []State{
		{Page: 1, Menu: "fruits", Selection: true},
		{Page: 2, Menu: "fruits", Selection: false},
		{Page: 99, Menu: "Some_Menu", Selection: true},
		{Page: 123456789, Menu: "_", Selection: false},
	}
	for _, st := range tests {
		t.Run(st.Encode(), func(t *testing.T) {
			require.NoError(t, st.Validate())
			got, err := Decode(st.Encode())
			require.NoError(t, err)
			assert.Equal(t, st, got)
		})
	}
}

func TestState_Encode(t *testing.T) {
	assert.Equal(t, "Page: 1 List: fruits Selection: True", State{1, "fruits", true}.Encode())
	assert.Equal(t, "Page: 2 List: rules Selection: False", State{2, "rules", false}.Encode())
}

func TestState_Validate(t *testing.T) {
	assert.ErrorIs(t, State{Page: 0, Menu: "x"}.Validate(), ErrPageOutOfRange)
	assert.ErrorIs(t, State{Page: 10, Menu: "x"}.Validate(), ErrPageOutOfRange)
	assert.ErrorIs(t, State{Page: 105, Menu: "x"}.Validate(), ErrPageOutOfRange)
	assert.ErrorIs(t, State{Page: 1, Menu: "x1"}.Validate(), ErrInvalidMenu)
}

func TestDecode_Corrupt(t *testing.T) {
	for _, footer := range []string{
		"",
		"Page: 0 List: fruits Selection: True",
		"Page: 10 List: fruits Selection: True",
		"Page: 1 List: fruits Selection: true",
		"Page: 1 List: fru1ts Selection: True",
		"Page: 1 List: fruits Selection: True ",
		"xPage: 1 List: fruits Selection: True",
		"Page: 99999999999999999999 List: fruits Selection: True",
	} {
		t.Run(footer, func(t *testing.T) {
			_, err := Decode(footer)
			assert.ErrorIs(t, err, ErrCorruptMenu)
		})
	}
}
