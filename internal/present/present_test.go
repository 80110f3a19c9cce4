package present

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestButtons_CapsAtThree(t *testing.T) {
	m := Buttons("pick", Button{"a", "A"}, Button{"b", "B"}, Button{"c", "C"}, Button{"d", "D"})
	assert.Equal(t, KindButtons, m.Kind)
	assert.Len(t, m.Buttons, MaxButtons)
	assert.Equal(t, "c", m.Buttons[2].ID)
}

func TestList_Rows(t *testing.T) {
	m := List("body", "open",
		Section{Title: "one", Rows: []Row{{ID: "1", Title: "x"}, {ID: "2", Title: "y"}}},
		Section{Title: "two", Rows: []Row{{ID: "3", Title: "z"}}},
	)
	assert.Equal(t, 3, m.Rows())
	assert.Equal(t, "list", m.Kind.String())
	assert.Equal(t, "open", m.ButtonLabel)
}

func TestText(t *testing.T) {
	m := Text("hi")
	assert.Equal(t, KindText, m.Kind)
	assert.Empty(t, m.Buttons)
	assert.Zero(t, m.Rows())
}
