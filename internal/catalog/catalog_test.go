package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-chat-orderflow/internal/i18n"
)

func TestLoad_EmbeddedMenu(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	cats := c.Categories()
	require.NotEmpty(t, cats)
	assert.Equal(t, "burgers", cats[0].ID)

	steaks, ok := c.Category("steaks")
	require.True(t, ok)
	assert.True(t, steaks.ContactOnly)
	assert.Empty(t, c.Items("steaks"))

	v, item, ok := c.Variant("b1_chkn")
	require.True(t, ok)
	assert.Equal(t, "b1", v.ItemID)
	assert.Equal(t, "b1", item.ID)
	assert.Equal(t, "Курица", v.Label.In(i18n.RU))
	assert.Len(t, item.Variants, 2)

	d2, ok := c.Item("d2")
	require.True(t, ok)
	assert.Len(t, d2.Variants, 1)
}

func TestItem_PriceRange(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)
	b1, ok := c.Item("b1")
	require.True(t, ok)
	lo, hi := b1.PriceRange()
	assert.Equal(t, int64(2290), lo)
	assert.Equal(t, int64(2490), hi)
}

func TestItem_ReturnedCopiesAreIsolated(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)
	b1, _ := c.Item("b1")
	b1.Variants[0].Price = 1

	again, _ := c.Item("b1")
	assert.NotEqual(t, int64(1), again.Variants[0].Price)
}

func TestNew_IntegrityErrors(t *testing.T) {
	name := i18n.Localized{RU: "x"}
	cats := []Category{{ID: "a", Name: name}}
	variant := Variant{ID: "v1", Label: name, Price: 100}

	_, err := New(cats, []Item{{ID: "i1", CategoryID: "missing", Name: name, Variants: []Variant{variant}}})
	assert.Error(t, err)

	_, err = New(cats, []Item{
		{ID: "i1", CategoryID: "a", Name: name, Variants: []Variant{variant}},
		{ID: "i2", CategoryID: "a", Name: name, Variants: []Variant{variant}},
	})
	assert.Error(t, err, "duplicate variant id")

	_, err = New(cats, []Item{{ID: "i1", CategoryID: "a", Name: name}})
	assert.Error(t, err, "item without variants")

	_, err = New(cats, []Item{{ID: "i1", CategoryID: "a", Name: name, Variants: []Variant{{ID: "v", Label: name}}}})
	assert.Error(t, err, "zero price")

	_, err = Parse([]byte("categories: [::"))
	assert.Error(t, err)
}
