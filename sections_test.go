package pptgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSectionGrouping_DefaultsUntilNamed(t *testing.T) {
	t.Parallel()

	g := NewSectionGrouping()
	assert.Equal(t, DefaultSection, g.Current())
	assert.Zero(t, g.Len())

	assert.Equal(t, DefaultSection, g.Assign("", 0))
	assert.Equal(t, DefaultSection, g.Assign("", 1))

	assert.Equal(t, []Section{{Name: DefaultSection, Slides: []int{0, 1}}}, g.Sections())
}

func TestSectionGrouping_IntroductionOrder(t *testing.T) {
	t.Parallel()

	g := NewSectionGrouping()
	g.Assign("Pembukaan", 0)
	g.Assign("", 1)
	g.Assign("Firman", 2)
	g.Assign("Pembukaan", 3)
	g.Assign("", 4)

	assert.Equal(t, []Section{
		{Name: "Pembukaan", Slides: []int{0, 1, 3, 4}},
		{Name: "Firman", Slides: []int{2}},
	}, g.Sections())
	assert.Equal(t, "Pembukaan", g.Current())
	assert.Equal(t, 2, g.Len())
}

func TestSectionGrouping_Lookup(t *testing.T) {
	t.Parallel()

	g := NewSectionGrouping()
	g.Assign("A", 0)

	slides, ok := g.Lookup("A")
	assert.True(t, ok)
	assert.Equal(t, []int{0}, slides)

	// callers cannot mutate the grouping
	slides[0] = 99
	again, _ := g.Lookup("A")
	assert.Equal(t, []int{0}, again)

	_, ok = g.Lookup(DefaultSection)
	assert.False(t, ok)
}

func TestSectionGrouping_SectionsAreCopies(t *testing.T) {
	t.Parallel()

	g := NewSectionGrouping()
	g.Assign("A", 0)

	s := g.Sections()
	s[0].Slides[0] = 42
	s[0].Name = "B"

	assert.Equal(t, []Section{{Name: "A", Slides: []int{0}}}, g.Sections())
}
