package fieldinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetOrAddAssignsStableNumbers(t *testing.T) {
	fi := New()
	title := fi.GetOrAdd("title")
	body := fi.GetOrAdd("body")
	titleAgain := fi.GetOrAdd("title")

	assert.Equal(t, 0, title.Number)
	assert.Equal(t, 1, body.Number)
	assert.Same(t, title, titleAgain)
	assert.Equal(t, 2, fi.Len())
}

func TestByNumberAndByName(t *testing.T) {
	fi := New()
	fi.GetOrAdd("a")
	fi.GetOrAdd("b")

	f, ok := fi.ByNumber(1)
	assert.True(t, ok)
	assert.Equal(t, "b", f.Name)

	_, ok = fi.ByNumber(5)
	assert.False(t, ok)

	f, ok = fi.ByName("a")
	assert.True(t, ok)
	assert.Equal(t, 0, f.Number)
}

func TestListOrderedByNumber(t *testing.T) {
	fi := New()
	fi.GetOrAdd("z")
	fi.GetOrAdd("a")

	list := fi.List()
	assert.Equal(t, "z", list[0].Name)
	assert.Equal(t, "a", list[1].Name)
}
