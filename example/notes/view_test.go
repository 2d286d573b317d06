package notes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	t.Parallel()

	t.Run("json", func(t *testing.T) {
		t.Parallel()
		v, err := render(true, &Note{Slug: "a", Title: "A"})
		require.NoError(t, err)
		assert.Equal(t, "application/json", v.MediaType())
		assert.Contains(t, v.String(), `"A"`)
	})

	t.Run("html note", func(t *testing.T) {
		t.Parallel()
		v, err := render(false, &Note{Title: "A", Body: "<p>x</p>"})
		require.NoError(t, err)
		assert.Equal(t, "text/html; charset=utf-8", v.MediaType())
		assert.Contains(t, v.String(), "<h1>A</h1><div><p>x</p></div>")
	})

	t.Run("encoding error is returned", func(t *testing.T) {
		t.Parallel()
		_, err := render(true, make(chan int))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "encode json view")
	})

	t.Run("template error is returned", func(t *testing.T) {
		t.Parallel()
		_, err := render(false, struct{ Title string }{"no notes field"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "execute list template")
	})
}
