package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCodeBlocks(t *testing.T) {
	t.Run("extracts language and content", func(t *testing.T) {
		md := "Here you go:\n\n```go\npackage main\n\nfunc main() {}\n```\n\nDone."

		blocks := ExtractCodeBlocks(md)

		require.Len(t, blocks, 1)
		assert.Equal(t, "go", blocks[0].Language)
		assert.Equal(t, "", blocks[0].Title)
		assert.Equal(t, "package main\n\nfunc main() {}", blocks[0].Content)
		assert.Equal(t, "go-1", blocks[0].Key())
	})

	t.Run("multiple blocks keep order and index", func(t *testing.T) {
		md := "```html\n<p>a</p>\n```\ntext\n```css\np { color: red }\n```"

		blocks := ExtractCodeBlocks(md)

		require.Len(t, blocks, 2)
		assert.Equal(t, 0, blocks[0].Index)
		assert.Equal(t, "html", blocks[0].Language)
		assert.Equal(t, 1, blocks[1].Index)
		assert.Equal(t, "css-2", blocks[1].Key())
	})

	t.Run("title attribute", func(t *testing.T) {
		blocks := ExtractCodeBlocks("```tsx title=\"src/App.tsx\"\nexport default 1\n```")

		require.Len(t, blocks, 1)
		assert.Equal(t, "tsx", blocks[0].Language)
		assert.Equal(t, "src/App.tsx", blocks[0].Title)
		assert.Equal(t, "src/App.tsx", blocks[0].Key())
	})

	t.Run("path after language", func(t *testing.T) {
		blocks := ExtractCodeBlocks("```js ./lib/util.js\nx()\n```")

		require.Len(t, blocks, 1)
		assert.Equal(t, "./lib/util.js", blocks[0].Title)
		assert.Equal(t, "lib/util.js", blocks[0].Key())
	})

	t.Run("colon form", func(t *testing.T) {
		blocks := ExtractCodeBlocks("```python:app/main.py\nprint(1)\n```")

		require.Len(t, blocks, 1)
		assert.Equal(t, "python", blocks[0].Language)
		assert.Equal(t, "app/main.py", blocks[0].Title)
	})

	t.Run("plain words after language are not a title", func(t *testing.T) {
		blocks := ExtractCodeBlocks("```bash example\nls\n```")

		require.Len(t, blocks, 1)
		assert.Equal(t, "", blocks[0].Title)
	})

	t.Run("tilde fences and nested backticks", func(t *testing.T) {
		md := "~~~markdown\n```js\ninner()\n```\n~~~"

		blocks := ExtractCodeBlocks(md)

		require.Len(t, blocks, 1)
		assert.Equal(t, "markdown", blocks[0].Language)
		assert.Equal(t, "```js\ninner()\n```", blocks[0].Content)
	})

	t.Run("longer opening fence needs longer close", func(t *testing.T) {
		md := "````md\n```\nstill inside\n````"

		blocks := ExtractCodeBlocks(md)

		require.Len(t, blocks, 1)
		assert.Equal(t, "```\nstill inside", blocks[0].Content)
	})

	t.Run("unterminated block is ignored", func(t *testing.T) {
		md := "```go\ncomplete()\n```\n\n```js\nnever closed"

		blocks := ExtractCodeBlocks(md)

		require.Len(t, blocks, 1)
		assert.Equal(t, "go", blocks[0].Language)
	})

	t.Run("blank block is skipped", func(t *testing.T) {
		blocks := ExtractCodeBlocks("```\n   \n```\n```txt\nx\n```")

		require.Len(t, blocks, 1)
		assert.Equal(t, 0, blocks[0].Index)
		assert.Equal(t, "txt", blocks[0].Language)
	})

	t.Run("no language uses text key", func(t *testing.T) {
		blocks := ExtractCodeBlocks("```\nhello\n```")

		require.Len(t, blocks, 1)
		assert.Equal(t, "text-1", blocks[0].Key())
	})

	t.Run("windows line endings", func(t *testing.T) {
		blocks := ExtractCodeBlocks("```go\r\na := 1\r\n```\r\n")

		require.Len(t, blocks, 1)
		assert.Equal(t, "a := 1", blocks[0].Content)
	})

	t.Run("no blocks", func(t *testing.T) {
		assert.Empty(t, ExtractCodeBlocks("just prose, `inline` code"))
	})
}

func TestNewArtifact(t *testing.T) {
	t.Run("defaults title to key", func(t *testing.T) {
		a, err := NewArtifact(newID(), newID(), "/src/App.tsx", "", "TSX", "x")
		require.NoError(t, err)
		assert.Equal(t, "src/App.tsx", a.Key)
		assert.Equal(t, "src/App.tsx", a.Title)
		assert.Equal(t, "tsx", a.Language)
		assert.Equal(t, 0, a.Revision)
	})

	t.Run("rejects empty content", func(t *testing.T) {
		_, err := NewArtifact(newID(), newID(), "k", "", "", "  \n")
		assert.Error(t, err)
	})

	t.Run("rejects empty key", func(t *testing.T) {
		_, err := NewArtifact(newID(), newID(), " / ", "", "", "x")
		assert.Error(t, err)
	})
}

func TestNextRevision(t *testing.T) {
	assert.Equal(t, 1, NextRevision(0))
	assert.Equal(t, 1, NextRevision(-3))
	assert.Equal(t, 8, NextRevision(7))
}
