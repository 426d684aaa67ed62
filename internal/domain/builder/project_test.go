package builder

import (
	"strings"
	"testing"

	"github.com/alfred/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProject(t *testing.T) *Project {
	t.Helper()
	p, err := NewProject(uuid.New(), "Landing", "", "")
	require.NoError(t, err)
	return p
}

func TestNewProject(t *testing.T) {
	p := newProject(t)
	assert.Equal(t, "static", p.Framework)
	assert.Empty(t, p.Files())

	_, err := NewProject(uuid.New(), " ", "", "")
	assert.Error(t, err)

	_, err = NewProject(uuid.New(), "x", "", "cobol")
	assert.Error(t, err)
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "index.html", want: "index.html"},
		{in: "/src/App.tsx", want: "src/App.tsx"},
		{in: "./src//lib/a.ts", want: "src/lib/a.ts"},
		{in: "src\\main.go", want: "src/main.go"},
		{in: "../etc/passwd", wantErr: true},
		{in: "a/../../b", wantErr: true},
		{in: "", wantErr: true},
		{in: "/", wantErr: true},
		{in: strings.Repeat("a", 300), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizePath(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProject_Files(t *testing.T) {
	p := newProject(t)

	created, err := p.UpsertFile("/index.html", "<h1>hi</h1>")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = p.UpsertFile("index.html", "<h1>hello</h1>")
	require.NoError(t, err)
	assert.False(t, created)

	f, ok := p.File("./index.html")
	require.True(t, ok)
	assert.Equal(t, "<h1>hello</h1>", f.Content)

	_, err = p.UpsertFile("big.txt", strings.Repeat("x", MaxFileSize+1))
	assert.ErrorIs(t, err, ErrFileTooLarge)

	require.NoError(t, p.DeleteFile("index.html"))
	assert.ErrorIs(t, p.DeleteFile("index.html"), shared.ErrNotFound)
}

func TestProject_ReplaceFiles(t *testing.T) {
	p := newProject(t)

	err := p.ReplaceFiles([]ProjectFile{
		{Path: "b.css", Content: "b"},
		{Path: "a.html", Content: "a"},
		{Path: "/b.css", Content: "b2"},
	})
	require.NoError(t, err)

	files := p.Files()
	require.Len(t, files, 2)
	assert.Equal(t, "a.html", files[0].Path)
	assert.Equal(t, "b2", files[1].Content)

	many := make([]ProjectFile, MaxFiles+1)
	for i := range many {
		many[i] = ProjectFile{Path: strings.Repeat("x", i%50+1) + ".txt"}
	}
	assert.ErrorIs(t, p.ReplaceFiles(many), ErrTooManyFiles)
}

func TestProject_ApplyPatch(t *testing.T) {
	p := newProject(t)
	require.NoError(t, p.ReplaceFiles([]ProjectFile{
		{Path: "src/App.tsx", Content: "old"},
		{Path: "index.html", Content: "<html></html>"},
	}))

	changes, err := p.ApplyPatch([]ProjectFile{
		{Path: "src/App.jsx", Content: "new"},
		{Path: "src/util.ts", Content: "util"},
		{Path: "lib/App.tsx", Content: "other dir"},
	})
	require.NoError(t, err)
	require.Len(t, changes, 3)

	assert.Equal(t, "src/App.tsx", changes[0].Path)
	assert.Equal(t, "src/App.jsx", changes[0].RequestedAs)
	assert.False(t, changes[0].Created)

	assert.Equal(t, "src/util.ts", changes[1].Path)
	assert.True(t, changes[1].Created)

	assert.Equal(t, "lib/App.tsx", changes[2].Path)
	assert.True(t, changes[2].Created)

	f, ok := p.File("src/App.tsx")
	require.True(t, ok)
	assert.Equal(t, "new", f.Content)
}

func TestClosestPath(t *testing.T) {
	candidates := []string{"src/App.tsx", "src/index.css"}

	assert.Equal(t, "src/App.tsx", ClosestPath("src/App.tsx", candidates))
	assert.Equal(t, "src/App.tsx", ClosestPath("src/app.tsx", candidates))
	assert.Equal(t, "src/main.tsx", ClosestPath("src/main.tsx", candidates))
	assert.Equal(t, "src/App.tsx", ClosestPath("src/App.ts", candidates))
}

func TestProject_Pages(t *testing.T) {
	p := newProject(t)
	require.NoError(t, p.ReplaceFiles([]ProjectFile{
		{Path: "about.html", Content: "a"},
		{Path: "style.css", Content: "c"},
		{Path: "index.HTM", Content: "i"},
	}))

	pages := p.Pages()
	require.Len(t, pages, 2)
	assert.Equal(t, "about.html", pages[0].Path)
	assert.Equal(t, "index.HTM", pages[1].Path)
}
