package tui

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowhung/buswatch/tui/data"
)

func TestExportJSONWritesSummaryModulesBottlenecks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "export.json")

	a := New(&stubSource{}, data.DefaultThresholds(), 0, path)
	a.width, a.height = 100, 40
	m, _ := a.Update(pollSnapMsg{snap: snapshotWithModules("api", "processor")})
	app := m.(*App)

	_, _ = app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc exportDoc
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, 2, doc.Summary.TotalModules)
	assert.Len(t, doc.Modules, 2)
}
