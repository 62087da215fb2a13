package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RealZimboGuy/gopherflow-designer/pkg/designer/share"
)

const publishingYAML = `states:
  - id: draft
    label: Draft
  - id: review
    label: Review
transitions:
  - id: submit
    label: Submit
    fromStates: [draft]
    toState: review
roles:
  - id: writer
    label: Writer
    permissions: [submit]
  - id: editor
    label: Editor
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	diagramRoles, diagramHidden = nil, nil
	decodeFormat = "yaml"
	shareBase = "https://designer.example.com/"

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestLoadWorkflowYAMLAndJSON(t *testing.T) {
	w, err := loadWorkflow(writeFile(t, "wf.yaml", publishingYAML))
	require.NoError(t, err)
	assert.Len(t, w.States, 2)
	assert.NotNil(t, w.Roles[1].Permissions)

	j, err := loadWorkflow(writeFile(t, "wf.json", `{"states":[{"id":"draft","label":"Draft"}],"transitions":[],"roles":[]}`))
	require.NoError(t, err)
	assert.Equal(t, "Draft", j.States[0].Label)

	_, err = loadWorkflow(writeFile(t, "bad.yaml", "states:\n  - id: Not Valid\n"))
	assert.Error(t, err)

	_, err = loadWorkflow(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading workflow file")
}

func TestDiagramCommand(t *testing.T) {
	path := writeFile(t, "wf.yaml", publishingYAML)

	out, err := run(t, "diagram", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "flowchart LR\n"))
	assert.Contains(t, out, "draft draft-review-writer@-->|Submit| review")

	out, err = run(t, "diagram", path, "--roles", "editor")
	require.NoError(t, err)
	assert.Contains(t, out, "draft draft-review-inaccessible@-.->|Submit| review")

	out, err = run(t, "diagram", path, "--hide", "review")
	require.NoError(t, err)
	assert.NotContains(t, out, "review")
}

func TestShareAndDecodeCommands(t *testing.T) {
	path := writeFile(t, "wf.yaml", publishingYAML)

	out, err := run(t, "share", path)
	require.NoError(t, err)
	link := strings.TrimSpace(out)
	assert.True(t, strings.HasPrefix(link, "https://designer.example.com/?"+share.QueryParam+"="))

	out, err = run(t, "decode", link)
	require.NoError(t, err)
	assert.Contains(t, out, "id: submit")

	token := link[strings.Index(link, "=")+1:]
	out, err = run(t, "decode", token, "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"fromStates": [`)

	_, err = run(t, "decode", "https://designer.example.com/?other=1")
	assert.Error(t, err)

	_, err = run(t, "share", writeFile(t, "empty.yaml", "states: []\n"))
	assert.ErrorContains(t, err, "nothing to share")
}

func TestColorsCommand(t *testing.T) {
	out, err := run(t, "colors", writeFile(t, "wf.yaml", publishingYAML))
	require.NoError(t, err)
	assert.Contains(t, out, "writer  Writer  #FB8500")
	assert.Contains(t, out, "editor  Editor  #88498F")
}
