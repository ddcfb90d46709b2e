// Test Type: Business Logic Test
// Description: Tests for the prown commands run through the root command

package prown

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/prown/pkg/descriptor"
	"github.com/arthur-debert/prown/pkg/display"
	"github.com/arthur-debert/prown/pkg/errors"
	"github.com/arthur-debert/prown/pkg/paths"
	"github.com/arthur-debert/prown/pkg/projects"
	"github.com/arthur-debert/prown/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if args == nil {
		// cobra falls back to os.Args for a nil slice
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInit_CreatesDescriptorAndRegisters(t *testing.T) {
	env := testutil.NewEnvironment(t)
	dir := env.Project("demo", "")
	env.Chdir(dir)

	out, err := execute(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Created")
	assert.Contains(t, out, "Registered project demo")

	assert.Equal(t, descriptor.DefaultTemplate(), testutil.ReadFile(t, filepath.Join(dir, paths.DescriptorFile)))

	p, err := paths.New("")
	require.NoError(t, err)
	list, err := projects.Load(p.ProjectsFilePath())
	require.NoError(t, err)
	require.Len(t, list.Entries(), 1)
	assert.Equal(t, "demo", list.Entries()[0].Name)
}

func TestInit_ExistingDescriptorUntouched(t *testing.T) {
	env := testutil.NewEnvironment(t)
	content := "[commands]\nbuild = \"go build\"\n"
	dir := env.Project("demo", content)

	out, err := execute(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")

	assert.Equal(t, content, testutil.ReadFile(t, filepath.Join(dir, paths.DescriptorFile)))
}

func TestRun_PrintsCommandOutput(t *testing.T) {
	env := testutil.NewEnvironment(t)
	dir := env.Project("demo", "[commands]\ngreet = \"echo hello\"\n")
	env.Chdir(dir)

	out, err := execute(t, "run", "greet")
	require.NoError(t, err)
	assert.Contains(t, out, "hello")
}

func TestRun_FromSubdirectory(t *testing.T) {
	env := testutil.NewEnvironment(t)
	dir := env.Project("demo", "[commands]\nwhere = \"pwd\"\n")
	sub := filepath.Join(dir, "src", "pkg")
	require.NoError(t, os.MkdirAll(sub, 0755))
	env.Chdir(sub)

	out, err := execute(t, "run", "where")
	require.NoError(t, err)

	canonical, err := projects.Canonical(dir)
	require.NoError(t, err)
	assert.Contains(t, out, canonical)
}

func TestRun_NonZeroExitIsPropagated(t *testing.T) {
	env := testutil.NewEnvironment(t)
	dir := env.Project("demo", "[commands]\nfail = \"false\"\n")
	env.Chdir(dir)

	_, err := execute(t, "run", "fail")
	require.Error(t, err)

	var exitErr *ExitCodeError
	require.True(t, stderrors.As(err, &exitErr))
	assert.Equal(t, 1, exitErr.Code)
}

func TestRun_MissingCommand(t *testing.T) {
	env := testutil.NewEnvironment(t)
	dir := env.Project("demo", "[commands]\nbuild = \"true\"\n")
	env.Chdir(dir)

	_, err := execute(t, "run", "deploy")
	testutil.RequireErrorCode(t, err, errors.ErrMissingCommand)
	assert.Contains(t, errors.UserMessage(err), "there is no `deploy` command")
}

func TestRun_WithoutDescriptor(t *testing.T) {
	env := testutil.NewEnvironment(t)
	dir := env.Project("bare", "")
	env.Chdir(dir)

	_, err := execute(t, "run", "build")
	testutil.RequireErrorCode(t, err, errors.ErrMissingDescriptor)
}

func TestRun_DryRun(t *testing.T) {
	env := testutil.NewEnvironment(t)
	dir := env.Project("demo", "[commands]\nboom = \"false\"\n")
	env.Chdir(dir)

	_, err := execute(t, "run", "boom", "--dry-run")
	assert.NoError(t, err)
}

func TestRun_All(t *testing.T) {
	env := testutil.NewEnvironment(t)
	good := env.Project("good", "[commands]\ncheck = \"true\"\n")
	bad := env.Project("bad", "[commands]\ncheck = \"false\"\n")
	other := env.Project("other", "[commands]\nbuild = \"true\"\n")
	for _, dir := range []string{good, bad, other} {
		_, err := execute(t, "init", dir)
		require.NoError(t, err)
	}

	out, err := execute(t, "run", "check", "--all", "--format", "json")
	var exitErr *ExitCodeError
	require.True(t, stderrors.As(err, &exitErr))
	assert.Equal(t, 1, exitErr.Code)

	var results []display.RunResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)

	codes := map[string]int{}
	for _, r := range results {
		codes[r.Project] = r.ExitCode
	}
	assert.Equal(t, map[string]int{"good": 0, "bad": 1}, codes)
}

func TestRun_AllWithoutAnyMatch(t *testing.T) {
	env := testutil.NewEnvironment(t)
	dir := env.Project("demo", "[commands]\nbuild = \"true\"\n")
	_, err := execute(t, "init", dir)
	require.NoError(t, err)

	_, err = execute(t, "run", "deploy", "--all")
	testutil.RequireErrorCode(t, err, errors.ErrMissingCommand)
}

func TestDescribe_JSON(t *testing.T) {
	env := testutil.NewEnvironment(t)
	dir := env.Project("demo", `
[docs]
change = "docs/*.md"
run = "make docs"

[commands]
test = "go test ./..."
`)
	env.Chdir(dir)

	out, err := execute(t, "describe", "--format", "json")
	require.NoError(t, err)

	var summary descriptor.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	require.Len(t, summary.Modules, 1)
	assert.Equal(t, "docs", summary.Modules[0].Name)
	assert.Equal(t, []string{"make docs"}, summary.Modules[0].Run)
	require.Len(t, summary.Commands, 1)
	assert.Equal(t, "test", summary.Commands[0].Name)
}

func TestDescribe_MalformedDescriptor(t *testing.T) {
	env := testutil.NewEnvironment(t)
	dir := env.Project("demo", "docs = 1\n")
	env.Chdir(dir)

	_, err := execute(t, "describe")
	testutil.RequireErrorCode(t, err, errors.ErrNotATable)
}

func TestList_GotoForget(t *testing.T) {
	env := testutil.NewEnvironment(t)
	alpha := env.Project("alpha", "[commands]\nbuild = \"true\"\n")
	beta := env.Project("beta", "")
	for _, dir := range []string{alpha, beta} {
		_, err := execute(t, "init", dir)
		require.NoError(t, err)
	}

	out, err := execute(t, "list", "--format", "json")
	require.NoError(t, err)
	var rows []display.ProjectRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)

	byName := map[string]display.ProjectRow{}
	for _, row := range rows {
		byName[row.Name] = row
	}
	assert.Equal(t, []string{"build"}, byName["alpha"].Commands)
	assert.True(t, byName["beta"].HasDescriptor)

	out, err = execute(t, "goto", "alpha")
	require.NoError(t, err)
	canonical, err := projects.Canonical(alpha)
	require.NoError(t, err)
	assert.Equal(t, canonical+"\n", out)

	out, err = execute(t, "forget", "alpha")
	require.NoError(t, err)
	assert.Contains(t, out, "Forgot project alpha")

	_, err = execute(t, "goto", "alpha")
	testutil.RequireErrorCode(t, err, errors.ErrProjectNotFound)
}

func TestForget_ByPath(t *testing.T) {
	env := testutil.NewEnvironment(t)
	dir := env.Project("demo", "")
	_, err := execute(t, "init", dir)
	require.NoError(t, err)

	_, err = execute(t, "forget", dir)
	require.NoError(t, err)

	_, err = execute(t, "forget", dir)
	testutil.RequireErrorCode(t, err, errors.ErrProjectNotFound)
}

func TestWatch_RequiresDescriptor(t *testing.T) {
	env := testutil.NewEnvironment(t)
	dir := env.Project("bare", "")
	env.Chdir(dir)

	_, err := execute(t, "watch")
	testutil.RequireErrorCode(t, err, errors.ErrMissingDescriptor)
}

func TestWatch_AllWithNothingRegistered(t *testing.T) {
	testutil.NewEnvironment(t)

	out, err := execute(t, "watch", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, MsgNothingToWatch)
}

func TestWatch_InvalidDebounce(t *testing.T) {
	env := testutil.NewEnvironment(t)
	dir := env.Project("demo", "[commands]\n")
	env.Chdir(dir)

	_, err := execute(t, "watch", "--debounce=-1s")
	testutil.RequireErrorCode(t, err, errors.ErrConfigLoad)
}

func TestVersion(t *testing.T) {
	testutil.NewEnvironment(t)

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "prown version")
}

func TestRoot_NoCommand(t *testing.T) {
	testutil.NewEnvironment(t)

	_, err := execute(t)
	testutil.RequireErrorCode(t, err, errors.ErrInvalidInput)
}

func TestRoot_UnknownFormat(t *testing.T) {
	env := testutil.NewEnvironment(t)
	dir := env.Project("demo", "[commands]\n")
	env.Chdir(dir)

	_, err := execute(t, "describe", "--format", "xml")
	testutil.RequireErrorCode(t, err, errors.ErrInvalidInput)
}

func TestHelp_Topics(t *testing.T) {
	testutil.NewEnvironment(t)

	out, err := execute(t, "help", "topics")
	require.NoError(t, err)
	assert.Contains(t, out, "descriptor")
	assert.Contains(t, out, "environment")
	assert.Contains(t, out, "settings")

	out, err = execute(t, "help", "descriptor")
	require.NoError(t, err)
	assert.Contains(t, out, "# The .prown.toml descriptor")
}

func TestShellInit(t *testing.T) {
	testutil.NewEnvironment(t)

	out, err := execute(t, "shell-init", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "pcd() {")
	assert.Contains(t, out, "prown goto")

	_, err = execute(t, "shell-init", "tcsh")
	testutil.RequireErrorCode(t, err, errors.ErrInvalidInput)
}
