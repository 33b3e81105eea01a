package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const directoryUsersJSON = `[
  {"id": 1, "name": "Leanne Graham", "email": "Sincere@april.biz", "company": {"name": "Romaguera-Crona"}},
  {"id": 2, "name": "Ervin Howell", "email": "Shanna@melissa.tv", "company": {"name": "Deckow-Crist"}},
  {"id": 3, "name": "Clementine Bauch", "email": "Nathan@yesenia.net", "company": {"name": "Romaguera-Jacobson"}}
]`

const ervinDetailJSON = `{
  "id": 2,
  "name": "Ervin Howell",
  "email": "Shanna@melissa.tv",
  "phone": "010-692-6593 x09125",
  "website": "anastasia.net",
  "address": {"street": "Victor Plains", "suite": "Suite 879", "city": "Wisokyburgh", "zipcode": "90566-7771"},
  "company": {"name": "Deckow-Crist"}
}`

// testEnv is a temporary database, config file and fake directory.
type testEnv struct {
	t          *testing.T
	dir        string
	configPath string
	server     *httptest.Server
	listCalls  atomic.Int32
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{t: t, dir: t.TempDir()}

	mux := http.NewServeMux()
	mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		env.listCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, directoryUsersJSON)
	})
	mux.HandleFunc("/users/2", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, ervinDetailJSON)
	})
	env.server = httptest.NewServer(mux)
	t.Cleanup(env.server.Close)

	env.configPath = env.writeConfig(env.server.URL)
	return env
}

func (e *testEnv) writeConfig(baseURL string) string {
	e.t.Helper()
	content := fmt.Sprintf(`database:
  path: %s
directory:
  base_url: %s
  timeout: 2s
query:
  page_size: 2
`, filepath.Join(e.dir, "users.db"), baseURL)

	path := filepath.Join(e.dir, "usermgmt.yaml")
	require.NoError(e.t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// run executes the root command with the test config and returns stdout,
// stderr and the command error.
func (e *testEnv) run(args ...string) (string, string, error) {
	e.t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}

	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	stdout, stderr, err := e.run(args...)
	require.NoError(e.t, err, "stderr: %s", stderr)
	return stdout
}

func (e *testEnv) listJSON(args ...string) ListResult {
	e.t.Helper()
	out := e.mustRun(append([]string{"list", "--format", "json"}, args...)...)

	var resp struct {
		Status string     `json:"status"`
		Data   ListResult `json:"data"`
	}
	require.NoError(e.t, json.Unmarshal([]byte(out), &resp))
	require.Equal(e.t, "ok", resp.Status)
	return resp.Data
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestList_FirstRunRendersDirectory(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("list")
	newGoldie(t).Assert(t, "list_page1", []byte(out))
	assert.Equal(t, int32(1), env.listCalls.Load())
}

func TestList_JSONLastPage(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("list", "--page", "2", "--format", "json")
	newGoldie(t).Assert(t, "list_page2_json", []byte(out))
}

func TestList_PageIsClamped(t *testing.T) {
	env := newTestEnv(t)

	page := env.listJSON("--page", "40")
	assert.Equal(t, 2, page.Page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Leanne Graham", page.Items[0].Name)
}

func TestList_DoesNotRefetchOnceStored(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun("list")
	env.mustRun("list", "--page", "2")
	env.mustRun("sync")

	assert.Equal(t, int32(1), env.listCalls.Load())
}

func TestList_SortByEmailDescending(t *testing.T) {
	env := newTestEnv(t)

	page := env.listJSON("--sort", "email", "--order", "desc")
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Leanne Graham", page.Items[0].Name)
	assert.Equal(t, "Ervin Howell", page.Items[1].Name)
}

func TestList_SearchAndWhere(t *testing.T) {
	env := newTestEnv(t)

	page := env.listJSON("--search", "MELISSA")
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(2), page.Items[0].ID)

	page = env.listJSON("--where", `organization startsWith "Romaguera"`)
	assert.Equal(t, 2, page.Count)

	out := env.mustRun("list", "--search", "nobody")
	assert.Equal(t, "No users match the current filter.\n", out)
}

func TestList_InvalidFlags(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{"bad sort", []string{"list", "--sort", "company"}},
		{"bad order", []string{"list", "--order", "sideways"}},
		{"bad where", []string{"list", "--where", "name +"}},
		{"non-bool where", []string{"list", "--where", "id + 1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := env.run(tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}

func TestList_FetchFailure(t *testing.T) {
	env := newTestEnv(t)
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer broken.Close()
	env.configPath = env.writeConfig(broken.URL)

	stdout, _, err := env.run("list")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E001]: Failed to fetch users.")
}

func TestList_EmptyStoreAfterDeletingEverything(t *testing.T) {
	env := newTestEnv(t)

	for _, id := range []string{"1", "2", "3"} {
		env.mustRun("delete", id)
	}

	// The store is empty again, so the next command fetches.
	out := env.mustRun("list", "--search", "zzz")
	assert.Equal(t, "No users match the current filter.\n", out)
	assert.Equal(t, int32(2), env.listCalls.Load())
}

func TestAdd_LocalUserListedFirst(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("add", "--name", "  Ada ", "--email", "ada@x.io")
	assert.Regexp(t, `^User added: Ada <ada@x\.io> \(id \d+\)\n$`, out)

	page := env.listJSON("--sort", "name", "--order", "desc")
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Ada", page.Items[0].Name)
	assert.Equal(t, "local", string(page.Items[0].Origin))
	assert.Equal(t, "—", page.Items[0].Organization)
	assert.NotNil(t, page.Items[0].CreatedAt)
	assert.Equal(t, "Leanne Graham", page.Items[1].Name)
	assert.Equal(t, 4, page.Count)
}

func TestAdd_ValidationErrors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing name", []string{"add", "--email", "ada@x.io"}, "Error [E002]: Name and email are required"},
		{"blank email", []string{"add", "--name", "Ada", "--email", "   "}, "Error [E002]: Name and email are required"},
		{"bad email", []string{"add", "--name", "Ada", "--email", "ada.x.io"}, "Error [E002]: Please enter a valid email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := env.run(tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, stdout, tt.want)
		})
	}

	assert.Equal(t, 3, env.listJSON().Count)
}

func TestUpdate(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("update", "2", "--email", " ervin@x.io ")
	assert.Equal(t, "User updated: Ervin Howell <ervin@x.io> (id 2)\n", out)

	out = env.mustRun("update", "2", "--organization", "")
	assert.Contains(t, out, "User updated")

	out = env.mustRun("show", "2")
	assert.Contains(t, out, "Email: ervin@x.io\n")
	assert.Contains(t, out, "Company: —\n")
}

func TestUpdate_Errors(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, err := env.run("update", "99", "--name", "Nobody")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E003]: User not found")

	stdout, _, err = env.run("update", "2", "--email", "nope")
	require.Error(t, err)
	assert.Contains(t, stdout, "Please enter a valid email")

	_, _, err = env.run("update", "2")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, _, err = env.run("update", "two", "--name", "x")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestDelete(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("delete", "3")
	assert.Equal(t, "User deleted (id 3)\n", out)
	assert.Equal(t, 2, env.listJSON().Count)

	stdout, _, err := env.run("delete", "3")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "User not found")
}

func TestShow_RemoteDetail(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("show", "2", "--remote")
	assert.Equal(t, `Name: Ervin Howell
Email: Shanna@melissa.tv
Company: Deckow-Crist
Origin: remote
Phone: 010-692-6593 x09125
Website: anastasia.net
Address: Victor Plains, Suite 879, Wisokyburgh, 90566-7771
`, out)
}

func TestShow_RemoteDetailMissing(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, err := env.run("show", "1", "--remote")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "User not found")
}

func TestShow_LocalUserSkipsDirectory(t *testing.T) {
	env := newTestEnv(t)

	var added struct {
		Data UserResult `json:"data"`
	}
	out := env.mustRun("add", "--name", "Ada", "--email", "ada@x.io", "--format", "json")
	require.NoError(t, json.Unmarshal([]byte(out), &added))

	out = env.mustRun("show", fmt.Sprint(added.Data.ID), "--remote")
	assert.Contains(t, out, "Origin: local\n")
	assert.Contains(t, out, "Created: ")
	assert.NotContains(t, out, "Phone:")
}

func TestShow_UnknownID(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, err := env.run("show", "404", "--format", "json")
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, CodeNotFound, resp.Error.Code)
}

func TestSync(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("sync")
	assert.Equal(t, fmt.Sprintf("Fetched 3 users from %s\n", env.server.URL), out)

	out = env.mustRun("sync", "--format", "yaml")
	var resp struct {
		Status string     `yaml:"status"`
		Data   SyncResult `yaml:"data"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "skipped", resp.Data.Outcome)
	assert.Equal(t, 3, resp.Data.Records)
}

func TestVerbosePrintsMetrics(t *testing.T) {
	env := newTestEnv(t)

	stdout, stderr, err := env.run("sync", "--verbose", "--format", "json")
	require.NoError(t, err)

	assert.Contains(t, stderr, `usermgmt_directory_fetches_total{outcome="ok"} 1`)
	assert.Contains(t, stderr, `usermgmt_store_mutations_total{op="replace_all"} 1`)
	assert.Contains(t, stderr, "usermgmt_store_records 3")

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp), "stdout must stay valid JSON")
}

func TestDatabaseFlagOverridesConfig(t *testing.T) {
	env := newTestEnv(t)
	other := filepath.Join(env.dir, "other.db")

	env.mustRun("--db", other, "sync")

	_, err := os.Stat(other)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(env.dir, "users.db"))
	assert.True(t, os.IsNotExist(err))
}

func TestMissingConfigFile(t *testing.T) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml"), "list"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load configuration")
}
