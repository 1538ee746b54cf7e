package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bbejeck/confluent-cli-plugins/internal/config"
	"github.com/bbejeck/confluent-cli-plugins/internal/credentials"
	"github.com/bbejeck/confluent-cli-plugins/internal/plugins"
	"github.com/bbejeck/confluent-cli-plugins/internal/prompt"
	"github.com/bbejeck/confluent-cli-plugins/internal/runner"
	"github.com/bbejeck/confluent-cli-plugins/internal/runner/runnertest"
)

var fixedNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

type harness struct {
	env    *Env
	fake   *runnertest.Fake
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newHarness(t *testing.T, input string) *harness {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("HOME", t.TempDir())
	testChdir(t, t.TempDir())
	if err := config.Init(); err != nil {
		t.Fatalf("config.Init() error = %v", err)
	}

	color.NoColor = true

	h := &harness{
		fake:   runnertest.New(),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	h.env = &Env{
		Stdout:   h.stdout,
		Stderr:   h.stderr,
		Fs:       afero.NewMemMapFs(),
		Now:      func() time.Time { return fixedNow },
		Prompter: prompt.NewLine(strings.NewReader(input), h.stdout),
		NewRunner: func(*config.Config, *slog.Logger, io.Writer) runner.Runner {
			return h.fake
		},
		NewGitHub: DefaultEnv().NewGitHub,
	}
	return h
}

func (h *harness) run(cmd *cobra.Command, args ...string) error {
	cmd.SetArgs(args)
	return Execute(cmd, "test")
}

func (h *harness) deleteCalls() []string {
	var out []string
	for _, c := range h.fake.CallsWithPrefix("schema-registry schema delete") {
		joined := strings.Join(c, " ")
		subject := c[len(c)-1]
		if strings.Contains(joined, "--permanent") {
			out = append(out, "hard:"+subject)
		} else {
			out = append(out, "soft:"+subject)
		}
	}
	return out
}

func (h *harness) scriptSchemas() {
	h.fake.
		On("schema-registry schema list", runnertest.Response{Stdout: `[
			{"schema_id":101,"subject":"A","version":1},
			{"schema_id":102,"subject":"B","version":4},
			{"schema_id":103,"subject":"C","version":2}
		]`}).
		On("schema-registry schema describe 101 ", runnertest.Response{
			Stdout: `{"schemas":[{"references":[{"name":"b","subject":"B","version":4}]}]}`,
		}).
		On("schema-registry schema describe 102 ", runnertest.Response{Stdout: `{"schemas":[{}]}`}).
		On("schema-registry schema describe 103 ", runnertest.Response{
			Stdout: `{"schemas":[{"references":[{"name":"b","subject":"B","version":4}]}]}`,
		}).
		On("schema-registry schema delete", runnertest.Response{Stdout: "Deleted.\n"})
}

func TestSchemaPurgeOrdering(t *testing.T) {
	h := newHarness(t, "y\n")
	h.scriptSchemas()

	if err := h.run(NewSchemaPurgeCmd(h.env), "--api-key", "K", "--api-secret", "S"); err != nil {
		t.Fatalf("run error = %v (stderr %s)", err, h.stderr)
	}

	want := []string{"soft:A", "soft:C", "soft:B", "hard:A", "hard:B", "hard:C"}
	if got := h.deleteCalls(); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("deletes = %v, want %v", got, want)
	}
	if !strings.Contains(h.stdout.String(), "Are you sure you want to delete all 3 schemas?") {
		t.Errorf("missing confirmation prompt in %q", h.stdout)
	}
}

func TestSchemaPurgeDeclined(t *testing.T) {
	h := newHarness(t, "n\n")
	h.scriptSchemas()

	if err := h.run(NewSchemaPurgeCmd(h.env), "--api-key", "K", "--api-secret", "S"); err != nil {
		t.Fatalf("run error = %v", err)
	}
	if got := h.deleteCalls(); len(got) != 0 {
		t.Errorf("deletes = %v, want none", got)
	}
	if !strings.Contains(h.stdout.String(), "Quitting and leaving all schemas in-place") {
		t.Errorf("stdout = %q", h.stdout)
	}
}

func TestSchemaPurgeNothingFound(t *testing.T) {
	h := newHarness(t, "y\n")
	h.fake.On("schema-registry schema list", runnertest.Response{Stdout: `[]`})

	if err := h.run(NewSchemaPurgeCmd(h.env), "--api-key", "K", "--api-secret", "S"); err != nil {
		t.Fatalf("run error = %v", err)
	}
	if strings.Contains(h.stdout.String(), "Are you sure") {
		t.Error("prompted with nothing to delete")
	}
	if len(h.fake.Calls()) != 1 {
		t.Errorf("calls = %v, want only the listing", h.fake.Calls())
	}
}

func TestSchemaPurgeDryRun(t *testing.T) {
	h := newHarness(t, "")
	h.scriptSchemas()

	err := h.run(NewSchemaPurgeCmd(h.env), "--api-key", "K", "--api-secret", "S", "--dry-run")
	if err != nil {
		t.Fatalf("run error = %v", err)
	}
	if got := h.deleteCalls(); len(got) != 0 {
		t.Errorf("deletes = %v, want none", got)
	}
	out := h.stdout.String()
	if !strings.Contains(out, "with_references:") || !strings.Contains(out, "subject: C") {
		t.Errorf("plan not printed: %q", out)
	}
}

func TestSchemaPurgeCredentialValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "nothing given", args: nil},
		{name: "key without secret", args: []string{"--api-key", "K"}},
		{name: "secret without key", args: []string{"--api-secret", "S", "--secrets-file", "/s.json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "y\n")

			err := h.run(NewSchemaPurgeCmd(h.env), tt.args...)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
			if ExitCode(err) != 1 {
				t.Errorf("ExitCode() = %d, want 1", ExitCode(err))
			}
			if len(h.fake.Calls()) != 0 {
				t.Errorf("calls = %v, want none", h.fake.Calls())
			}
		})
	}
}

func TestSchemaPurgeSecretsFileRoundTrip(t *testing.T) {
	h := newHarness(t, "n\n")
	h.fake.On("schema-registry schema list", runnertest.Response{Stdout: `[{"schema_id":1,"subject":"x","version":1}]`})

	path, err := credentials.WriteAPIKey(h.env.Fs, "/creds", "lsrc-1",
		credentials.APIKey{Key: "SRKEY", Secret: "SRSECRET"}, fixedNow)
	if err != nil {
		t.Fatal(err)
	}

	if err := h.run(NewSchemaPurgeCmd(h.env), "--secrets-file", path, "--env", "env-1"); err != nil {
		t.Fatalf("run error = %v", err)
	}

	list := strings.Join(h.fake.Calls()[0], " ")
	if !strings.Contains(list, "--environment env-1 --api-key SRKEY --api-secret SRSECRET") {
		t.Errorf("list args = %q", list)
	}
}

func TestSchemaPurgeExitCodePropagates(t *testing.T) {
	h := newHarness(t, "y\n")
	h.scriptSchemas()
	h.fake.On("schema-registry schema delete --force --version all --api-key K --api-secret S --subject C",
		runnertest.Response{Err: &runner.ExitError{Code: 42, Stderr: "Error: subject not found"}})

	err := h.run(NewSchemaPurgeCmd(h.env), "--api-key", "K", "--api-secret", "S")
	if ExitCode(err) != 42 {
		t.Fatalf("ExitCode() = %d, want 42 (err %v)", ExitCode(err), err)
	}
	if got := h.deleteCalls(); fmt.Sprint(got) != fmt.Sprint([]string{"soft:A", "soft:C"}) {
		t.Errorf("deletes = %v", got)
	}
	if !strings.Contains(h.stderr.String(), "Error: subject not found") {
		t.Errorf("stderr = %q", h.stderr)
	}
}

func scriptCluster(f *runnertest.Fake) {
	f.
		On("kafka cluster create", runnertest.Response{
			Stdout: `{"id":"lkc-abc","name":"demo","provider":"AWS","region":"us-west-2"}`,
		}).
		On("api-key create --resource lkc-abc", runnertest.Response{
			Stdout: `{"api_key":"CKEY","api_secret":"CSECRET"}`,
		}).
		On("schema-registry cluster enable", runnertest.Response{
			Stdout: `{"id":"lsrc-xyz","endpoint_url":"https://psrc.example"}`,
		}).
		On("api-key create --resource lsrc-xyz", runnertest.Response{
			Stdout: `{"api_key":"SKEY","api_secret":"SSECRET"}`,
		}).
		On("kafka client-config create", runnertest.Response{
			Stdout: "bootstrap.servers=pkc.example:9092\nsasl.username=CKEY\n",
		})
}

func TestClusterCreate(t *testing.T) {
	h := newHarness(t, "")
	scriptCluster(h.fake)

	err := h.run(NewClusterCreateCmd(h.env), "--name", "demo", "--geo", "eu", "--client", "go", "--output-dir", "/out")
	if err != nil {
		t.Fatalf("run error = %v (stderr %s)", err, h.stderr)
	}

	enable := strings.Join(h.fake.CallsWithPrefix("schema-registry cluster enable")[0], " ")
	if !strings.Contains(enable, "--cloud aws --geo eu") {
		t.Errorf("enable args = %q", enable)
	}

	key, err := credentials.ReadAPIKey(h.env.Fs, "/out/api-key-lkc-abc-20240501093000.json")
	if err != nil {
		t.Fatalf("cluster key file: %v", err)
	}
	if key.Key != "CKEY" || key.Secret != "CSECRET" {
		t.Errorf("cluster key = %+v", key)
	}
	if _, err := credentials.ReadAPIKey(h.env.Fs, "/out/api-key-lsrc-xyz-20240501093000.json"); err != nil {
		t.Errorf("schema registry key file: %v", err)
	}

	props, err := afero.ReadFile(h.env.Fs, "/out/client-go-lkc-abc-20240501093000.properties")
	if err != nil {
		t.Fatalf("client config file: %v", err)
	}
	if !strings.HasPrefix(string(props), "bootstrap.servers=") {
		t.Errorf("client config = %q", props)
	}
	if !strings.Contains(h.stdout.String(), "Start go client configs") {
		t.Errorf("stdout = %q", h.stdout)
	}
}

func TestClusterCreateStopsOnFailure(t *testing.T) {
	h := newHarness(t, "")
	scriptCluster(h.fake)
	h.fake.On("api-key create --resource lkc-abc",
		runnertest.Response{Err: &runner.ExitError{Code: 5, Stderr: "Error: quota exceeded"}})

	err := h.run(NewClusterCreateCmd(h.env), "--name", "demo")
	if ExitCode(err) != 5 {
		t.Fatalf("ExitCode() = %d, want 5 (err %v)", ExitCode(err), err)
	}
	if calls := h.fake.CallsWithPrefix("schema-registry"); len(calls) != 0 {
		t.Errorf("schema registry calls after failure: %v", calls)
	}
	if !strings.Contains(h.stderr.String(), "quota exceeded") {
		t.Errorf("stderr = %q", h.stderr)
	}
}

func TestClusterCreateRequiresName(t *testing.T) {
	h := newHarness(t, "")

	err := h.run(NewClusterCreateCmd(h.env))
	if err == nil || ExitCode(err) != 1 {
		t.Fatalf("error = %v, want exit 1", err)
	}
	if len(h.fake.Calls()) != 0 {
		t.Errorf("calls = %v, want none", h.fake.Calls())
	}
}

func TestClusterCreateInvalidCloud(t *testing.T) {
	h := newHarness(t, "")

	if err := h.run(NewClusterCreateCmd(h.env), "--name", "demo", "--cloud", "ibm"); err == nil {
		t.Fatal("expected invalid cloud error")
	}
	if len(h.fake.Calls()) != 0 {
		t.Errorf("calls = %v, want none", h.fake.Calls())
	}
}

func TestKeysPurge(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		input       string
		keys        string
		wantList    string
		wantDeletes int
		wantOut     string
	}{
		{
			name:        "current user confirmed",
			input:       "y\n",
			keys:        `[{"key":"K1","owner":"u-1"},{"key":"K2","owner":"u-1"}]`,
			wantList:    "api-key list -o json --current-user",
			wantDeletes: 2,
			wantOut:     "Purged 2 API keys",
		},
		{
			name:        "service account declined",
			args:        []string{"--sa", "sa-1", "--resource", "lkc-1"},
			input:       "n\n",
			keys:        `[{"key":"K1"}]`,
			wantList:    "api-key list -o json --resource lkc-1 --service-account sa-1",
			wantDeletes: 0,
			wantOut:     "Not purging keys, so quitting now",
		},
		{
			name:        "none found",
			args:        []string{"--env", "env-1"},
			input:       "y\n",
			keys:        `[]`,
			wantList:    "api-key list -o json --environment env-1",
			wantDeletes: 0,
			wantOut:     "No API keys found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.input)
			h.fake.
				On("api-key list", runnertest.Response{Stdout: tt.keys}).
				On("api-key delete", runnertest.Response{Stdout: "Deleted API key.\n"})

			if err := h.run(NewKeysPurgeCmd(h.env), tt.args...); err != nil {
				t.Fatalf("run error = %v", err)
			}
			if got := strings.Join(h.fake.Calls()[0], " "); got != tt.wantList {
				t.Errorf("list = %q, want %q", got, tt.wantList)
			}
			if got := len(h.fake.CallsWithPrefix("api-key delete")); got != tt.wantDeletes {
				t.Errorf("deletes = %d, want %d", got, tt.wantDeletes)
			}
			if !strings.Contains(h.stdout.String(), tt.wantOut) {
				t.Errorf("stdout = %q, want %q", h.stdout, tt.wantOut)
			}
		})
	}
}

func TestKeysPurgeMutuallyExclusive(t *testing.T) {
	h := newHarness(t, "y\n")

	err := h.run(NewKeysPurgeCmd(h.env), "--env", "env-1", "--sa", "sa-1")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if len(h.fake.Calls()) != 0 {
		t.Errorf("calls = %v, want none", h.fake.Calls())
	}
	if !strings.Contains(h.stderr.String(), "only specify one of environment id or service-account") {
		t.Errorf("stderr = %q", h.stderr)
	}
}

func newPluginRepo(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			http.Error(w, "bad credentials", http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/contents/":
			fmt.Fprint(w, `[{"name":"purge-keys","type":"dir"},{"name":"search","type":"dir"},{"name":"purge-schemas","type":"dir"}]`)
		case "/contents/purge-schemas":
			fmt.Fprintf(w, `[{"name":"confluent-schema_purge.py","type":"file","download_url":"%s/raw/purge.py"}]`, srv.URL)
		case "/raw/purge.py":
			fmt.Fprint(w, "#!/usr/bin/env python3\n")
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPluginSearchInstall(t *testing.T) {
	srv := newPluginRepo(t)
	h := newHarness(t, "2\n")

	err := h.run(NewPluginSearchCmd(h.env), "--token", "tok", "--repo-url", srv.URL+"/contents/", "--path", "/plugins")
	if err != nil {
		t.Fatalf("run error = %v (stderr %s)", err, h.stderr)
	}

	out := h.stdout.String()
	if !strings.Contains(out, "purge-keys") || strings.Contains(out, "search\n") {
		t.Errorf("listing = %q", out)
	}
	info, err := h.env.Fs.Stat("/plugins/confluent-schema_purge.py")
	if err != nil {
		t.Fatalf("plugin not installed: %v", err)
	}
	if info.Mode().Perm()&0o111 != 0o111 {
		t.Errorf("mode = %v, want execute bits", info.Mode())
	}
	if !strings.Contains(out, "Successfully installed confluent-schema_purge.py to /plugins") {
		t.Errorf("stdout = %q", out)
	}
}

func TestPluginSearchQuit(t *testing.T) {
	srv := newPluginRepo(t)
	h := newHarness(t, "n\n")

	if err := h.run(NewPluginSearchCmd(h.env), "--token", "tok", "--repo-url", srv.URL+"/contents/"); err != nil {
		t.Fatalf("run error = %v", err)
	}
	if !strings.Contains(h.stdout.String(), "Bye!!") {
		t.Errorf("stdout = %q", h.stdout)
	}
}

func TestPluginSearchErrors(t *testing.T) {
	srv := newPluginRepo(t)

	tests := []struct {
		name    string
		args    []string
		input   string
		wantMsg string
	}{
		{
			name:    "missing token",
			args:    []string{"--repo-url", srv.URL + "/contents/"},
			wantMsg: "You must specify --token",
		},
		{
			name:    "bad token",
			args:    []string{"--token", "nope", "--repo-url", srv.URL + "/contents/"},
			wantMsg: "There was an error connecting to GitHub - 401: Unauthorized",
		},
		{
			name:    "bad selection",
			args:    []string{"--token", "tok", "--repo-url", srv.URL + "/contents/"},
			input:   "9\n",
			wantMsg: "must be between 1 and 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.input)

			err := h.run(NewPluginSearchCmd(h.env), tt.args...)
			if ExitCode(err) != 1 {
				t.Fatalf("ExitCode() = %d, want 1 (err %v)", ExitCode(err), err)
			}
			if !strings.Contains(h.stderr.String(), tt.wantMsg) {
				t.Errorf("stderr = %q, want %q", h.stderr, tt.wantMsg)
			}
		})
	}
}

func TestVersionSubcommand(t *testing.T) {
	h := newHarness(t, "")

	if err := h.run(NewKeysPurgeCmd(h.env), "version"); err != nil {
		t.Fatalf("run error = %v", err)
	}
	if !strings.Contains(h.stdout.String(), "confluent-keys-purge version test") {
		t.Errorf("stdout = %q", h.stdout)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "external", err: fmt.Errorf("wrapped: %w", &runner.ExitError{Code: 3}), want: 3},
		{name: "api", err: &plugins.APIError{Status: 500}, want: 1},
		{name: "validation", err: invalid("bad"), want: 1},
		{name: "other", err: context.Canceled, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

// testChdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func testChdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("os.Getwd() error = %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("os.Chdir(%q) error = %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatalf("os.Chdir(%q) error = %v", wd, err)
		}
	})
}
