package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ryanbastic/go-sampledb/internal/config"
	"github.com/ryanbastic/go-sampledb/internal/fakeserver"
	"github.com/ryanbastic/go-sampledb/pkg/sampledb"
)

const testKey = "cli-test-key"

func startFake(t *testing.T) string {
	t.Helper()
	ts := httptest.NewServer(fakeserver.New(slog.New(slog.DiscardHandler), testKey))
	t.Cleanup(ts.Close)
	return ts.URL
}

type runOpts struct {
	key   string
	stdin io.Reader
}

func run(t *testing.T, base string, opts runOpts, args ...string) (string, error) {
	t.Helper()
	if opts.key == "" {
		opts.key = testKey
	}
	root := newRootCmd(config.Config{Timeout: 5 * time.Second}, slog.New(slog.DiscardHandler))

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	if opts.stdin != nil {
		root.SetIn(opts.stdin)
	}
	root.SetArgs(append([]string{"--address", base, "--api-key", opts.key}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func decodeOutput[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	return v
}

func TestMe(t *testing.T) {
	base := startFake(t)

	out, err := run(t, base, runOpts{}, "me")
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	u := decodeOutput[sampledb.User](t, out)
	if u.UserID != 1 || u.Name != "Nils Weber" {
		t.Errorf("me: got %+v", u)
	}
	if !strings.Contains(out, "\n  \"name\"") {
		t.Errorf("expected indented output, got %s", out)
	}
}

func TestListOrGet(t *testing.T) {
	base := startFake(t)

	out, err := run(t, base, runOpts{}, "users")
	if err != nil {
		t.Fatalf("users: %v", err)
	}
	if users := decodeOutput[[]sampledb.User](t, out); len(users) != 2 {
		t.Errorf("users: got %d", len(users))
	}

	out, err = run(t, base, runOpts{}, "users", "2")
	if err != nil {
		t.Fatalf("users 2: %v", err)
	}
	if u := decodeOutput[sampledb.User](t, out); u.Name != "Test User" {
		t.Errorf("user 2: got %+v", u)
	}

	out, err = run(t, base, runOpts{}, "location-types", "3")
	if err != nil {
		t.Fatalf("location-types 3: %v", err)
	}
	if lt := decodeOutput[sampledb.LocationType](t, out); lt.Name != "Room" {
		t.Errorf("location type: got %+v", lt)
	}
}

func TestArgumentErrors(t *testing.T) {
	base := startFake(t)

	if _, err := run(t, base, runOpts{}, "users", "abc"); err == nil || !strings.Contains(err.Error(), "not an integer") {
		t.Errorf("non-integer id: got %v", err)
	}
	if _, err := run(t, base, runOpts{}, "users", "0"); !errors.Is(err, sampledb.ErrInvalidArgument) {
		t.Errorf("zero id: got %v", err)
	}
	if _, err := run(t, base, runOpts{}, "objects", "42"); !errors.Is(err, sampledb.ErrClient) {
		t.Errorf("unknown object: got %v", err)
	}
}

func TestWrongKey(t *testing.T) {
	base := startFake(t)

	_, err := run(t, base, runOpts{key: "nope"}, "me")
	if !errors.Is(err, sampledb.ErrAuthenticationFailed) {
		t.Errorf("expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestObjectsAndData(t *testing.T) {
	base := startFake(t)

	out, err := run(t, base, runOpts{}, "objects", "--query", "sample", "--name-only")
	if err != nil {
		t.Fatalf("objects: %v", err)
	}
	objs := decodeOutput[[]sampledb.Object](t, out)
	if len(objs) != 1 || objs[0].ObjectID != 1 {
		t.Fatalf("objects: got %+v", objs)
	}

	out, err = run(t, base, runOpts{}, "objects", "1", "--version", "0")
	if err != nil {
		t.Fatalf("objects 1 --version 0: %v", err)
	}
	if obj := decodeOutput[sampledb.Object](t, out); obj.VersionID != 0 || obj.ActionID != 1 {
		t.Errorf("version 0: got %+v", obj)
	}

	out, err = run(t, base, runOpts{}, "object-data", "1")
	if err != nil {
		t.Fatalf("object-data: %v", err)
	}
	data := decodeOutput[map[string]any](t, out)
	if data["name"] != "Sample A" || data["active"] != true {
		t.Errorf("object-data: got %v", data)
	}
	mass, _ := data["mass"].(map[string]any)
	if mass["Value"] != "1.2" || mass["Units"] != "mg" {
		t.Errorf("mass: got %v", data["mass"])
	}
}

func TestCommentAndUpload(t *testing.T) {
	base := startFake(t)

	out, err := run(t, base, runOpts{}, "comment", "1", "looks good")
	if err != nil {
		t.Fatalf("comment post: %v", err)
	}
	conf := decodeOutput[confirmation](t, out)
	if conf.Status != 201 || conf.Location != "/api/v1/objects/1/comments/2" {
		t.Errorf("comment confirmation: got %+v", conf)
	}

	out, err = run(t, base, runOpts{}, "comment", "1")
	if err != nil {
		t.Fatalf("comment list: %v", err)
	}
	if comments := decodeOutput[[]sampledb.Comment](t, out); len(comments) != 2 {
		t.Errorf("comments: got %d", len(comments))
	}

	path := filepath.Join(t.TempDir(), "result.csv")
	if err := os.WriteFile(path, []byte("x,y\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	out, err = run(t, base, runOpts{}, "upload", "1", path)
	if err != nil {
		t.Fatalf("upload path: %v", err)
	}
	if conf := decodeOutput[confirmation](t, out); conf.Location != "/api/v1/objects/1/files/1" {
		t.Errorf("upload confirmation: got %+v", conf)
	}

	_, err = run(t, base, runOpts{stdin: strings.NewReader("from stdin")}, "upload", "1", "-", "--name", "stdin.txt")
	if err != nil {
		t.Fatalf("upload stdin: %v", err)
	}
	_, err = run(t, base, runOpts{}, "upload", "1", "--link", "https://example.com/x")
	if err != nil {
		t.Fatalf("upload link: %v", err)
	}

	out, err = run(t, base, runOpts{}, "log", "--after", "1")
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	entries := decodeOutput[[]sampledb.ObjectLogEntry](t, out)
	if len(entries) != 4 {
		t.Fatalf("log entries: got %d, want 4", len(entries))
	}
	if entries[0].Type != fakeserver.LogPostComment || entries[3].Type != fakeserver.LogUploadFile {
		t.Errorf("log types: got %s ... %s", entries[0].Type, entries[3].Type)
	}
}

func TestInstrumentLog(t *testing.T) {
	base := startFake(t)

	out, err := run(t, base, runOpts{}, "instrument-log", "1", "--post", "beam aligned", "--category", "1", "--object", "1")
	if err != nil {
		t.Fatalf("instrument-log --post: %v", err)
	}
	if conf := decodeOutput[confirmation](t, out); conf.Location != "/api/v1/instruments/1/log_entries/2" {
		t.Errorf("confirmation: got %+v", conf)
	}

	out, err = run(t, base, runOpts{}, "instrument-log", "1", "2")
	if err != nil {
		t.Fatalf("instrument-log 1 2: %v", err)
	}
	if !strings.Contains(out, "beam aligned") {
		t.Errorf("expected new entry content in output, got %s", out)
	}
}
