package fakeserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ryanbastic/go-sampledb/pkg/sampledb"
	"github.com/ryanbastic/go-sampledb/pkg/sampledb/typedvalue"
)

const testKey = "fake-test-key"

var fixedNow = time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

func newTestClient(t *testing.T) (*sampledb.Client, *Server, string) {
	t.Helper()
	srv := New(slog.New(slog.DiscardHandler), testKey, WithClock(func() time.Time { return fixedNow }))
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	c := sampledb.New()
	if err := c.Authenticate(context.Background(), ts.URL, testKey); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	return c, srv, ts.URL
}

func statusCode(err error) int {
	var se *sampledb.StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

func TestAuth_MissingBearer(t *testing.T) {
	_, _, base := newTestClient(t)

	resp, err := http.Get(base + "/api/v1/users/me")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

func TestAuth_WrongKey(t *testing.T) {
	_, _, base := newTestClient(t)

	c := sampledb.New()
	err := c.Authenticate(context.Background(), base, "wrong")
	if !errors.Is(err, sampledb.ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
	if statusCode(err) != http.StatusUnauthorized {
		t.Errorf("status: got %d", statusCode(err))
	}
}

func TestDirectory(t *testing.T) {
	c, _, _ := newTestClient(t)
	ctx := context.Background()

	me, err := c.Users.Me(ctx)
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if me.Name != "Nils Weber" || me.ORCID != "12345" {
		t.Errorf("me: got %+v", me)
	}

	users, err := c.Users.List(ctx)
	if err != nil {
		t.Fatalf("Users.List: %v", err)
	}
	if len(users) != 2 || users[1].Name != "Test User" || users[1].ORCID != "" {
		t.Errorf("users: got %+v", users)
	}

	_, err = c.Users.Get(ctx, 99)
	if !errors.Is(err, sampledb.ErrClient) || statusCode(err) != http.StatusNotFound {
		t.Errorf("unknown user: got %v", err)
	}

	action, err := c.Actions.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Actions.Get: %v", err)
	}
	if action.Type != "sample" || action.Schema["title"] != "Sample Information" {
		t.Errorf("action: got %+v", action)
	}

	at, err := c.ActionTypes.Get(ctx, 2)
	if err != nil {
		t.Fatalf("ActionTypes.Get: %v", err)
	}
	if at.Name != "Measurement" {
		t.Errorf("action type: got %+v", at)
	}

	loc, err := c.Locations.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Locations.Get: %v", err)
	}
	if loc.Name != "IG1" || loc.ParentLocationID != 2 {
		t.Errorf("location: got %+v", loc)
	}

	lts, err := c.LocationTypes.List(ctx)
	if err != nil {
		t.Fatalf("LocationTypes.List: %v", err)
	}
	if len(lts) != 2 {
		t.Errorf("location types: got %d", len(lts))
	}
}

func TestInstrumentLog(t *testing.T) {
	c, _, _ := newTestClient(t)
	ctx := context.Background()

	inst, err := c.Instruments.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Instruments.Get: %v", err)
	}
	if len(inst.Scientists) != 1 || inst.Scientists[0].Name != "Nils Weber" {
		t.Errorf("scientists: got %+v", inst.Scientists)
	}

	entry, err := c.Instruments.LogEntry(ctx, 1, 1)
	if err != nil {
		t.Fatalf("LogEntry: %v", err)
	}
	if entry.Author == nil || entry.Author.Name != "Nils Weber" {
		t.Errorf("author: got %+v", entry.Author)
	}
	if entry.UTCDatetime.String() != "2022-11-21T09:39:08.470159" {
		t.Errorf("utc_datetime: got %s", entry.UTCDatetime)
	}

	_, err = c.Instruments.CreateLogEntry(ctx, 1, sampledb.LogEntryRequest{
		Content:     "calibrated",
		CategoryIDs: []int{1},
		Files:       []sampledb.LogFile{{Name: "cal.csv", Content: []byte("a,b\n1,2\n")}},
		ObjectIDs:   []int{1},
	})
	if err != nil {
		t.Fatalf("CreateLogEntry: %v", err)
	}

	entries, err := c.Instruments.LogEntries(ctx, 1)
	if err != nil {
		t.Fatalf("LogEntries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries: got %d, want 2", len(entries))
	}
	created := entries[1]
	if created.Content != "calibrated" || len(created.Categories) != 1 {
		t.Errorf("created entry: got %+v", created)
	}
	if !created.UTCDatetime.Equal(fixedNow) {
		t.Errorf("created at: got %s", created.UTCDatetime)
	}

	files, err := c.Instruments.FileAttachments(ctx, 1, created.LogEntryID)
	if err != nil {
		t.Fatalf("FileAttachments: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("files: got %d", len(files))
	}
	data, err := files[0].Bytes()
	if err != nil || string(data) != "a,b\n1,2\n" {
		t.Errorf("file content: got %q, %v", data, err)
	}

	objs, err := c.Instruments.ObjectAttachments(ctx, 1, created.LogEntryID)
	if err != nil {
		t.Fatalf("ObjectAttachments: %v", err)
	}
	if len(objs) != 1 || objs[0].ObjectID != 1 {
		t.Errorf("object attachments: got %+v", objs)
	}
}

func TestCreateLogEntry_UnknownCategory(t *testing.T) {
	c, _, _ := newTestClient(t)

	_, err := c.Instruments.CreateLogEntry(context.Background(), 1, sampledb.LogEntryRequest{
		Content:     "x",
		CategoryIDs: []int{42},
	})
	if statusCode(err) != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestObjects_CreateUpdateVersions(t *testing.T) {
	c, srv, _ := newTestClient(t)
	ctx := context.Background()

	resp, err := c.Objects.Create(ctx, 1, map[string]any{
		"name": typedvalue.EncodeText("Sample B"),
		"mass": typedvalue.EncodeQuantity(typedvalue.Quantity{Value: "3.5", Units: "mg"}),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("status: got %d", resp.StatusCode)
	}
	id, ok := sampledb.CreatedObjectID(resp)
	if !ok || id != 2 {
		t.Fatalf("CreatedObjectID: got %d, %v", id, ok)
	}

	if _, err := c.Objects.Update(ctx, id, map[string]any{"name": typedvalue.EncodeText("Sample B2")}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	v0, err := c.Objects.Version(ctx, id, 0)
	if err != nil {
		t.Fatalf("Version 0: %v", err)
	}
	values := v0.Values()
	if values["name"] != "Sample B" {
		t.Errorf("v0 name: got %v", values["name"])
	}
	if q, ok := values["mass"].(typedvalue.Quantity); !ok || q.Value != "3.5" {
		t.Errorf("v0 mass: got %#v", values["mass"])
	}

	cur, err := c.Objects.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if cur.VersionID != 1 || cur.Values()["name"] != "Sample B2" {
		t.Errorf("current: got version %d name %v", cur.VersionID, cur.Values()["name"])
	}

	_, err = c.Objects.Version(ctx, id, 5)
	if statusCode(err) != http.StatusNotFound {
		t.Errorf("missing version: got %v", err)
	}

	log := srv.ObjectLog()
	if len(log) != 3 {
		t.Fatalf("object log: got %d entries, want 3", len(log))
	}
	if log[1].Type != LogCreateObject || log[2].Type != LogEditObject || log[2].ObjectID != id {
		t.Errorf("object log: got %+v", log)
	}
}

func TestObjects_ListFilters(t *testing.T) {
	c, _, _ := newTestClient(t)
	ctx := context.Background()

	if _, err := c.Objects.Create(ctx, 1, map[string]any{"name": typedvalue.EncodeText("Other thing")}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	tests := []struct {
		name string
		opts sampledb.ListObjectsOptions
		want []int
	}{
		{"all", sampledb.ListObjectsOptions{}, []int{1, 2}},
		{"query", sampledb.ListObjectsOptions{Query: "sample"}, []int{1}},
		{"action type", sampledb.ListObjectsOptions{ActionType: "measurement"}, nil},
		{"limit", sampledb.ListObjectsOptions{Limit: 1}, []int{1}},
		{"offset", sampledb.ListObjectsOptions{Offset: 1}, []int{2}},
		{"offset past end", sampledb.ListObjectsOptions{Offset: 10}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			objs, err := c.Objects.List(ctx, tt.opts)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(objs) != len(tt.want) {
				t.Fatalf("got %d objects, want %d", len(objs), len(tt.want))
			}
			for i, o := range objs {
				if o.ObjectID != tt.want[i] {
					t.Errorf("object %d: got id %d, want %d", i, o.ObjectID, tt.want[i])
				}
			}
		})
	}

	objs, err := c.Objects.List(ctx, sampledb.ListObjectsOptions{NameOnly: true})
	if err != nil {
		t.Fatalf("List name_only: %v", err)
	}
	if len(objs[0].Data) != 1 || objs[0].Schema != nil {
		t.Errorf("name_only: got data %v schema %v", objs[0].Data, objs[0].Schema)
	}
}

func TestPermissions(t *testing.T) {
	c, _, _ := newTestClient(t)
	ctx := context.Background()

	if _, err := c.Objects.SetUserPermission(ctx, 1, 2, "write"); err != nil {
		t.Fatalf("SetUserPermission: %v", err)
	}
	perm, err := c.Objects.UserPermission(ctx, 1, 2)
	if err != nil {
		t.Fatalf("UserPermission: %v", err)
	}
	if perm != "write" {
		t.Errorf("permission: got %q, want %q", perm, "write")
	}

	perms, err := c.Objects.UserPermissions(ctx, 1)
	if err != nil {
		t.Fatalf("UserPermissions: %v", err)
	}
	if perms[1] != "grant" || perms[2] != "write" {
		t.Errorf("permissions: got %v", perms)
	}

	if _, err := c.Objects.SetGroupPermission(ctx, 1, 7, "read"); err != nil {
		t.Fatalf("SetGroupPermission: %v", err)
	}
	if p, _ := c.Objects.GroupPermission(ctx, 1, 7); p != "read" {
		t.Errorf("group permission: got %q", p)
	}
	if p, _ := c.Objects.ProjectPermission(ctx, 1, 3); p != "none" {
		t.Errorf("project permission: got %q", p)
	}

	_, err = c.Objects.SetUserPermission(ctx, 1, 2, "admin")
	if statusCode(err) != http.StatusBadRequest {
		t.Errorf("invalid permission: got %v", err)
	}

	public, err := c.Objects.Public(ctx, 1)
	if err != nil || public {
		t.Fatalf("Public: got %v, %v", public, err)
	}
	if _, err := c.Objects.SetPublic(ctx, 1, true); err != nil {
		t.Fatalf("SetPublic: %v", err)
	}
	if public, _ := c.Objects.Public(ctx, 1); !public {
		t.Error("expected object to be public")
	}
}

func TestFilesAndComments(t *testing.T) {
	c, srv, _ := newTestClient(t)
	ctx := context.Background()

	if _, err := c.Objects.UploadFileReader(ctx, 1, "hello.txt", strings.NewReader("hello world")); err != nil {
		t.Fatalf("UploadFileReader: %v", err)
	}
	if _, err := c.Objects.PostLink(ctx, 1, "https://example.com/data"); err != nil {
		t.Fatalf("PostLink: %v", err)
	}

	files, err := c.Objects.Files(ctx, 1)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("files: got %d, want 3", len(files))
	}
	f, err := c.Objects.File(ctx, 1, 1)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	content, err := f.Content()
	if err != nil || string(content) != "hello world" || f.OriginalFileName != "hello.txt" {
		t.Errorf("file: got %+v content %q", f, content)
	}
	if files[2].Storage != "url" || files[2].URL != "https://example.com/data" {
		t.Errorf("link: got %+v", files[2])
	}

	_, err = c.Objects.PostLink(ctx, 1, "not a url")
	if statusCode(err) != http.StatusBadRequest {
		t.Errorf("invalid link: got %v", err)
	}

	if _, err := c.Objects.PostComment(ctx, 1, "second"); err != nil {
		t.Fatalf("PostComment: %v", err)
	}
	comment, err := c.Objects.Comment(ctx, 1, 2)
	if err != nil {
		t.Fatalf("Comment: %v", err)
	}
	if comment.Content != "second" || comment.UserID != 1 || !comment.UTCDatetime.Equal(fixedNow) {
		t.Errorf("comment: got %+v", comment)
	}

	var types []string
	for _, e := range srv.ObjectLog() {
		types = append(types, e.Type)
	}
	want := []string{LogCreateObject, LogUploadFile, LogUploadFile, LogPostComment}
	if strings.Join(types, ",") != strings.Join(want, ",") {
		t.Errorf("object log types: got %v, want %v", types, want)
	}
}

func TestLocationOccurrences(t *testing.T) {
	c, _, _ := newTestClient(t)
	ctx := context.Background()

	occ, err := c.Objects.LocationOccurrence(ctx, 1, 0)
	if err != nil {
		t.Fatalf("LocationOccurrence: %v", err)
	}
	if occ.Location == nil || occ.Location.Name != "IG1" {
		t.Errorf("location: got %+v", occ.Location)
	}
	if occ.ResponsibleUser == nil || occ.ResponsibleUser.Name != "Test User" {
		t.Errorf("responsible user: got %+v", occ.ResponsibleUser)
	}

	_, err = c.Objects.LocationOccurrence(ctx, 1, 3)
	if statusCode(err) != http.StatusNotFound {
		t.Errorf("missing occurrence: got %v", err)
	}
}

func TestObjectLog_AfterID(t *testing.T) {
	c, _, _ := newTestClient(t)
	ctx := context.Background()

	if _, err := c.Objects.PostComment(ctx, 1, "hi"); err != nil {
		t.Fatalf("PostComment: %v", err)
	}

	all, err := c.ObjectLog.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("entries: got %d, want 2", len(all))
	}

	after, err := c.ObjectLog.List(ctx, 1)
	if err != nil {
		t.Fatalf("List after 1: %v", err)
	}
	if len(after) != 1 || after[0].Type != LogPostComment || after[0].Data["comment_id"] != float64(2) {
		t.Errorf("after 1: got %+v", after)
	}
}
