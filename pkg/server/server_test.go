package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/goliatone/go-schemaforge/pkg/fieldtree"
	"github.com/goliatone/go-schemaforge/pkg/session"
	"github.com/goliatone/go-schemaforge/pkg/testsupport"
)

func newTestServer(t *testing.T, opts ...Option) (*Server, *session.Session, *httptest.Server) {
	t.Helper()

	sess := session.New(
		session.WithEditor(fieldtree.NewEditor(fieldtree.WithIDGenerator(fieldtree.SequenceIDs("n")))),
		session.WithClipboard(nil),
	)
	srv, err := New(sess, opts...)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Close()
		ts.Close()
	})
	return srv, sess, ts
}

func do(t *testing.T, method, url, body string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, data
}

func TestFieldLifecycle(t *testing.T) {
	_, sess, ts := newTestServer(t)

	status, body := do(t, http.MethodPost, ts.URL+"/api/fields", "")
	if status != http.StatusCreated {
		t.Fatalf("add field status %d: %s", status, body)
	}
	var created createdResponse
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Field.ID != "n1" || created.Version != 1 {
		t.Fatalf("unexpected create response: %+v", created)
	}

	status, body = do(t, http.MethodPatch, ts.URL+"/api/fields/0", `{"name":"address","kind":"object"}`)
	if status != http.StatusOK {
		t.Fatalf("patch status %d: %s", status, body)
	}
	status, body = do(t, http.MethodPost, ts.URL+"/api/fields/0/properties", "")
	if status != http.StatusCreated {
		t.Fatalf("add property status %d: %s", status, body)
	}
	status, body = do(t, http.MethodPatch, ts.URL+"/api/fields/0.0", `{"name":"city","description":"Town"}`)
	if status != http.StatusOK {
		t.Fatalf("patch property status %d: %s", status, body)
	}
	status, body = do(t, http.MethodPost, ts.URL+"/api/fields/0.0/required", "")
	if status != http.StatusOK {
		t.Fatalf("toggle status %d: %s", status, body)
	}

	status, body = do(t, http.MethodGet, ts.URL+"/api/schema", "")
	if status != http.StatusOK {
		t.Fatalf("schema status %d: %s", status, body)
	}
	want := `{
		"type": "object",
		"properties": {
			"address": {
				"type": "object",
				"properties": {"city": {"type": "string", "description": "Town"}},
				"required": ["city"]
			}
		}
	}`
	if diff := testsupport.JSONDiff(t, []byte(want), body); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}

	status, body = do(t, http.MethodDelete, ts.URL+"/api/fields/0.0", "")
	if status != http.StatusOK {
		t.Fatalf("delete status %d: %s", status, body)
	}
	if got := len(sess.Forest()[0].Properties); got != 0 {
		t.Fatalf("expected property removed, %d left", got)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	_, sess, ts := newTestServer(t)
	if _, err := sess.AddRootField(); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := sess.Update(fieldtree.Root(0), fieldtree.ChangeKind(fieldtree.KindArray)); err != nil {
		t.Fatalf("update: %v", err)
	}

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"bad path", http.MethodPatch, "/api/fields/x.y", `{"name":"a"}`, http.StatusBadRequest},
		{"unknown kind", http.MethodPatch, "/api/fields/0", `{"kind":"date"}`, http.StatusBadRequest},
		{"unknown body field", http.MethodPatch, "/api/fields/0", `{"label":"a"}`, http.StatusBadRequest},
		{"missing node", http.MethodDelete, "/api/fields/7", "", http.StatusNotFound},
		{"property on array", http.MethodPost, "/api/fields/0/properties", "", http.StatusConflict},
		{"delete item", http.MethodDelete, "/api/fields/0.item", "", http.StatusConflict},
		{"unknown format", http.MethodGet, "/api/schema?format=toml", "", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := do(t, tc.method, ts.URL+tc.path, tc.body)
			if status != tc.want {
				t.Fatalf("status = %d, want %d (%s)", status, tc.want, body)
			}
			var resp errorResponse
			if err := json.Unmarshal(body, &resp); err != nil || resp.Error == "" {
				t.Fatalf("expected error payload, got %s", body)
			}
		})
	}
	if sess.Forest()[0].Item == nil {
		t.Fatalf("array item removed by failed request")
	}
}

func TestSchemaFormats(t *testing.T) {
	_, sess, ts := newTestServer(t, WithDefaultFormat("yaml"))
	if _, err := sess.AddRootField(); err != nil {
		t.Fatalf("add: %v", err)
	}

	resp, err := http.Get(ts.URL + "/api/schema")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "application/yaml" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(string(body), "newField:") {
		t.Fatalf("yaml body missing field:\n%s", body)
	}

	status, body := do(t, http.MethodGet, ts.URL+"/api/schema?format=openapi", "")
	if status != http.StatusOK || !strings.Contains(string(body), `"openapi"`) {
		t.Fatalf("openapi export failed (%d): %s", status, body)
	}
}

func TestLintEndpoint(t *testing.T) {
	_, sess, ts := newTestServer(t)
	for i := 0; i < 2; i++ {
		if _, err := sess.AddRootField(); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	status, body := do(t, http.MethodGet, ts.URL+"/api/lint", "")
	if status != http.StatusOK {
		t.Fatalf("lint status %d: %s", status, body)
	}
	var resp lintResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Lint.Valid || len(resp.Lint.Issues) != 1 {
		t.Fatalf("expected one duplicate-name issue, got %+v", resp.Lint)
	}
	if !resp.MetaSchema.Valid {
		t.Fatalf("compiled schema failed meta-schema check: %+v", resp.MetaSchema)
	}
}

func TestPageRendersFields(t *testing.T) {
	_, sess, ts := newTestServer(t, WithTitle("Profile editor"))
	if _, err := sess.AddRootField(); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := sess.Update(fieldtree.Root(0), fieldtree.Patch{
		Name:        ptr(`<i>nick</i>`),
		Description: ptr("Shown to <em>friends</em>"),
	}); err != nil {
		t.Fatalf("rename: %v", err)
	}

	status, body := do(t, http.MethodGet, ts.URL+"/", "")
	if status != http.StatusOK {
		t.Fatalf("page status %d", status)
	}
	page := string(body)
	for _, want := range []string{
		"<title>Profile editor</title>",
		`data-path="0"`,
		"&lt;i&gt;nick&lt;/i&gt;",
		`value="Shown to &lt;em&gt;friends&lt;/em&gt;" placeholder="description" data-action="describe"`,
		`id="notice"`,
		"JSON Schema copied to clipboard",
	} {
		if !strings.Contains(page, want) {
			t.Fatalf("page missing %q", want)
		}
	}

	status, _ = do(t, http.MethodGet, ts.URL+"/healthz", "")
	if status != http.StatusOK {
		t.Fatalf("healthz status %d", status)
	}
}

func TestWebSocketPushesPreview(t *testing.T) {
	srv, sess, ts := newTestServer(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var initial PreviewMessage
	if err := conn.ReadJSON(&initial); err != nil {
		t.Fatalf("read initial: %v", err)
	}
	if initial.Version != 0 || initial.Type != "schema" {
		t.Fatalf("unexpected initial message: %+v", initial)
	}

	deadline := time.Now().Add(2 * time.Second)
	for srv.hub.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if _, err := sess.AddRootField(); err != nil {
		t.Fatalf("add: %v", err)
	}

	var update PreviewMessage
	if err := conn.ReadJSON(&update); err != nil {
		t.Fatalf("read update: %v", err)
	}
	if update.Version != 1 || len(update.Fields) != 1 {
		t.Fatalf("unexpected update: %+v", update)
	}
	want := `{"type":"object","properties":{"newField":{"type":"string"}}}`
	if diff := testsupport.JSONDiff(t, []byte(want), update.Schema); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}
}

func TestEnqueueKeepsNewestPreview(t *testing.T) {
	client := &wsClient{
		send: make(chan PreviewMessage, 1),
		done: make(chan struct{}),
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, v := range []uint64{1, 2, 5, 3, 4} {
			client.enqueue(PreviewMessage{Type: "schema", Version: v})
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("enqueue blocked without a writer")
	}

	if got := (<-client.send).Version; got != 5 {
		t.Fatalf("queued version = %d, want 5", got)
	}

	close(client.done)
	client.enqueue(PreviewMessage{Version: 6})
	if len(client.send) != 0 {
		t.Fatalf("closed client accepted a preview")
	}
}

func TestStalledClientDoesNotBlockEdits(t *testing.T) {
	srv, sess, ts := newTestServer(t)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	stalled, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial stalled: %v", err)
	}
	defer stalled.Close()
	reader, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial reader: %v", err)
	}
	defer reader.Close()

	deadline := time.Now().Add(2 * time.Second)
	for srv.hub.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	const edits = 300
	finished := make(chan error, 1)
	go func() {
		for i := 0; i < edits; i++ {
			if _, err := sess.AddRootField(); err != nil {
				finished <- err
				return
			}
		}
		finished <- nil
	}()
	select {
	case err := <-finished:
		if err != nil {
			t.Fatalf("add: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("edits stalled behind a client that never reads")
	}

	status, _ := do(t, http.MethodGet, ts.URL+"/api/fields", "")
	if status != http.StatusOK {
		t.Fatalf("fields status %d", status)
	}

	_ = reader.SetReadDeadline(time.Now().Add(5 * time.Second))
	var last uint64
	for last < edits {
		var msg PreviewMessage
		if err := reader.ReadJSON(&msg); err != nil {
			t.Fatalf("read preview after version %d: %v", last, err)
		}
		if msg.Version < last {
			t.Fatalf("preview went backwards: %d after %d", msg.Version, last)
		}
		last = msg.Version
	}
}

func TestRequestsAreTraced(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())

	_, _, ts := newTestServer(t, WithTracerProvider(tp))
	do(t, http.MethodPost, ts.URL+"/api/fields", "")
	do(t, http.MethodGet, ts.URL+"/api/fields", "")

	var names []string
	for _, span := range exporter.GetSpans() {
		names = append(names, span.Name)
	}
	if diff := cmp.Diff([]string{"POST /api/fields", "GET /api/fields"}, names); diff != "" {
		t.Fatalf("span names mismatch (-want +got):\n%s", diff)
	}
}

func TestMetricsRecordRequestsAndMutations(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	_, _, ts := newTestServer(t, WithMeterProvider(mp))
	do(t, http.MethodPost, ts.URL+"/api/fields", "")
	do(t, http.MethodDelete, ts.URL+"/api/fields/9", "")
	do(t, http.MethodGet, ts.URL+"/api/fields", "")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	metrics := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			metrics[m.Name] = m.Data
		}
	}

	requests, ok := metrics["schemaforge.http.requests"].(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("request counter missing: %T", metrics["schemaforge.http.requests"])
	}
	gotRequests := map[string]int64{}
	for _, dp := range requests.DataPoints {
		route, _ := dp.Attributes.Value("http.route")
		status, _ := dp.Attributes.Value("http.response.status_code")
		gotRequests[fmt.Sprintf("%s %d", route.AsString(), status.AsInt64())] += dp.Value
	}
	wantRequests := map[string]int64{
		"POST /api/fields 201":          1,
		"DELETE /api/fields/{path} 404": 1,
		"GET /api/fields 200":           1,
	}
	if diff := cmp.Diff(wantRequests, gotRequests); diff != "" {
		t.Fatalf("request counts mismatch (-want +got):\n%s", diff)
	}

	latency, ok := metrics["schemaforge.http.request.duration"].(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("latency histogram missing: %T", metrics["schemaforge.http.request.duration"])
	}
	var observed uint64
	for _, dp := range latency.DataPoints {
		observed += dp.Count
	}
	if observed != 3 {
		t.Fatalf("latency observations = %d, want 3", observed)
	}

	mutations, ok := metrics["schemaforge.mutations"].(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("mutation counter missing: %T", metrics["schemaforge.mutations"])
	}
	gotMutations := map[string]int64{}
	for _, dp := range mutations.DataPoints {
		op, _ := dp.Attributes.Value("schemaforge.op")
		success, _ := dp.Attributes.Value("schemaforge.ok")
		gotMutations[fmt.Sprintf("%s ok=%t", op.AsString(), success.AsBool())] += dp.Value
	}
	wantMutations := map[string]int64{
		"add_field ok=true": 1,
		"delete ok=false":   1,
	}
	if diff := cmp.Diff(wantMutations, gotMutations); diff != "" {
		t.Fatalf("mutation counts mismatch (-want +got):\n%s", diff)
	}
}

func TestPatchStoresTextVerbatim(t *testing.T) {
	_, sess, ts := newTestServer(t)
	if _, err := sess.AddRootField(); err != nil {
		t.Fatalf("add: %v", err)
	}

	status, body := do(t, http.MethodPatch, ts.URL+"/api/fields/0", `{"name":"Map<string>","description":" a <b>b</b> & c "}`)
	if status != http.StatusOK {
		t.Fatalf("patch status %d: %s", status, body)
	}
	node := sess.Forest()[0]
	if node.Name != "Map<string>" || node.Description != " a <b>b</b> & c " {
		t.Fatalf("patch rewrote text: %+v", node)
	}

	status, body = do(t, http.MethodGet, ts.URL+"/api/schema", "")
	if status != http.StatusOK {
		t.Fatalf("schema status %d: %s", status, body)
	}
	want := `{"type":"object","properties":{"Map<string>":{"type":"string","description":" a <b>b</b> & c "}}}`
	if diff := testsupport.JSONDiff(t, []byte(want), body); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}
}

func TestNewRequiresSession(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatalf("expected error for nil session")
	}
}

func ptr(s string) *string { return &s }
