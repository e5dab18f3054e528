package gateway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/centsible/centsible-go/internal/credstore"
	"github.com/centsible/centsible-go/internal/domain"
	"github.com/centsible/centsible-go/internal/gateway"
	"github.com/centsible/centsible-go/internal/infra/observability"

	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.Handler) (*gateway.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	session := gateway.NewSession(credstore.NewMemory())
	client := gateway.NewClient(
		srv.Client(),
		gateway.Config{BaseURL: srv.URL, Timeout: 2 * time.Second},
		session,
		nil,
		observability.NewMetrics(),
		zap.NewNop(),
	)
	return client, srv
}

func TestRequest_AuthHeaderOnlyWhenTokenStored(t *testing.T) {
	var gotAuth atomic.Value
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		w.Write([]byte(`{}`))
	}))

	if _, err := client.Request(context.Background(), "/bills", gateway.RequestOptions{}); err != nil {
		t.Fatalf("request: %v", err)
	}
	if auth := gotAuth.Load().(string); auth != "" {
		t.Errorf("expected no Authorization header without a token, got %q", auth)
	}

	if err := client.Session().SetTokens(domain.AuthTokens{AccessToken: "tok-123", RefreshToken: "ref"}); err != nil {
		t.Fatalf("set tokens: %v", err)
	}
	if _, err := client.Request(context.Background(), "/bills", gateway.RequestOptions{}); err != nil {
		t.Fatalf("request: %v", err)
	}
	if auth := gotAuth.Load().(string); auth != "Bearer tok-123" {
		t.Errorf("expected bearer token, got %q", auth)
	}
}

func TestRequest_TimeoutClassification(t *testing.T) {
	responded := make(chan struct{})
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
			w.Write([]byte(`{"late":true}`))
		}
		close(responded)
	}))

	start := time.Now()
	raw, err := client.Request(context.Background(), "/slow", gateway.RequestOptions{
		Timeout: 100 * time.Millisecond,
	})
	if err == nil {
		t.Fatalf("expected timeout error, got body %s", raw)
	}
	if time.Since(start) > time.Second {
		t.Error("timeout did not cancel the in-flight call")
	}

	te, ok := domain.AsTransport(err)
	if !ok {
		t.Fatalf("expected TransportError, got %T", err)
	}
	if !te.IsTimeout() {
		t.Errorf("expected timeout classification, got %+v", te)
	}
	if te.Status != 0 {
		t.Errorf("timeout must carry no HTTP status, got %d", te.Status)
	}
	<-responded // discarded server response must not affect the settled call
}

func TestRequest_ValidationErrorFlattening(t *testing.T) {
	body := `{"message":"Validation failed","errors":{"email":["required"],"age":["must be positive","must be integer"]}}`
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(body))
	}))

	_, err := client.Request(context.Background(), "/bills", gateway.RequestOptions{Method: http.MethodPost, JSON: map[string]string{}})
	te, ok := domain.AsTransport(err)
	if !ok {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if !te.IsValidation() {
		t.Errorf("expected validation classification for 400")
	}

	want := []string{"email: required", "age: must be positive", "age: must be integer"}
	if !reflect.DeepEqual(te.Errors, want) {
		t.Errorf("flattened errors = %v, want %v (field-then-message order)", te.Errors, want)
	}
}

func TestRequest_ValidationErrorArrayPassthrough(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"bad","errors":["amount is required","dueDate is invalid"]}`))
	}))

	_, err := client.Request(context.Background(), "/bills", gateway.RequestOptions{Method: http.MethodPost, JSON: map[string]string{}})
	te, _ := domain.AsTransport(err)
	if te == nil {
		t.Fatalf("expected TransportError, got %v", err)
	}
	want := []string{"amount is required", "dueDate is invalid"}
	if !reflect.DeepEqual(te.Errors, want) {
		t.Errorf("errors = %v, want %v", te.Errors, want)
	}
}

func TestRequest_NotFoundAndForbiddenDefaults(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{}`))
		case "/titled":
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"title":"No such loan"}`))
		default:
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`not even json`))
		}
	}))

	_, err := client.Request(context.Background(), "/missing", gateway.RequestOptions{})
	if te, _ := domain.AsTransport(err); te == nil || te.Message != "User not found" {
		t.Errorf("404 default message wrong: %v", err)
	}

	_, err = client.Request(context.Background(), "/titled", gateway.RequestOptions{})
	if te, _ := domain.AsTransport(err); te == nil || te.Message != "No such loan" {
		t.Errorf("404 should prefer payload title: %v", err)
	}

	_, err = client.Request(context.Background(), "/forbidden", gateway.RequestOptions{})
	if te, _ := domain.AsTransport(err); te == nil || te.Message != "Forbidden" {
		t.Errorf("403 default message wrong: %v", err)
	}
}

func TestRequest_GenericHTTPErrorMessage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{}`))
	}))

	_, err := client.Request(context.Background(), "/bills", gateway.RequestOptions{})
	te, _ := domain.AsTransport(err)
	if te == nil || te.Message != "HTTP error! status: 502" {
		t.Errorf("unexpected 502 message: %v", err)
	}
}

func TestRequest_SessionExpiryClearsOnceAcrossConcurrentCalls(t *testing.T) {
	release := make(chan struct{})
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{}`))
	}))

	if err := client.Session().SetTokens(domain.AuthTokens{AccessToken: "a", RefreshToken: "r"}); err != nil {
		t.Fatal(err)
	}

	var notifications int32
	client.Session().OnInvalidate(func() { atomic.AddInt32(&notifications, 1) })

	const inFlight = 8
	var wg sync.WaitGroup
	errs := make([]error, inFlight)
	for i := 0; i < inFlight; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.Request(context.Background(), "/bills", gateway.RequestOptions{})
		}(i)
	}
	close(release)
	wg.Wait()

	for i, err := range errs {
		te, ok := domain.AsTransport(err)
		if !ok || !te.IsUnauthorized() {
			t.Fatalf("call %d: expected unauthorized transport error, got %v", i, err)
		}
		if te.Message != "unauthorized" {
			t.Errorf("call %d: expected generic unauthorized message, got %q", i, te.Message)
		}
	}

	if got := atomic.LoadInt32(&notifications); got != 1 {
		t.Errorf("expected exactly 1 invalidation notification, got %d", got)
	}
	if access := client.Session().AccessToken(); access != "" {
		t.Error("expected credential pair cleared")
	}
}

func TestRequest_LoginTimeoutStatusBehavesLike401(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(domain.StatusLoginTimeout)
		w.Write([]byte(`{}`))
	}))

	if err := client.Session().SetTokens(domain.AuthTokens{AccessToken: "a", RefreshToken: "r"}); err != nil {
		t.Fatal(err)
	}

	_, err := client.Request(context.Background(), "/bills", gateway.RequestOptions{})
	te, ok := domain.AsTransport(err)
	if !ok || !te.IsUnauthorized() {
		t.Fatalf("expected unauthorized classification for 440, got %v", err)
	}
	if access := client.Session().AccessToken(); access != "" {
		t.Error("expected credentials cleared on 440")
	}
}

func TestVerbWrappers_WrapIntoResult(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); r.Method == http.MethodPost && ct != "application/json" {
			t.Errorf("POST content type = %q, want application/json", ct)
		}
		w.Write([]byte(`{"id":"b-1","name":"Rent"}`))
	}))

	got, err := gateway.Get[domain.Bill](context.Background(), client, "/bills/b-1", gateway.RequestOptions{})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Data.ID != "b-1" || got.Data.Name != "Rent" {
		t.Errorf("unexpected result: %+v", got.Data)
	}

	posted, err := gateway.Post[domain.Bill](context.Background(), client, "/bills", domain.Bill{Name: "Rent"}, gateway.RequestOptions{})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if posted.Data.ID != "b-1" {
		t.Errorf("unexpected post result: %+v", posted.Data)
	}
}

func TestPostMultipart_WriterSetsBoundary(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if got := r.FormValue("filename"); got != "logo.png" {
			t.Errorf("field filename = %q", got)
		}
		file, _, err := r.FormFile("logo")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		file.Close()
		w.Write([]byte(`{"success":true,"data":{}}`))
	}))

	_, err := client.PostMultipart(context.Background(), "/team/branding/logo",
		map[string]string{"filename": "logo.png"},
		map[string][]byte{"logo": []byte("png-bytes")},
		gateway.RequestOptions{},
	)
	if err != nil {
		t.Fatalf("multipart post: %v", err)
	}
}

func TestDomainMethods_StrictVsTolerant(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/bills":
			// Malformed for a collection: object without any data array.
			w.Write([]byte(`{"unexpected":"shape"}`))
		case "/bills/b-9":
			w.Write([]byte(`{"success":false,"message":"Bill was archived"}`))
		default:
			http.NotFound(w, r)
		}
	}))

	bills, err := client.Bills(context.Background())
	if err != nil {
		t.Fatalf("collections must not fail on malformed shapes: %v", err)
	}
	if len(bills) != 0 {
		t.Errorf("expected empty degradation, got %d bills", len(bills))
	}

	_, err = client.Bill(context.Background(), "b-9")
	de, ok := domain.AsDomain(err)
	if !ok {
		t.Fatalf("expected DomainError for success=false, got %v", err)
	}
	if de.Message != "Bill was archived" {
		t.Errorf("expected envelope message, got %q", de.Message)
	}
}

func TestLogin_StoresCredentialPair(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		json.NewDecoder(r.Body).Decode(&creds)
		if creds["email"] != "amy@example.com" {
			t.Errorf("unexpected login body: %v", creds)
		}
		w.Write([]byte(`{"success":true,"data":{"accessToken":"acc-9","refreshToken":"ref-9","user":{"id":"u-1","email":"amy@example.com"}}}`))
	}))

	user, err := client.Login(context.Background(), "amy@example.com", "hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != "u-1" {
		t.Errorf("unexpected user: %+v", user)
	}
	if access := client.Session().AccessToken(); access != "acc-9" {
		t.Errorf("expected access token stored, got %q", access)
	}
	if refresh := client.Session().RefreshToken(); refresh != "ref-9" {
		t.Errorf("expected refresh token stored, got %q", refresh)
	}
}

func TestLogout_ClearsSessionEvenWhenServerFails(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{}`))
	}))

	if err := client.Session().SetTokens(domain.AuthTokens{AccessToken: "a", RefreshToken: "r"}); err != nil {
		t.Fatal(err)
	}
	_ = client.Logout(context.Background())

	if access := client.Session().AccessToken(); access != "" {
		t.Error("expected local session cleared despite server error")
	}
}

func TestRequest_MutatingCallsCarryIdempotencyKey(t *testing.T) {
	var gotKey atomic.Value
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey.Store(r.Header.Get("Idempotency-Key"))
		w.Write([]byte(`{"success":true,"data":{}}`))
	}))

	if _, err := client.Request(context.Background(), "/bills", gateway.RequestOptions{
		Method: http.MethodPost,
		JSON:   map[string]string{"name": "Rent"},
	}); err != nil {
		t.Fatalf("request: %v", err)
	}
	if key := gotKey.Load().(string); key == "" {
		t.Error("expected Idempotency-Key header on a POST, got none")
	}

	if _, err := client.Request(context.Background(), "/bills", gateway.RequestOptions{}); err != nil {
		t.Fatalf("request: %v", err)
	}
	if key := gotKey.Load().(string); key != "" {
		t.Errorf("expected no Idempotency-Key header on a GET, got %q", key)
	}
}

func TestRequest_TransportTimeoutClassifiedAsTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	// A transport-level cap below the per-call deadline: the failure must
	// still classify as a timeout, not a generic network error.
	httpClient := &http.Client{Timeout: 30 * time.Millisecond}
	client := gateway.NewClient(
		httpClient,
		gateway.Config{BaseURL: srv.URL, Timeout: 2 * time.Second},
		gateway.NewSession(credstore.NewMemory()),
		nil,
		observability.NewMetrics(),
		zap.NewNop(),
	)

	_, err := client.Request(context.Background(), "/bills", gateway.RequestOptions{Timeout: 2 * time.Second})
	te, ok := domain.AsTransport(err)
	if !ok {
		t.Fatalf("expected transport error, got %v", err)
	}
	if !te.IsTimeout() {
		t.Errorf("expected timeout classification, got %q (status %d)", te.Message, te.Status)
	}
}
