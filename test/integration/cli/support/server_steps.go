package support

import (
	"bytes"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/cucumber/godog"

	"github.com/MeKo-Tech/qrbatch/internal/barcode"
	"github.com/MeKo-Tech/qrbatch/internal/qr"
	"github.com/MeKo-Tech/qrbatch/internal/server"
)

func testServerConfig() server.Config {
	return server.Config{
		Host:       "localhost",
		CORSOrigin: "*",
		MaxSize:    2048,
		TimeoutSec: 30,
		Engine:     barcode.EngineNative,
		Level:      qr.Medium,
		Size:       450,
		Border:     4,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (testCtx *TestContext) startServer(cfg server.Config) error {
	srv, err := server.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	mux := http.NewServeMux()
	srv.SetupRoutes(mux)
	testCtx.HTTPTestServer = httptest.NewServer(mux)
	return nil
}

func (testCtx *TestContext) aQRServerIsRunning() error {
	return testCtx.startServer(testServerConfig())
}

func (testCtx *TestContext) aQRServerLimitedToRequestsPerMinute(limit int) error {
	cfg := testServerConfig()
	cfg.RateLimit = server.RateLimitConfig{
		Enabled:           true,
		RequestsPerMinute: limit,
		RequestsPerHour:   1000,
		MaxRequestsPerDay: 10000,
	}
	return testCtx.startServer(cfg)
}

func (testCtx *TestContext) record(resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	testCtx.LastHTTPStatusCode = resp.StatusCode
	testCtx.LastHTTPResponse = body
	testCtx.LastHTTPHeaders = resp.Header
	return nil
}

func (testCtx *TestContext) iRequest(path string) error {
	if testCtx.HTTPTestServer == nil {
		return fmt.Errorf("no server running")
	}
	resp, err := http.Get(testCtx.HTTPTestServer.URL + path) //nolint:noctx // test server
	if err != nil {
		return err
	}
	return testCtx.record(resp)
}

func (testCtx *TestContext) iPostJSONTo(path string, body *godog.DocString) error {
	if testCtx.HTTPTestServer == nil {
		return fmt.Errorf("no server running")
	}
	resp, err := http.Post(testCtx.HTTPTestServer.URL+path, "application/json", //nolint:noctx // test server
		strings.NewReader(body.Content))
	if err != nil {
		return err
	}
	return testCtx.record(resp)
}

func (testCtx *TestContext) theResponseStatusShouldBe(code int) error {
	if testCtx.LastHTTPStatusCode != code {
		return fmt.Errorf("expected status %d, got %d: %s", code, testCtx.LastHTTPStatusCode, testCtx.LastHTTPResponse)
	}
	return nil
}

func (testCtx *TestContext) theResponseHeaderShouldBe(name, value string) error {
	if got := testCtx.LastHTTPHeaders.Get(name); got != value {
		return fmt.Errorf("expected header %s to be %q, got %q", name, value, got)
	}
	return nil
}

func (testCtx *TestContext) theResponseShouldContain(text string) error {
	if !bytes.Contains(testCtx.LastHTTPResponse, []byte(text)) {
		return fmt.Errorf("response does not contain '%s'\nResponse: %s", text, testCtx.LastHTTPResponse)
	}
	return nil
}

func (testCtx *TestContext) theResponseShouldBeAQRCodeFor(width, height int, want string) error {
	img, err := png.Decode(bytes.NewReader(testCtx.LastHTTPResponse))
	if err != nil {
		return fmt.Errorf("response is not a PNG: %w", err)
	}
	return checkQR(img, width, height, want)
}

// RegisterServerSteps registers HTTP server steps.
func (testCtx *TestContext) RegisterServerSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a QR server is running$`, testCtx.aQRServerIsRunning)
	sc.Step(`^a QR server limited to (\d+) requests? per minute is running$`, testCtx.aQRServerLimitedToRequestsPerMinute)
	sc.Step(`^I request "([^"]*)"$`, testCtx.iRequest)
	sc.Step(`^I post JSON to "([^"]*)":$`, testCtx.iPostJSONTo)
	sc.Step(`^the response status should be (\d+)$`, testCtx.theResponseStatusShouldBe)
	sc.Step(`^the response header "([^"]*)" should be "([^"]*)"$`, testCtx.theResponseHeaderShouldBe)
	sc.Step(`^the response should contain "([^"]*)"$`, testCtx.theResponseShouldContain)
	sc.Step(`^the response should be a (\d+)x(\d+) QR code for "([^"]*)"$`, testCtx.theResponseShouldBeAQRCodeFor)
}
