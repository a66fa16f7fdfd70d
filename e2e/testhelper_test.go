package e2e

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/summarizer/api/internal/auth"
	"github.com/summarizer/api/internal/client"
	"github.com/summarizer/api/internal/config"
	"github.com/summarizer/api/internal/handler"
	"github.com/summarizer/api/internal/middleware"
	"github.com/summarizer/api/internal/notify"
	"github.com/summarizer/api/internal/service"
	"github.com/summarizer/api/internal/storage"
	"github.com/summarizer/api/internal/task"
)

const (
	testJWTSecret = "test-secret-for-e2e"
	testUser      = "test-user"
)

// testApp holds all components needed for testing
type testApp struct {
	app   *fiber.App
	store *storage.Store
	root  string
}

// setupApp creates a Fiber app wired like main.go but with unconfigured
// external clients, so all AI services answer with mock fallbacks. Storage
// lives in a per-test temp dir. Redis on localhost is used where available;
// the rate limiter allows everything when it is not.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	redisClient := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // use DB 15 for tests to avoid collision
	})

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr: "localhost:6379",
		DB:   15,
	})
	t.Cleanup(func() { asynqClient.Close() })

	validate := validator.New()

	// No base URLs or API keys: every service falls back to its mock path
	llmClient := client.NewLLMClient(config.LLMConfig{})
	qaClient := client.NewLLMClient(config.LLMConfig{})

	root := t.TempDir()
	store := storage.NewStore(config.StorageConfig{
		Root:          root,
		MaxUploadSize: 10 * 1024 * 1024,
	})

	registry := task.NewRegistry()
	notifier := notify.NewEmailNotifier(config.SMTPConfig{}) // no host, log-only

	convertService := service.NewConvertService(registry, store, asynqClient)
	analyzeService := service.NewAnalyzeService(llmClient, store)
	summarizeService := service.NewSummarizeService(llmClient)
	qaService := service.NewQAService(qaClient, nil, nil)

	convertHandler := handler.NewConvertHandler(convertService, store, notifier, validate, 10*1024*1024)
	analyzeHandler := handler.NewAnalyzeHandler(analyzeService, validate)
	summarizeHandler := handler.NewSummarizeHandler(summarizeService, validate)
	qaHandler := handler.NewQAHandler(qaService, validate)

	authMiddleware := middleware.NewAuthMiddleware(testJWTSecret)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024,
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Very high rate limits so tests are never blocked
	api := app.Group("/api/v1", authMiddleware.Authenticate())
	api.Post("/audio-to-vtt", rateLimiter.ConvertLimit(10000), convertHandler.AudioToVtt)
	api.Post("/audio-to-vtt/complete", convertHandler.Complete)
	api.Get("/convert-process", convertHandler.Process)
	api.Get("/task-status", convertHandler.TaskStatus)
	api.Get("/vtt", convertHandler.ListVtts)
	api.Post("/analyze", rateLimiter.AnalyzeLimit(10000), analyzeHandler.Analyze)
	api.Post("/summarize", rateLimiter.SummarizeLimit(10000), summarizeHandler.Summarize)
	api.Post("/ask", rateLimiter.SummarizeLimit(10000), qaHandler.Ask)

	return &testApp{app: app, store: store, root: root}
}

// generateToken creates an HMAC JWT token for test requests.
func generateToken(t *testing.T) string {
	t.Helper()
	token, err := auth.GenerateToken(testUser, "test@example.com", testJWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	return token
}

// doRequest is a helper to perform HTTP requests against the test app.
func doRequest(app *fiber.App, method, path string, body string, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return app.Test(req, -1)
}

// doAuthRequest performs an authenticated request.
func doAuthRequest(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, error) {
	t.Helper()
	token := generateToken(t)
	return doRequest(app, method, path, body, map[string]string{
		"Authorization": "Bearer " + token,
	})
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// assertStatus checks the HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}
