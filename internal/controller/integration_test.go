package controller

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/asimihsan/manup/internal/alert"
	"github.com/asimihsan/manup/internal/audit/stdout"
	"github.com/asimihsan/manup/internal/cache/memory"
	"github.com/asimihsan/manup/internal/cache/sqlite"
	"github.com/asimihsan/manup/internal/cache/tiered"
	"github.com/asimihsan/manup/internal/engine/opa"
	httpfetch "github.com/asimihsan/manup/internal/fetch/http"
	"github.com/asimihsan/manup/internal/fetch/servermock"
	"github.com/asimihsan/manup/internal/host/mock"
	"github.com/asimihsan/manup/internal/metadata"
	"github.com/asimihsan/manup/internal/text"
	"github.com/asimihsan/manup/pkg/gate"
)

// TestGateIntegration runs the gate end to end over HTTP with the Rego
// engine, then restarts against a dead server and recovers the policy from
// the SQLite cache.
func TestGateIntegration(t *testing.T) {
	ctx := context.Background()

	server := servermock.NewServer().SetDocument(`{
		"android": {
			"minimum": "3.0.0",
			"latest": "3.2.0",
			"enabled": true,
			"url": "https://play.example.com/app",
			"customAlerts": {"mandatory": {"title": "Please update {{app}}"}}
		}
	}`)
	defer server.Close()

	cachePath := filepath.Join(t.TempDir(), "manup.db")
	engine, err := opa.NewEngine(ctx)
	if err != nil {
		t.Fatalf("Failed to build engine: %v", err)
	}

	newService := func(presenter *mock.Presenter, version string, logs *bytes.Buffer) (*Service, func()) {
		store, err := sqlite.Open(ctx, cachePath)
		if err != nil {
			t.Fatalf("Failed to open sqlite cache: %v", err)
		}
		cache := tiered.New(
			tiered.Layer{Name: "memory", Store: memory.New()},
			tiered.Layer{Name: "sqlite", Store: store},
		)

		log := slog.New(slog.NewJSONHandler(logs, nil))
		app := mock.NewAppInfo(version, "Shop")
		translator := text.NewCatalogTranslator("es", "en")
		svc := New(Config{
			URL:      server.URL(),
			Metadata: metadata.New(httpfetch.New(2*time.Second), cache, log),
			Platform: mock.NewPlatform(gate.PlatformAndroid),
			AppInfo:  app,
			Engine:   engine,
			Alerts: alert.New(alert.Config{
				Alerts:     presenter,
				Opener:     &mock.Opener{},
				AppInfo:    app,
				Translator: translator,
				Logger:     log,
			}),
			Audit:    stdout.New(log),
			ConfigID: "integration",
			Logger:   log,
		})
		return svc, func() { _ = store.Close() }
	}

	// First launch: server up, app too old.
	presenter := mock.NewPresenter()
	var logs bytes.Buffer
	svc, closeStore := newService(presenter, "2.9.0", &logs)

	outcome := svc.Run(ctx)
	closeStore()
	if outcome.Decision != gate.DecisionMandatory || outcome.Status != gate.StatusBlocked {
		t.Fatalf("Expected mandatory/blocked, got %s/%s", outcome.Decision, outcome.Status)
	}

	a := <-presenter.Alerts
	if a.Spec.Header != "Please update {{app}}" {
		t.Errorf("Expected the custom title verbatim, got %q", a.Spec.Header)
	}
	if a.Spec.SubHeader != "Se requiere una actualización para continuar" {
		t.Errorf("Expected the Spanish body, got %q", a.Spec.SubHeader)
	}
	if !strings.Contains(logs.String(), `"policy_id"`) || !strings.Contains(logs.String(), `"config_id":"integration"`) {
		t.Errorf("Expected an audit decision record, got: %s", logs.String())
	}

	// Second launch: server down, cached policy still applies.
	server.SetStatus(http.StatusServiceUnavailable)
	presenter = mock.NewPresenter()
	logs.Reset()
	svc, closeStore = newService(presenter, "3.1.0", &logs)
	defer closeStore()

	done := make(chan gate.Outcome, 1)
	go func() { done <- svc.Run(ctx) }()

	a = <-presenter.Alerts
	if err := a.Tap(a.Spec.Buttons[0].Text); err != nil {
		t.Fatalf("Failed to tap the first button: %v", err)
	}

	outcome = <-done
	if outcome.Decision != gate.DecisionOptional || outcome.Status != gate.StatusContinue {
		t.Fatalf("Expected optional/continue from cached policy, got %s/%s", outcome.Decision, outcome.Status)
	}
	if !strings.Contains(logs.String(), "using cache") {
		t.Errorf("Expected a cache fallback log line, got: %s", logs.String())
	}
}
