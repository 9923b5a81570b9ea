// Package alert turns a gate decision into an on-screen alert and waits for
// the user where the decision allows the app to continue.
package alert

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/asimihsan/manup/internal/logger"
	"github.com/asimihsan/manup/internal/text"
	"github.com/asimihsan/manup/pkg/gate"
)

// LinkTarget asks the opener to leave the app for the system browser or store.
const LinkTarget = "_system"

// Config holds the collaborators a Presenter needs. Translator is optional.
type Config struct {
	Alerts     gate.AlertPresenter
	Opener     gate.LinkOpener
	AppInfo    gate.AppInfo
	Translator gate.Translator

	// ExternalTranslations stops the bundled catalogs being loaded into
	// Translator; the host supplies its own.
	ExternalTranslations bool

	Logger *slog.Logger
}

// Presenter shows update and maintenance alerts.
type Presenter struct {
	cfg   Config
	texts *text.Resolver
	log   *slog.Logger

	loadOnce sync.Once
}

// New creates a Presenter.
func New(cfg Config) *Presenter {
	return &Presenter{
		cfg:   cfg,
		texts: text.NewResolver(cfg.Translator),
		log:   logger.WithComponent(cfg.Logger, "alert"),
	}
}

// Present shows the alert for d and reports where that leaves the app.
// Blocking decisions return StatusBlocked once the alert is on screen;
// an optional update returns StatusContinue after the user picks "Not Now".
func (p *Presenter) Present(ctx context.Context, d gate.Decision, branch gate.PolicyBranch) (gate.Status, error) {
	p.loadTranslations()

	switch d {
	case gate.DecisionNOP:
		return gate.StatusContinue, nil
	case gate.DecisionMaintenance:
		return p.PresentMaintenanceMode(ctx, branch)
	case gate.DecisionMandatory:
		return p.PresentMandatoryUpdate(ctx, branch)
	case gate.DecisionOptional:
		return p.PresentOptionalUpdate(ctx, branch)
	default:
		return gate.StatusContinue, fmt.Errorf("no alert for decision %s", d)
	}
}

func (p *Presenter) loadTranslations() {
	if p.cfg.ExternalTranslations {
		return
	}
	loader, ok := p.cfg.Translator.(gate.TranslationLoader)
	if !ok {
		return
	}
	p.loadOnce.Do(func() { text.LoadTranslations(loader) })
}

// PresentMaintenanceMode shows a notice with no way out.
func (p *Presenter) PresentMaintenanceMode(ctx context.Context, branch gate.PolicyBranch) (gate.Status, error) {
	name, err := p.appName(ctx)
	if err != nil {
		return gate.StatusContinue, err
	}

	spec := gate.AlertSpec{
		BackdropDismiss: false,
		Header:          p.texts.Resolve(text.KeyMaintenanceTitle, branch, name),
		SubHeader:       p.texts.Resolve(text.KeyMaintenanceText, branch, name),
	}
	if err := p.show(ctx, spec); err != nil {
		return gate.StatusContinue, err
	}
	return gate.StatusBlocked, nil
}

// PresentMandatoryUpdate shows a notice whose only action opens the update
// link and leaves the notice up.
func (p *Presenter) PresentMandatoryUpdate(ctx context.Context, branch gate.PolicyBranch) (gate.Status, error) {
	name, err := p.appName(ctx)
	if err != nil {
		return gate.StatusContinue, err
	}

	spec := gate.AlertSpec{
		BackdropDismiss: false,
		Header:          p.texts.Resolve(text.KeyMandatoryTitle, branch, name),
		SubHeader:       p.texts.Resolve(text.KeyMandatoryText, branch, name),
		Buttons: []gate.Button{
			{Text: p.texts.Resolve(text.KeyButtonUpdate, branch, name), Handler: p.openUpdate(ctx, branch)},
		},
	}
	if err := p.show(ctx, spec); err != nil {
		return gate.StatusContinue, err
	}
	return gate.StatusBlocked, nil
}

// PresentOptionalUpdate offers the update and waits until the user declines.
// Choosing "Update" opens the link and keeps the alert up.
func (p *Presenter) PresentOptionalUpdate(ctx context.Context, branch gate.PolicyBranch) (gate.Status, error) {
	name, err := p.appName(ctx)
	if err != nil {
		return gate.StatusContinue, err
	}

	later := make(chan struct{})
	var laterOnce sync.Once

	spec := gate.AlertSpec{
		BackdropDismiss: false,
		Header:          p.texts.Resolve(text.KeyOptionalTitle, branch, name),
		SubHeader:       p.texts.Resolve(text.KeyOptionalText, branch, name),
		Buttons: []gate.Button{
			{
				Text: p.texts.Resolve(text.KeyButtonLater, branch, name),
				Handler: func() bool {
					laterOnce.Do(func() { close(later) })
					return true
				},
			},
			{Text: p.texts.Resolve(text.KeyButtonUpdate, branch, name), Handler: p.openUpdate(ctx, branch)},
		},
	}
	if err := p.show(ctx, spec); err != nil {
		return gate.StatusContinue, err
	}

	select {
	case <-later:
		return gate.StatusContinue, nil
	case <-ctx.Done():
		return gate.StatusPending, ctx.Err()
	}
}

func (p *Presenter) appName(ctx context.Context) (string, error) {
	name, err := p.cfg.AppInfo.AppName(ctx)
	if err != nil {
		return "", fmt.Errorf("reading app name: %w", err)
	}
	return name, nil
}

func (p *Presenter) show(ctx context.Context, spec gate.AlertSpec) error {
	dialog, err := p.cfg.Alerts.Create(ctx, spec)
	if err != nil {
		return fmt.Errorf("creating alert: %w", err)
	}
	if err := dialog.Present(ctx); err != nil {
		return fmt.Errorf("presenting alert: %w", err)
	}
	return nil
}

// openUpdate returns a handler that opens the branch's update link and keeps
// the alert open.
func (p *Presenter) openUpdate(ctx context.Context, branch gate.PolicyBranch) func() bool {
	openCtx := context.WithoutCancel(ctx)
	return func() bool {
		if err := p.cfg.Opener.Open(openCtx, branch.URL, LinkTarget); err != nil {
			p.log.Warn("opening update link failed", "url", branch.URL, "error", err)
		}
		return false
	}
}
