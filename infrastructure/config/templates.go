package config

import (
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"netgraph-backend/application/ports"
	"netgraph-backend/domain/insights"
	pkgerrors "netgraph-backend/pkg/errors"
)

// templateFile is the on-disk YAML shape of the template library.
type templateFile struct {
	Templates []insights.InsightTemplate `yaml:"templates"`
}

// LoadTemplates parses and validates a YAML template library.
func LoadTemplates(path string) ([]insights.InsightTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.NewNotFoundError("template library").WithCause(err)
	}
	var file templateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, pkgerrors.NewValidationError("template library malformed").WithCause(err)
	}
	if err := validateTemplates(file.Templates); err != nil {
		return nil, err
	}
	return file.Templates, nil
}

func validateTemplates(templates []insights.InsightTemplate) error {
	if len(templates) == 0 {
		return pkgerrors.NewValidationError("template library is empty")
	}
	seen := make(map[string]struct{}, len(templates))
	for _, t := range templates {
		if t.ID == "" {
			return pkgerrors.NewValidationError("template is missing an id")
		}
		if _, dup := seen[t.ID]; dup {
			return pkgerrors.NewValidationError("duplicate template id: " + t.ID)
		}
		seen[t.ID] = struct{}{}
		switch t.Category {
		case insights.CategoryNetwork, insights.CategoryCommunity,
			insights.CategoryEngagement, insights.CategoryGrowth:
		default:
			return pkgerrors.NewValidationError("template " + t.ID + " has unknown category")
		}
		if len(t.Conditions) == 0 {
			return pkgerrors.NewValidationError("template " + t.ID + " has no conditions")
		}
		for _, c := range t.Conditions {
			switch c.Operator {
			case insights.OpEq, insights.OpGte, insights.OpLte,
				insights.OpGt, insights.OpLt, insights.OpBetween, insights.OpIn:
			default:
				return pkgerrors.NewValidationError("template " + t.ID + " has unknown operator")
			}
			if c.Operator == insights.OpBetween && len(c.Values) != 2 {
				return pkgerrors.NewValidationError("template " + t.ID + " between needs two values")
			}
			if c.Operator == insights.OpIn && len(c.Values) == 0 {
				return pkgerrors.NewValidationError("template " + t.ID + " in needs values")
			}
		}
	}
	return nil
}

// StaticTemplateProvider serves a fixed library.
type StaticTemplateProvider struct {
	templates []insights.InsightTemplate
}

var _ ports.TemplateProvider = (*StaticTemplateProvider)(nil)

// NewStaticTemplateProvider wraps a fixed slice; the built-in library is
// used when the slice is empty.
func NewStaticTemplateProvider(templates []insights.InsightTemplate) *StaticTemplateProvider {
	if len(templates) == 0 {
		templates = insights.DefaultLibrary()
	}
	return &StaticTemplateProvider{templates: templates}
}

func (p *StaticTemplateProvider) Templates() []insights.InsightTemplate {
	out := make([]insights.InsightTemplate, len(p.templates))
	copy(out, p.templates)
	return out
}

// WatchingTemplateProvider serves a YAML library and hot-reloads it on
// file change. A failed reload keeps the previous library.
type WatchingTemplateProvider struct {
	path    string
	logger  *zap.Logger
	watcher *fsnotify.Watcher

	mu        sync.RWMutex
	templates []insights.InsightTemplate
}

var _ ports.TemplateProvider = (*WatchingTemplateProvider)(nil)

// NewWatchingTemplateProvider loads the library and starts watching the
// file. Close must be called to release the watcher.
func NewWatchingTemplateProvider(path string, logger *zap.Logger) (*WatchingTemplateProvider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	templates, err := LoadTemplates(path)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to create template watcher").WithCause(err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, pkgerrors.NewInternalError("failed to watch template library").WithCause(err)
	}

	p := &WatchingTemplateProvider{
		path:      path,
		logger:    logger,
		watcher:   watcher,
		templates: templates,
	}
	go p.watch()
	return p, nil
}

func (p *WatchingTemplateProvider) Templates() []insights.InsightTemplate {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]insights.InsightTemplate, len(p.templates))
	copy(out, p.templates)
	return out
}

// Close stops the watcher.
func (p *WatchingTemplateProvider) Close() error {
	return p.watcher.Close()
}

func (p *WatchingTemplateProvider) watch() {
	for {
		select {
		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p.reload()
			// Editors replace the file on save; re-arm the watch so
			// subsequent writes are still seen.
			if event.Op&fsnotify.Create != 0 {
				_ = p.watcher.Add(p.path)
			}
		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			p.logger.Warn("template watcher error", zap.Error(err))
		}
	}
}

func (p *WatchingTemplateProvider) reload() {
	templates, err := LoadTemplates(p.path)
	if err != nil {
		p.logger.Warn("template reload failed, keeping previous library",
			zap.String("path", p.path),
			zap.Error(err),
		)
		return
	}
	p.mu.Lock()
	p.templates = templates
	p.mu.Unlock()
	p.logger.Info("template library reloaded",
		zap.String("path", p.path),
		zap.Int("templates", len(templates)),
	)
}
