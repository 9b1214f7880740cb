package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	braintrust "github.com/makeXnow/BrainTrust-AI"
	"github.com/makeXnow/BrainTrust-AI/catalog"
	"github.com/makeXnow/BrainTrust-AI/core"
	"github.com/makeXnow/BrainTrust-AI/logging"
	"github.com/makeXnow/BrainTrust-AI/model"
	"github.com/makeXnow/BrainTrust-AI/model/anthropic"
	"github.com/makeXnow/BrainTrust-AI/model/openai"
	"github.com/makeXnow/BrainTrust-AI/settings"
)

// CommonOptions are shared by every command that runs a discussion.
type CommonOptions struct {
	Settings   string `short:"f" long:"settings"    description:"settings YAML path, reloaded on change"`
	Catalog    string `long:"catalog"               description:"style, palette and suggestion catalog YAML path"`
	Provider   string `short:"p" long:"provider"    description:"text model provider" choice:"openai" choice:"anthropic" default:"openai"`
	Model      string `long:"model"                 description:"text model id"`
	ImageModel string `long:"image-model"           description:"image model id used for avatars"`
	NoAvatars  bool   `long:"no-avatars"            description:"skip avatar generation"`
	Agents     int    `short:"n" long:"agents"      description:"number of panelists (2-8)"`
	Mode       string `short:"m" long:"mode"        description:"turn scheduling: random|mention|moderator"`
	User       string `short:"u" long:"user"        description:"your display name"`
	Safety     bool   `long:"safety"                description:"rewrite replies containing banned words"`
	LogLevel   string `long:"log-level"             description:"debug|info|warn|error" default:"warn"`
	Log        string `long:"log"                   description:"append logs to this file"`
}

// overrides returns the settings adjustments requested on the command line.
func (c *CommonOptions) overrides() (func(s *settings.Settings), error) {
	var mode core.Mode
	if c.Mode != "" {
		m, err := core.ParseMode(c.Mode)
		if err != nil {
			return nil, err
		}
		mode = m
	}
	if c.Agents != 0 && (c.Agents < settings.MinAgents || c.Agents > settings.MaxAgents) {
		return nil, fmt.Errorf("agents must be between %d and %d", settings.MinAgents, settings.MaxAgents)
	}

	return func(s *settings.Settings) {
		if mode != "" {
			s.Mode = mode
		}
		if c.Agents != 0 {
			s.AgentCount = c.Agents
		}
		if c.User != "" {
			s.UserName = c.User
		}
		if c.Safety {
			s.SafetyEnabled = true
		}
		if c.NoAvatars {
			s.AvatarEnabled = false
		}
		if c.ImageModel != "" {
			s.ImageModel = c.ImageModel
		}
		switch {
		case c.Model != "":
			s.TextModel = c.Model
		case c.Provider == "anthropic" && s.TextModel == settings.Defaults().TextModel:
			s.TextModel = string(anthropic.DefaultModel)
		}
	}, nil
}

func (c *CommonOptions) textModel() model.Model {
	if c.Provider == "anthropic" {
		return anthropic.NewModel()
	}
	return openai.NewModel()
}

// logger writes to the --log file when given and to fallback otherwise.
func (c *CommonOptions) logger(fallback io.Writer) (*logging.PanelLogger, io.Closer, error) {
	out, closer := fallback, io.Closer(nil)
	if c.Log != "" {
		f, err := os.OpenFile(c.Log, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log %s: %w", c.Log, err)
		}
		out, closer = f, f
	}
	cfg := logging.DefaultLoggerConfig()
	cfg.Level = logging.ParseLevel(c.LogLevel)
	cfg.Format = "text"
	cfg.Output = out
	cfg.Component = "cli"
	return logging.NewLogger(cfg), closer, nil
}

// open builds a BrainTrust from the flags. extra adjustments run after the
// command line overrides. The returned func releases everything.
func (c *CommonOptions) open(logOut io.Writer, extra ...func(s *settings.Settings)) (*braintrust.BrainTrust, func(), error) {
	apply, err := c.overrides()
	if err != nil {
		return nil, nil, err
	}
	logger, logCloser, err := c.logger(logOut)
	if err != nil {
		return nil, nil, err
	}

	var closers []func()
	if logCloser != nil {
		closers = append(closers, func() { _ = logCloser.Close() })
	}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var base settings.Provider = settings.NewStatic(settings.Defaults())
	if c.Settings != "" {
		fp, err := settings.NewFileProvider(c.Settings, func(o *settings.FileOptions) { o.Logger = logger })
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, func() { _ = fp.Close() })
		base = fp
	}
	sp := settings.NewOverlay(base, func(s *settings.Settings) {
		apply(s)
		for _, fn := range extra {
			fn(s)
		}
	})

	var cat *catalog.Catalog
	if c.Catalog != "" {
		if cat, err = catalog.Load(c.Catalog); err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	var img model.ImageModel
	if sp.Settings().AvatarEnabled {
		if strings.TrimSpace(os.Getenv("OPENAI_API_KEY")) == "" {
			logger.Warn("OPENAI_API_KEY not set, avatars disabled")
		} else {
			img = openai.NewImageModel()
		}
	}

	bt := braintrust.New(c.textModel(), func(o *braintrust.Options) {
		o.Settings = sp
		o.Catalog = cat
		o.ImageModel = img
		o.Logger = logger
	})
	closers = append(closers, bt.Close)
	return bt, cleanup, nil
}
