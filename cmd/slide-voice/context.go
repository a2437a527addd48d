package main

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/book-expert/logger"
	"github.com/book-expert/slide-voice/internal/config"
	"github.com/book-expert/slide-voice/internal/fileutil"
	"github.com/book-expert/slide-voice/internal/pptx"
)

const logFileName = "slide-voice.log"

type commandContext struct {
	configFlag string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	logOnce sync.Once
	log     *logger.Logger
	logErr  error
}

func newCommandContext() *commandContext {
	return &commandContext{}
}

// ensureConfig loads --config when given, otherwise the built-in defaults
// with environment overrides.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		path := strings.TrimSpace(c.configFlag)
		if path == "" {
			c.config, c.configErr = config.Parse(nil)

			return
		}

		c.config, c.configErr = config.LoadFile(path)
	})

	return c.config, c.configErr
}

func (c *commandContext) logger() (*logger.Logger, error) {
	c.logOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logErr = err

			return
		}

		err = fileutil.EnsureDir(cfg.Paths.BaseLogsDir)
		if err != nil {
			c.logErr = err

			return
		}

		c.log, c.logErr = logger.New(cfg.Paths.BaseLogsDir, logFileName)
		if c.logErr != nil {
			c.logErr = fmt.Errorf("failed to create logger: %w", c.logErr)
		}
	})

	return c.log, c.logErr
}

func (c *commandContext) openDeck(path string) (*pptx.File, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	return pptx.Open(path, cfg.DeckOptions())
}

func (c *commandContext) close() {
	if c.log == nil {
		return
	}

	err := c.log.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error closing logger: %v\n", err)
	}
}
