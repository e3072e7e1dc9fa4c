//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"video-translator/cmd"
	"video-translator/infrastructure/config"

	"github.com/cucumber/godog"
)

// configContext holds test state for config scenarios
type configContext struct {
	dir        string
	configPath string
	cfg        *config.Config
	output     *bytes.Buffer
	err        error
}

// SharedConfigContext is reset before each scenario
var SharedConfigContext *configContext

func getConfigContext() *configContext {
	return SharedConfigContext
}

// InitializeConfigScenario registers the config steps
func InitializeConfigScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		SharedConfigContext = &configContext{output: &bytes.Buffer{}}
		return ctx, nil
	})

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if cc := getConfigContext(); cc != nil && cc.dir != "" {
			os.RemoveAll(cc.dir)
		}
		return ctx, nil
	})

	ctx.Step(`^a default configuration file$`, aDefaultConfigurationFile)
	ctx.Step(`^I set "([^"]*)" to "([^"]*)"$`, iSetTo)
	ctx.Step(`^I try to set "([^"]*)" to "([^"]*)"$`, iTrySetTo)
	ctx.Step(`^the config value "([^"]*)" should be "([^"]*)"$`, theConfigValueShouldBe)
	ctx.Step(`^the saved file should contain "([^"]*)"$`, theSavedFileShouldContain)
	ctx.Step(`^I should receive an error mentioning "([^"]*)"$`, iShouldReceiveAnErrorMentioning)
}

func aDefaultConfigurationFile() error {
	cc := getConfigContext()
	dir, err := os.MkdirTemp("", "video-translator-config-*")
	if err != nil {
		return err
	}
	cc.dir = dir
	cc.configPath = filepath.Join(dir, "config.yaml")
	cc.cfg = config.Default()
	return config.Save(cc.cfg, cc.configPath)
}

func iSetTo(key, value string) error {
	cc := getConfigContext()
	if err := cmd.RunConfigSetWithDependencies(cc.cfg, cc.configPath, key, value, cc.output); err != nil {
		return fmt.Errorf("config set failed: %w", err)
	}
	return nil
}

func iTrySetTo(key, value string) error {
	cc := getConfigContext()
	cc.err = cmd.RunConfigSetWithDependencies(cc.cfg, cc.configPath, key, value, cc.output)
	return nil
}

func theConfigValueShouldBe(key, want string) error {
	cc := getConfigContext()
	cc.output.Reset()
	if err := cmd.RunConfigGetWithDependencies(cc.cfg, cc.configPath, key, cc.output); err != nil {
		return err
	}
	if got := strings.TrimSpace(cc.output.String()); got != want {
		return fmt.Errorf("expected %s = %q, got %q", key, want, got)
	}
	return nil
}

func theSavedFileShouldContain(s string) error {
	data, err := os.ReadFile(getConfigContext().configPath)
	if err != nil {
		return err
	}
	if !strings.Contains(string(data), s) {
		return fmt.Errorf("config file does not contain %q:\n%s", s, data)
	}
	return nil
}

func iShouldReceiveAnErrorMentioning(s string) error {
	cc := getConfigContext()
	if cc.err == nil {
		return fmt.Errorf("expected an error")
	}
	if !strings.Contains(cc.err.Error(), s) {
		return fmt.Errorf("expected error mentioning %q, got %v", s, cc.err)
	}
	return nil
}
