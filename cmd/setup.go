package cmd

import (
	"fmt"
	"os"

	"video-translator/infrastructure/config"
	"video-translator/infrastructure/google"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
	Select(message string, options []string, defaultValue string) (string, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

func (p *SurveyPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Select{
		Message: message,
		Options: options,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command guides you through choosing the directories and the speech
recognition, translation and speech synthesis engines. Every other key keeps
its default and can be changed later with 'video-translator config set'.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath
	}
	return RunSetupWithPrompter(DefaultPrompter, path, os.Stdout)
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string, out OutputWriter) error {
	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm("config.yaml already exists. Overwrite?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Fprintln(out, "Setup cancelled.")
			return nil
		}
	}

	fmt.Fprintln(out, "Welcome to video-translator setup!")
	fmt.Fprintln(out)

	cfg := config.Default()

	if err := promptPaths(prompter, cfg); err != nil {
		return err
	}
	if err := promptRecognizer(prompter, cfg); err != nil {
		return err
	}
	if err := promptTranslator(prompter, cfg); err != nil {
		return err
	}
	if err := promptSynthesizer(prompter, cfg); err != nil {
		return err
	}
	if usesGoogle(cfg) {
		if err := promptGoogle(prompter, cfg); err != nil {
			return err
		}
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Configuration saved to %s\n", configPath)
	return nil
}

func promptPaths(prompter Prompter, cfg *config.Config) error {
	source, err := prompter.Input("Where are the videos to translate?", cfg.Paths.SourceDirectory)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if source == "" {
		return fmt.Errorf("source directory is required")
	}
	cfg.Paths.SourceDirectory = source

	audio, err := prompter.Input("Where should extracted audio files go?", cfg.Paths.AudioDirectory)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if audio == "" {
		return fmt.Errorf("audio directory is required")
	}
	cfg.Paths.AudioDirectory = audio

	return nil
}

func promptRecognizer(prompter Prompter, cfg *config.Config) error {
	engine, err := prompter.Select("Speech recognition engine?",
		[]string{config.RecognizerVosk, config.RecognizerGoogle}, cfg.Engines.Recognizer)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Engines.Recognizer = engine

	if engine == config.RecognizerVosk {
		model, err := prompter.Input("Path to the Vosk model directory?", cfg.Vosk.ModelPath)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if model == "" {
			return fmt.Errorf("vosk model path is required")
		}
		cfg.Vosk.ModelPath = model
	}
	return nil
}

func promptTranslator(prompter Prompter, cfg *config.Config) error {
	engine, err := prompter.Select("Translation engine?",
		[]string{config.TranslatorStub, config.TranslatorGoogle, config.TranslatorOllama}, cfg.Engines.Translator)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Engines.Translator = engine

	if engine == config.TranslatorOllama {
		url, err := prompter.Input("Ollama server URL?", cfg.Ollama.BaseURL)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if url != "" {
			cfg.Ollama.BaseURL = url
		}

		model, err := prompter.Input("Ollama model?", cfg.Ollama.Model)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if model != "" {
			cfg.Ollama.Model = model
		}
	}
	return nil
}

func promptSynthesizer(prompter Prompter, cfg *config.Config) error {
	engine, err := prompter.Select("Speech synthesis engine?",
		[]string{config.SynthesizerEspeak, config.SynthesizerGoogle, config.SynthesizerNone}, cfg.Engines.Synthesizer)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Engines.Synthesizer = engine
	return nil
}

func promptGoogle(prompter Prompter, cfg *config.Config) error {
	credentials, err := prompter.Input("Path to Google credentials file?", cfg.Google.CredentialsFile)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if credentials == "" {
		credentials = "credentials.json"
	}
	cfg.Google.CredentialsFile = credentials

	serviceAccount, err := prompter.Confirm("Is it a service account key?", true)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if serviceAccount {
		cfg.Google.Auth = google.AuthServiceAccount
	} else {
		cfg.Google.Auth = google.AuthOAuth
	}

	return nil
}

func usesGoogle(cfg *config.Config) bool {
	return cfg.Engines.Recognizer == config.RecognizerGoogle ||
		cfg.Engines.Translator == config.TranslatorGoogle ||
		cfg.Engines.Synthesizer == config.SynthesizerGoogle
}
