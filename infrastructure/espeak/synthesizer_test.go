package espeak

import (
	"context"
	"errors"
	"slices"
	"testing"

	"video-translator/domain/speech"
)

type mockRunner struct {
	name string
	args []string
	err  error
}

func (m *mockRunner) Run(ctx context.Context, name string, args ...string) error {
	m.name = name
	m.args = args
	return m.err
}

func TestArgs(t *testing.T) {
	tests := []struct {
		name string
		u    speech.Utterance
		want []string
	}{
		{
			name: "default voice",
			u:    speech.Utterance{Text: "Hola", Language: "es-ES", Volume: 0.8, Rate: 1},
			want: []string{"-v", "es", "-a", "160", "-s", "175", "--", "Hola"},
		},
		{
			name: "zero volume is forwarded",
			u:    speech.Utterance{Text: "Hola", Language: "es-ES", Volume: 0, Rate: 1},
			want: []string{"-v", "es", "-a", "0", "-s", "175", "--", "Hola"},
		},
		{
			name: "missing rate and language use defaults",
			u:    speech.Utterance{Text: "-dash", Volume: 2},
			want: []string{"-v", "es", "-a", "200", "-s", "175", "--", "-dash"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Args(tt.u); !slices.Equal(got, tt.want) {
				t.Errorf("Args() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSynthesizer_Speak(t *testing.T) {
	runner := &mockRunner{}
	s := NewSynthesizer(runner, WithEspeakPath("/usr/bin/espeak"))

	if err := s.Speak(context.Background(), speech.Utterance{Text: "Hola", Language: "es-ES", Volume: 1, Rate: 1}); err != nil {
		t.Fatalf("Speak() error: %v", err)
	}
	if runner.name != "/usr/bin/espeak" || runner.args[len(runner.args)-1] != "Hola" {
		t.Errorf("ran %s %v", runner.name, runner.args)
	}

	runner.err = errors.New("exit status 1")
	if err := s.Speak(context.Background(), speech.Utterance{Text: "Hola"}); err == nil {
		t.Error("Speak() should report espeak failure")
	}
}
