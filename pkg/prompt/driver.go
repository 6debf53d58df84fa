package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted is returned when the user interrupts a prompt.
var ErrAborted = errors.New("prompt: aborted")

// InputConfig configures a basic text input prompt.
type InputConfig struct {
	Message   string
	Default   string
	Help      string
	Validator func(string) error
}

// SelectConfig configures a multi-select prompt.
type SelectConfig struct {
	Message  string
	Options  []string
	Defaults []int // indices into Options
	Help     string
	PageSize int
}

// Driver abstracts the terminal so interactive sessions can be tested
// without a real TTY.
type Driver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error)
	Info(ctx context.Context, msg string) error
}

// askFunc matches survey.AskOne.
type askFunc func(p survey.Prompt, response interface{}, opts ...survey.AskOpt) error

type surveyDriver struct {
	out io.Writer
	ask askFunc
}

// NewSurveyDriver returns a Driver backed by survey/v2 prompts. Info messages
// go to out, or stdout when out is nil.
func NewSurveyDriver(out io.Writer) Driver {
	if out == nil {
		out = os.Stdout
	}
	return &surveyDriver{out: out, ask: survey.AskOne}
}

// prompt runs p and reports a Ctrl-C as ErrAborted.
func (d *surveyDriver) prompt(ctx context.Context, p survey.Prompt, response interface{}, opts ...survey.AskOpt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := d.ask(p, response, opts...)
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

func (d *surveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	var opts []survey.AskOpt
	if cfg.Validator != nil {
		opts = append(opts, survey.WithValidator(func(ans interface{}) error {
			s, _ := ans.(string)
			return cfg.Validator(s)
		}))
	}
	var answer string
	err := d.prompt(ctx, &survey.Input{
		Message: cfg.Message,
		Default: cfg.Default,
		Help:    cfg.Help,
	}, &answer, opts...)
	if err != nil {
		return "", err
	}
	return answer, nil
}

// MultiSelect asks by option label and answers with option indices, in
// option order. Out of range defaults are ignored.
func (d *surveyDriver) MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error) {
	q := &survey.MultiSelect{
		Message:  cfg.Message,
		Options:  cfg.Options,
		Help:     cfg.Help,
		PageSize: cfg.PageSize,
	}
	var preset []string
	for _, idx := range cfg.Defaults {
		if idx >= 0 && idx < len(cfg.Options) {
			preset = append(preset, cfg.Options[idx])
		}
	}
	if preset != nil {
		q.Default = preset
	}

	var picked []string
	if err := d.prompt(ctx, q, &picked); err != nil {
		return nil, err
	}

	chosen := make(map[string]bool, len(picked))
	for _, label := range picked {
		chosen[label] = true
	}
	var selected []int
	for i, label := range cfg.Options {
		if chosen[label] {
			selected = append(selected, i)
		}
	}
	return selected, nil
}

func (d *surveyDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, msg)
	return err
}
