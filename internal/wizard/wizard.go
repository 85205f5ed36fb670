// Package wizard implements the multi-step signup flow: account, profile,
// service interest, confirm. Each step validates its own fields before the
// wizard moves on, mirroring the site's signup form.
package wizard

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/manifoldco/promptui"

	"github.com/bookline-dev/bookline/internal/models"
)

// ErrCancelled is returned when the user abandons the wizard at the
// confirmation step.
var ErrCancelled = errors.New("signup cancelled")

const skipChoice = "Skip for now"

// Prompter abstracts the interactive prompts so the wizard is testable
// without a terminal.
type Prompter interface {
	Input(label string, validate func(string) error) (string, error)
	Password(label string, validate func(string) error) (string, error)
	Select(label string, items []string) (string, error)
}

// PromptUI is the production Prompter backed by promptui.
type PromptUI struct{}

func (PromptUI) Input(label string, validate func(string) error) (string, error) {
	prompt := promptui.Prompt{
		Label:    label,
		Validate: validate,
	}
	return prompt.Run()
}

func (PromptUI) Password(label string, validate func(string) error) (string, error) {
	prompt := promptui.Prompt{
		Label:    label,
		Mask:     '*',
		Validate: validate,
	}
	return prompt.Run()
}

func (PromptUI) Select(label string, items []string) (string, error) {
	prompt := promptui.Select{
		Label: label,
		Items: items,
	}
	_, choice, err := prompt.Run()
	return choice, err
}

// Wizard drives the signup steps.
type Wizard struct {
	prompter Prompter
	validate *validator.Validate
}

// New creates a wizard using the given prompter.
func New(prompter Prompter) *Wizard {
	return &Wizard{
		prompter: prompter,
		validate: validator.New(),
	}
}

// fieldValidator adapts a validator tag into a prompt validation callback.
func (w *Wizard) fieldValidator(name, tag string) func(string) error {
	return func(value string) error {
		if err := w.validate.Var(value, tag); err != nil {
			return fmt.Errorf("invalid %s", name)
		}
		return nil
	}
}

// Run walks the user through every step and returns the assembled, fully
// validated signup request. services lists the bookable services offered
// for the interest step; it may be empty.
func (w *Wizard) Run(services []string) (*models.SignupRequest, error) {
	// Step 1: account.
	email, err := w.prompter.Input("Email", w.fieldValidator("email", "required,email"))
	if err != nil {
		return nil, err
	}
	password, err := w.prompter.Password("Password (min 8 characters)", w.fieldValidator("password", "required,min=8"))
	if err != nil {
		return nil, err
	}

	// Step 2: profile.
	firstName, err := w.prompter.Input("First name", w.fieldValidator("first name", "required,min=2"))
	if err != nil {
		return nil, err
	}
	lastName, err := w.prompter.Input("Last name", w.fieldValidator("last name", "required,min=2"))
	if err != nil {
		return nil, err
	}
	phone, err := w.prompter.Input("Phone (optional, +15551234567)", w.fieldValidator("phone", "omitempty,e164"))
	if err != nil {
		return nil, err
	}

	// Step 3: service interest.
	service := ""
	if len(services) > 0 {
		choice, err := w.prompter.Select("Which service are you interested in?", append(services, skipChoice))
		if err != nil {
			return nil, err
		}
		if choice != skipChoice {
			service = choice
		}
	}

	// Step 4: confirm.
	confirm, err := w.prompter.Select(fmt.Sprintf("Create account for %s?", email), []string{"Create account", "Cancel"})
	if err != nil {
		return nil, err
	}
	if confirm != "Create account" {
		return nil, ErrCancelled
	}

	req := &models.SignupRequest{
		Submission: models.NewSubmission(),
		Email:      email,
		Password:   password,
		FirstName:  firstName,
		LastName:   lastName,
		Phone:      phone,
		Service:    service,
	}

	// Final gate: the whole request must validate even though every step
	// validated its own fields.
	if err := w.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("signup request invalid: %w", err)
	}
	return req, nil
}
