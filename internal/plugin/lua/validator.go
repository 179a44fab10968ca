package lua

import (
	"context"
	"errors"
	"fmt"
	"os"

	lua "github.com/yuin/gopher-lua"
)

// Validator accepts or rejects document content using a Lua script.
type Validator struct {
	state *State
	name  string
}

// NewValidator compiles script and checks that it defines validate.
func NewValidator(name, script string, opts ...StateOption) (*Validator, error) {
	state := NewState(opts...)
	if err := state.DoString(context.Background(), script); err != nil {
		state.Close()
		return nil, fmt.Errorf("loading validator %s: %w", name, err)
	}
	if !state.HasFunction("validate") {
		state.Close()
		return nil, fmt.Errorf("loading validator %s: %w", name, ErrNoValidateFunc)
	}
	return &Validator{state: state, name: name}, nil
}

// NewValidatorFromFile loads a validator script from disk.
func NewValidatorFromFile(path string, opts ...StateOption) (*Validator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading validator %s: %w", path, err)
	}
	return NewValidator(path, string(data), opts...)
}

// Name returns the script name.
func (v *Validator) Name() string {
	return v.name
}

// Validate runs validate(content). A false result becomes an error
// carrying the script's message.
func (v *Validator) Validate(ctx context.Context, content string) error {
	results, err := v.state.Call(ctx, "validate", lua.LString(content))
	if err != nil {
		return fmt.Errorf("validator %s: %w", v.name, err)
	}
	if len(results) == 0 {
		return fmt.Errorf("validator %s: validate returned no value", v.name)
	}
	if lua.LVAsBool(results[0]) {
		return nil
	}

	msg := "content rejected"
	if len(results) > 1 {
		if s, ok := results[1].(lua.LString); ok && s != "" {
			msg = string(s)
		}
	}
	return errors.New(msg)
}

// Close releases the Lua state.
func (v *Validator) Close() error {
	return v.state.Close()
}
