package core

import "errors"

var (
	// ErrEmptyPrompt rejects blank prompts and revision messages before any debit.
	ErrEmptyPrompt = errors.New("valid prompt is required")
	// ErrGenerationEmpty means the generator returned no usable text after sanitization.
	ErrGenerationEmpty = errors.New("generator returned no usable code")
	// ErrProjectNotFound covers absent projects and projects owned by another user.
	ErrProjectNotFound = errors.New("project not found")
	// ErrVersionNotFound covers version ids outside the target project's history.
	ErrVersionNotFound = errors.New("version not found")
)
