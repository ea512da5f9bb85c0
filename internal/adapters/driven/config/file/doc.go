// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem under ~/.lexbrief.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable answer prompts with embedded defaults
package file
