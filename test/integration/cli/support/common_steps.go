package support

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/cucumber/godog"
)

// iRunCommand executes a shell-free command line inside the scenario directory.
func (testCtx *TestContext) iRunCommand(command string) error {
	command = testCtx.substituteCommandVariables(command)

	testCtx.LastCommand = command
	testCtx.LastStartTime = time.Now()

	parts := strings.Fields(command)
	if len(parts) == 0 {
		return errors.New("empty command")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...) //nolint:gosec // G204: commands come from feature files
	cmd.Dir = testCtx.WorkingDir
	cmd.Env = append(os.Environ(), testCtx.EnvVars...)

	output, err := cmd.CombinedOutput()
	testCtx.LastOutput = string(output)
	testCtx.LastError = err
	testCtx.LastDuration = time.Since(testCtx.LastStartTime)

	if err != nil {
		exitError := &exec.ExitError{}
		if errors.As(err, &exitError) {
			testCtx.LastExitCode = exitError.ExitCode()
		} else {
			testCtx.LastExitCode = -1
		}
	} else {
		testCtx.LastExitCode = 0
	}

	return nil
}

// theCommandShouldSucceed verifies the command succeeded.
func (testCtx *TestContext) theCommandShouldSucceed() error {
	if testCtx.LastExitCode != 0 {
		return fmt.Errorf("command failed with exit code %d: %w\nOutput: %s",
			testCtx.LastExitCode, testCtx.LastError, testCtx.LastOutput)
	}
	return nil
}

// theCommandShouldFail verifies the command failed.
func (testCtx *TestContext) theCommandShouldFail() error {
	if testCtx.LastExitCode == 0 {
		return fmt.Errorf("command succeeded when it should have failed\nOutput: %s", testCtx.LastOutput)
	}
	return nil
}

// theOutputShouldContain verifies the output contains specific text.
func (testCtx *TestContext) theOutputShouldContain(expectedText string) error {
	if !strings.Contains(testCtx.LastOutput, expectedText) {
		return fmt.Errorf("output does not contain '%s'\nActual output: %s", expectedText, testCtx.LastOutput)
	}
	return nil
}

// theOutputShouldNotContain verifies the output does not contain specific text.
func (testCtx *TestContext) theOutputShouldNotContain(text string) error {
	if strings.Contains(testCtx.LastOutput, text) {
		return fmt.Errorf("output unexpectedly contains '%s'\nActual output: %s", text, testCtx.LastOutput)
	}
	return nil
}

// jsonDocument returns the first JSON object of the output. Log lines are
// JSON as well, so the search starts at the first line that opens an
// indented object.
func (testCtx *TestContext) jsonDocument() (map[string]any, error) {
	output := testCtx.LastOutput
	start := strings.Index(output, "{\n")
	if start == -1 {
		return nil, fmt.Errorf("no JSON found in output: %s", output)
	}

	var data map[string]any
	dec := json.NewDecoder(strings.NewReader(output[start:]))
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("output is not valid JSON: %w\nOutput: %s", err, output)
	}
	return data, nil
}

// theJSONFieldShouldBe verifies a top-level JSON number field.
func (testCtx *TestContext) theJSONFieldShouldBe(field string, want int) error {
	data, err := testCtx.jsonDocument()
	if err != nil {
		return err
	}
	val, ok := data[field]
	if !ok {
		return fmt.Errorf("field '%s' not found in JSON", field)
	}
	num, ok := val.(float64)
	if !ok || int(num) != want {
		return fmt.Errorf("field '%s' is %v, expected %d", field, val, want)
	}
	return nil
}

// theJSONFieldShouldHaveEntries verifies the length of a JSON array field.
func (testCtx *TestContext) theJSONFieldShouldHaveEntries(field string, want int) error {
	data, err := testCtx.jsonDocument()
	if err != nil {
		return err
	}
	arr, ok := data[field].([]any)
	if !ok {
		return fmt.Errorf("field '%s' is not an array", field)
	}
	if len(arr) != want {
		return fmt.Errorf("field '%s' has %d entries, expected %d", field, len(arr), want)
	}
	return nil
}

// theErrorShouldMention verifies the error message contains specific text.
func (testCtx *TestContext) theErrorShouldMention(errorText string) error {
	if testCtx.LastError == nil && testCtx.LastExitCode == 0 {
		return fmt.Errorf("no error occurred, but expected error containing '%s'", errorText)
	}

	fullErrorText := testCtx.LastOutput
	if testCtx.LastError != nil {
		fullErrorText += " " + testCtx.LastError.Error()
	}

	if !strings.Contains(strings.ToLower(fullErrorText), strings.ToLower(errorText)) {
		return fmt.Errorf("error does not contain '%s'\nActual error: %s", errorText, fullErrorText)
	}
	return nil
}

// theEnvironmentVariableIsSetTo sets an environment variable for later commands.
func (testCtx *TestContext) theEnvironmentVariableIsSetTo(name, value string) error {
	testCtx.AddEnvVar(name, testCtx.substituteCommandVariables(value))
	return nil
}

// theFileShouldExist verifies a file below the scenario directory exists.
func (testCtx *TestContext) theFileShouldExist(rel string) error {
	if _, err := os.Stat(testCtx.tempPath(rel)); err != nil {
		return fmt.Errorf("file %s does not exist: %w", rel, err)
	}
	return nil
}

// theFileShouldContain verifies a file below the scenario directory contains text.
func (testCtx *TestContext) theFileShouldContain(rel, expected string) error {
	data, err := os.ReadFile(testCtx.tempPath(rel))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", rel, err)
	}
	if !strings.Contains(string(data), expected) {
		return fmt.Errorf("file %s does not contain '%s'\nActual content: %s", rel, expected, string(data))
	}
	return nil
}

// aFileWithContent writes a file below the scenario directory.
func (testCtx *TestContext) aFileWithContent(rel string, content *godog.DocString) error {
	path := testCtx.tempPath(rel)
	return os.WriteFile(path, []byte(testCtx.substituteCommandVariables(content.Content)), 0o600)
}

// RegisterCommonSteps registers command, output and file steps.
func (testCtx *TestContext) RegisterCommonSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I run "([^"]*)"$`, testCtx.iRunCommand)
	sc.Step(`^the command should succeed$`, testCtx.theCommandShouldSucceed)
	sc.Step(`^the command should fail$`, testCtx.theCommandShouldFail)

	sc.Step(`^the output should contain "([^"]*)"$`, testCtx.theOutputShouldContain)
	sc.Step(`^the output should not contain "([^"]*)"$`, testCtx.theOutputShouldNotContain)
	sc.Step(`^the JSON field "([^"]*)" should be (\d+)$`, testCtx.theJSONFieldShouldBe)
	sc.Step(`^the JSON field "([^"]*)" should have (\d+) entries$`, testCtx.theJSONFieldShouldHaveEntries)
	sc.Step(`^the error should mention "([^"]*)"$`, testCtx.theErrorShouldMention)

	sc.Step(`^the environment variable "([^"]*)" is set to "([^"]*)"$`, testCtx.theEnvironmentVariableIsSetTo)
	sc.Step(`^the file "([^"]*)" should exist$`, testCtx.theFileShouldExist)
	sc.Step(`^the file "([^"]*)" should contain "([^"]*)"$`, testCtx.theFileShouldContain)
	sc.Step(`^a file "([^"]*)" with content:$`, testCtx.aFileWithContent)
}
