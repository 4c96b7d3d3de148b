package core

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/InNoobWeTrust/web-automator/pkg/types"
	"gopkg.in/yaml.v3"
)

// VarContext holds resolved variables from vars.yml.
type VarContext map[string]string

// varRegex is a package-level compiled regular expression for matching {{ varName }} placeholders.
var varRegex = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9\._-]+)\s*\}\}`)

var envRe = regexp.MustCompile(`^\s*\{\{\s*env\.([A-Za-z0-9_]+)\s*}}\s*$`)

const envPrefix = "env."

// ResolveVarfile loads a YAML varfile (e.g. vars.yml), parses it, and resolves
// `{{ env.NAME }}` values from the environment. Unset variables resolve to
// the empty string with a warning.
func ResolveVarfile(path string, logger types.Logger) (VarContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading varfile %q: %w", path, err)
	}

	var rawVars map[string]string
	if err := yaml.Unmarshal(data, &rawVars); err != nil {
		return nil, fmt.Errorf("parsing varfile YAML from %q: %w", path, err)
	}

	resolvedCtx := make(VarContext, len(rawVars))
	for key, val := range rawVars {
		match := envRe.FindStringSubmatch(val)
		if match == nil {
			resolvedCtx[key] = val
			continue
		}
		envVal, exists := os.LookupEnv(match[1])
		if !exists {
			logger.Warn().Str("env", match[1]).Str("var", key).Msg("Environment variable not found for varfile key")
		}
		resolvedCtx[key] = envVal
	}
	return resolvedCtx, nil
}

// secretHints mark variable names whose values are masked in logs.
var secretHints = []string{"password", "passwd", "secret", "token", "cookie", "session", "apikey", "api_key"}

// Secrets returns the values of variables whose names look sensitive.
func (v VarContext) Secrets() []string {
	var out []string
	for k, val := range v {
		name := strings.ToLower(k)
		for _, hint := range secretHints {
			if strings.Contains(name, hint) {
				out = append(out, val)
				break
			}
		}
	}
	return out
}

// ResolveStringWithContext replaces every {{ name }} with its value from vars
// and every {{ env.NAME }} with the environment variable. An unknown name is
// an error.
func ResolveStringWithContext(input string, vars VarContext) (string, error) {
	var firstErr error
	output := varRegex.ReplaceAllStringFunc(input, func(match string) string {
		if firstErr != nil {
			return match
		}

		key := varRegex.FindStringSubmatch(match)[1]
		if name, ok := strings.CutPrefix(key, envPrefix); ok {
			val, found := os.LookupEnv(name)
			if !found {
				firstErr = fmt.Errorf("undefined environment variable: %s", name)
				return match
			}
			return val
		}

		val, found := vars[key]
		if !found {
			firstErr = fmt.Errorf("undefined variable: %s", key)
			return match
		}
		return val
	})

	if firstErr != nil {
		return "", firstErr
	}
	return output, nil
}

// ResolveInstruction returns a copy of instr with its string fields resolved.
func ResolveInstruction(instr types.Instruction, vars VarContext) (types.Instruction, error) {
	var err error
	resolve := func(field, s string) string {
		if err != nil {
			return s
		}
		var out string
		out, err = ResolveStringWithContext(s, vars)
		if err != nil {
			err = fmt.Errorf("resolving %s: %w", field, err)
			return s
		}
		return out
	}

	switch in := instr.(type) {
	case types.Navigate:
		in.URL = resolve("url", in.URL)
		return in, err
	case types.Click:
		in.Selector = resolve("selector", in.Selector)
		return in, err
	case types.RandomClick:
		in.Selector = resolve("selector", in.Selector)
		if in.ExcludeText != nil {
			texts := make([]string, len(in.ExcludeText))
			for i, t := range in.ExcludeText {
				texts[i] = resolve(fmt.Sprintf("exclude_text[%d]", i), t)
			}
			in.ExcludeText = texts
		}
		return in, err
	default:
		return instr, nil
	}
}
