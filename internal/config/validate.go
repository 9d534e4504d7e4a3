package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/changelog"
	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/semver"
)

// ValidationError is a configuration problem, located by line or by key.
type ValidationError struct {
	FilePath string
	Line     int
	Message  string
	Field    string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.FilePath, e.Line, e.Message)
	case e.Field != "":
		return fmt.Sprintf("%s: field '%s': %s", e.FilePath, e.Field, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
	}
}

// yamlLineError matches the "yaml: line N: msg" form of yaml.v3 syntax errors.
var yamlLineError = regexp.MustCompile(`^yaml: line (\d+): (.*)$`)

// ValidateYAMLFile checks that the file at filePath is a YAML mapping of known
// settings. A missing or blank file is valid.
func ValidateYAMLFile(filePath string) error {
	data, err := os.ReadFile(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return &ValidationError{FilePath: filePath, Message: err.Error()}
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		verr := &ValidationError{FilePath: filePath, Message: strings.TrimPrefix(err.Error(), "yaml: ")}
		if m := yamlLineError.FindStringSubmatch(err.Error()); m != nil {
			verr.Line, _ = strconv.Atoi(m[1])
			verr.Message = m[2]
		}
		return verr
	}
	if len(doc.Content) == 0 {
		return nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return &ValidationError{FilePath: filePath, Line: root.Line, Message: "expected a mapping of settings"}
	}
	known := GetDefaults()
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i]
		if _, ok := known[key.Value]; !ok {
			return &ValidationError{
				FilePath: filePath,
				Line:     key.Line,
				Message:  fmt.Sprintf("unknown setting %q (known: %s)", key.Value, strings.Join(knownKeys(), ", ")),
			}
		}
	}
	return nil
}

func knownKeys() []string {
	keys := make([]string, 0, len(GetDefaults()))
	for key := range GetDefaults() {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ValidateConfigValues checks the merged configuration. Struct constraints are
// reported under their file keys; the placeholder and preamble get changelog
// specific checks.
func ValidateConfigValues(cfg *Configuration, filePath string) error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		return strings.SplitN(field.Tag.Get("koanf"), ",", 2)[0]
	})

	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return &ValidationError{
				FilePath: filePath,
				Field:    fieldErrs[0].Field(),
				Message:  describeFieldError(fieldErrs[0]),
			}
		}
		return &ValidationError{FilePath: filePath, Message: err.Error()}
	}

	if strings.ContainsAny(cfg.Placeholder, " \t\r\n") {
		return &ValidationError{FilePath: filePath, Field: "placeholder", Message: "must be a single token without whitespace"}
	}
	if semver.IsValid(cfg.Placeholder) {
		return &ValidationError{FilePath: filePath, Field: "placeholder", Message: "must not look like a version"}
	}
	if err := changelog.CheckPreamble(cfg.Preamble, cfg.ChangelogFormat()); err != nil {
		return &ValidationError{FilePath: filePath, Field: "preamble", Message: err.Error()}
	}

	return nil
}

func describeFieldError(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fieldErr.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fieldErr.Param(), " ", ", "))
	default:
		return fmt.Sprintf("failed validation: %s", fieldErr.Tag())
	}
}
