package kb

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultDisclaimer is used when the source file does not carry its own.
const defaultDisclaimer = "This information is educational and is not a substitute for " +
	"professional medical advice, diagnosis, or treatment. Always consult a qualified " +
	"healthcare provider about your symptoms."

//go:embed default.yaml
var defaultSource []byte

// ValidationError reports a structurally invalid knowledge base. It is
// returned only at load time and is fatal to startup: the application must
// not serve with a partially valid knowledge base.
type ValidationError struct {
	err error
}

func (e *ValidationError) Error() string {
	return "invalid knowledge base: " + e.err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.err
}

// source is the on-disk shape of a knowledge base file.
type source struct {
	Disclaimer  string          `yaml:"disclaimer"`
	Topics      []Topic         `yaml:"topics"`
	Emergencies []EmergencyRule `yaml:"emergencies"`
}

// Load reads and validates a knowledge base file.
func Load(path string) (*KB, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is from trusted config, not user input
	if err != nil {
		return nil, fmt.Errorf("read knowledge base: %w", err)
	}
	return Parse(data)
}

// Default returns the embedded knowledge base. The embedded source is
// covered by tests, so failure here means a broken build.
func Default() (*KB, error) {
	return Parse(defaultSource)
}

// Parse decodes and validates knowledge base YAML. Topic and emergency
// rule order is preserved from the source. Any structural problem returns
// a *ValidationError wrapping every issue found, not just the first.
func Parse(data []byte) (*KB, error) {
	var src source
	if err := yaml.Unmarshal(data, &src); err != nil {
		return nil, &ValidationError{err: fmt.Errorf("decode: %w", err)}
	}

	var errs []error

	byCategory := make(map[string]int, len(src.Topics))
	for i, t := range src.Topics {
		if strings.TrimSpace(t.Category) == "" {
			errs = append(errs, fmt.Errorf("topic %d: empty category", i))
			continue
		}
		if _, dup := byCategory[t.Category]; dup {
			errs = append(errs, fmt.Errorf("topic %q: duplicate category", t.Category))
			continue
		}
		byCategory[t.Category] = i

		if len(t.Keywords) == 0 {
			errs = append(errs, fmt.Errorf("topic %q: empty keyword list", t.Category))
		}
		for _, kw := range t.Keywords {
			if strings.TrimSpace(kw) == "" {
				errs = append(errs, fmt.Errorf("topic %q: blank keyword", t.Category))
			}
		}
		if !t.Severity.Valid() {
			errs = append(errs, fmt.Errorf("topic %q: unknown severity %q", t.Category, t.Severity))
		}
		if strings.TrimSpace(t.Response) == "" {
			errs = append(errs, fmt.Errorf("topic %q: empty response", t.Category))
		}
	}

	// Followup references can only be checked once every category is known.
	for _, t := range src.Topics {
		for _, f := range t.Followups {
			if _, ok := byCategory[f]; !ok {
				errs = append(errs, fmt.Errorf("topic %q: followup references unknown category %q", t.Category, f))
			}
		}
	}

	for i, r := range src.Emergencies {
		if len(r.Keywords) == 0 {
			errs = append(errs, fmt.Errorf("emergency rule %d: empty keyword list", i))
		}
		for _, kw := range r.Keywords {
			if strings.TrimSpace(kw) == "" {
				errs = append(errs, fmt.Errorf("emergency rule %d: blank keyword", i))
			}
		}
		if strings.TrimSpace(r.Message) == "" {
			errs = append(errs, fmt.Errorf("emergency rule %d: empty message", i))
		}
	}

	if len(errs) > 0 {
		return nil, &ValidationError{err: errors.Join(errs...)}
	}

	disclaimer := strings.TrimSpace(src.Disclaimer)
	if disclaimer == "" {
		disclaimer = defaultDisclaimer
	}

	return &KB{
		topics:      src.Topics,
		byCategory:  byCategory,
		emergencies: src.Emergencies,
		disclaimer:  disclaimer,
	}, nil
}
