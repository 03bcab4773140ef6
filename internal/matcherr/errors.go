// Package matcherr defines the error kinds the build pipeline requires, shared by
// every compilation stage (accessor, operator, extractor, matchconf) so
// that Matcher.Build can report a single path-qualified error for the
// first failure encountered while walking the configuration tree.
package matcherr

import "fmt"

// ConfigurationError wraps any build-time failure with the configuration
// path of the offending node, e.g.
// "filter[core]/filter[alerts]/ruleset[alerts]/rule[escalate]/where".
type ConfigurationError struct {
	Path  string
	Cause error
}

func (e *ConfigurationError) Error() string {
	if e.Path == "" {
		return e.Cause.Error()
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Cause)
}

func (e *ConfigurationError) Unwrap() error { return e.Cause }

// NewConfigurationError builds a ConfigurationError, wrapping cause with
// path context.
func NewConfigurationError(path string, cause error) *ConfigurationError {
	return &ConfigurationError{Path: path, Cause: cause}
}

// WithPath prefixes an existing ConfigurationError's path with segment, or
// wraps a plain error into a new one rooted at segment. Used as the config
// tree is unwound so each ancestor can prepend its own path component.
func WithPath(segment string, err error) error {
	if err == nil {
		return nil
	}
	var ce *ConfigurationError
	if asConfigurationError(err, &ce) {
		if ce.Path == "" {
			ce.Path = segment
		} else {
			ce.Path = segment + "/" + ce.Path
		}
		return ce
	}
	return &ConfigurationError{Path: segment, Cause: err}
}

func asConfigurationError(err error, target **ConfigurationError) bool {
	ce, ok := err.(*ConfigurationError)
	if !ok {
		return false
	}
	*target = ce
	return true
}

// AccessorBuildError reports a malformed "${...}" path expression.
type AccessorBuildError struct {
	Expr  string
	Cause error
}

func (e *AccessorBuildError) Error() string {
	return fmt.Sprintf("invalid accessor expression %q: %s", e.Expr, e.Cause)
}
func (e *AccessorBuildError) Unwrap() error { return e.Cause }

// InterpolatorBuildError reports a malformed interpolator template string.
type InterpolatorBuildError struct {
	Template string
	Cause    error
}

func (e *InterpolatorBuildError) Error() string {
	return fmt.Sprintf("invalid interpolator template %q: %s", e.Template, e.Cause)
}
func (e *InterpolatorBuildError) Unwrap() error { return e.Cause }

// OperatorBuildError reports a malformed operator definition (e.g. a regex
// operator whose pattern fails to compile).
type OperatorBuildError struct {
	OperatorType string
	Cause        error
}

func (e *OperatorBuildError) Error() string {
	return fmt.Sprintf("invalid %s operator: %s", e.OperatorType, e.Cause)
}
func (e *OperatorBuildError) Unwrap() error { return e.Cause }

// ExtractorBuildError reports a malformed extractor definition.
type ExtractorBuildError struct {
	VarName string
	Cause   error
}

func (e *ExtractorBuildError) Error() string {
	return fmt.Sprintf("invalid extractor for variable %q: %s", e.VarName, e.Cause)
}
func (e *ExtractorBuildError) Unwrap() error { return e.Cause }

// JsonDeserializationError reports a failure loading a configuration file.
type JsonDeserializationError struct {
	File  string
	Cause error
}

func (e *JsonDeserializationError) Error() string {
	return fmt.Sprintf("failed to parse %s: %s", e.File, e.Cause)
}
func (e *JsonDeserializationError) Unwrap() error { return e.Cause }

// InterpolatorRenderError is raised at event time inside action rendering.
// It is logged and recorded on the processed rule; it never aborts
// Process.
type InterpolatorRenderError struct {
	Template string
	Cause    error
}

func (e *InterpolatorRenderError) Error() string {
	return fmt.Sprintf("failed to render %q: %s", e.Template, e.Cause)
}
func (e *InterpolatorRenderError) Unwrap() error { return e.Cause }

// InternalSystemError indicates an invariant the engine asserts holds was
// violated — a bug, never a user configuration mistake.
type InternalSystemError struct {
	Msg string
}

func (e *InternalSystemError) Error() string { return "internal system error: " + e.Msg }
