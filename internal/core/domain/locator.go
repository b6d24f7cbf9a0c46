package domain

// Locator identifies a tool configuration, either by file path or inline.
// The set of implementations is closed: PathLocator and InlineConfig.
type Locator interface {
	isLocator()
}

// PathLocator is a configuration stored in a file.
type PathLocator string

func (PathLocator) isLocator() {}

// String returns the path.
func (p PathLocator) String() string {
	return string(p)
}

// InlineConfig is a configuration given as a mapping.
type InlineConfig map[string]any

func (InlineConfig) isLocator() {}

// AsPath narrows a Locator to a PathLocator.
// It fails with ErrConfigNotPath for inline configurations and nil locators.
func AsPath(l Locator) (PathLocator, error) {
	p, ok := l.(PathLocator)
	if !ok {
		return "", ErrConfigNotPath
	}
	return p, nil
}

// IsInline reports whether the locator carries an inline configuration.
func IsInline(l Locator) bool {
	_, ok := l.(InlineConfig)
	return ok
}
