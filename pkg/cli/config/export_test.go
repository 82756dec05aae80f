package config

// Export for testing

func (a *AppConfig) SetPath(path string) {
	a.path = path
}
