package cfgloader

// Options holds configuration options for Load.
type Options struct {
	// Dir holds the ${ENVIRONMENT}.yaml files. Defaults to ./config.
	Dir string
	// Environment overrides the ENVIRONMENT variable.
	Environment string
	// Silent disables logging of the loaded config.
	Silent bool
}

// Option is a functional option for configuring Load behavior.
type Option func(*Options)

// WithSilent disables config logging.
func WithSilent() Option {
	return func(o *Options) {
		o.Silent = true
	}
}

// WithDir sets the directory holding the yaml files.
func WithDir(dir string) Option {
	return func(o *Options) {
		o.Dir = dir
	}
}

// WithEnvironment selects the file without consulting ENVIRONMENT.
func WithEnvironment(env string) Option {
	return func(o *Options) {
		o.Environment = env
	}
}
