// Package cfgloader loads and validates configuration at the start of an application.
package cfgloader

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/code19m/errx"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rise-and-shine/catalog/logger"
	"github.com/rise-and-shine/catalog/mask"
)

const (
	EnvProduction = "production"
	EnvStaging    = "staging"
	EnvDev        = "dev"
	EnvLocal      = "local"
	EnvTest       = "test"
)

const CodeInvalidConfig = "INVALID_CONFIG"

// MustLoad is Load that exits the process on failure.
func MustLoad[T any](opts ...Option) T {
	config, err := Load[T](opts...)
	if err != nil {
		logger.Fatalx(err)
	}
	return config
}

// Load reads ${dir}/${ENVIRONMENT}.yaml, expands environment variables in
// it, applies `default` tags and validates the result.
//
// A .env file in the working directory is loaded first, if present.
//
// Example:
//
//	type Config struct {
//	    Host     string `yaml:"host" validate:"required"`
//	    Port     int    `yaml:"port" default:"8080"`
//	    Password string `yaml:"password" mask:"true"`
//	}
func Load[T any](opts ...Option) (T, error) {
	var config T

	o := Options{Dir: "./config"}
	for _, opt := range opts {
		opt(&o)
	}

	if reflect.ValueOf(config).Kind() == reflect.Ptr {
		return config, invalid("arg config must not be a pointer", nil)
	}

	_ = godotenv.Load()

	env := o.Environment
	if env == "" {
		env = os.Getenv("ENVIRONMENT")
	}
	if !slices.Contains([]string{EnvProduction, EnvStaging, EnvDev, EnvLocal, EnvTest}, env) {
		return config, invalid(
			"ENVIRONMENT env variable is not set or invalid. Choices are: production, staging, dev, local, test",
			errx.D{"environment": env},
		)
	}

	path := filepath.Join(o.Dir, env+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return config, errx.Wrap(err, errx.WithCode(CodeInvalidConfig), errx.WithDetails(errx.D{"path": path}))
	}

	if err = yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &config); err != nil {
		return config, errx.Wrap(err, errx.WithCode(CodeInvalidConfig), errx.WithDetails(errx.D{"path": path}))
	}

	if err = defaults.Set(&config); err != nil {
		return config, errx.Wrap(err, errx.WithCode(CodeInvalidConfig))
	}

	if err = validateConfig(&config, env); err != nil {
		return config, err
	}

	if !o.Silent {
		printConfig(config, env)
	}
	return config, nil
}

func validateConfig(config any, env string) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.Struct(config)

	failedFields := make([]string, 0)
	if errs, ok := err.(validator.ValidationErrors); ok { //nolint: errorlint // Using type assertion for validator errors handling
		for _, err := range errs {
			tagErr := err.Tag()
			if err.Param() != "" {
				tagErr += fmt.Sprintf("=%s", err.Param())
			}
			failedFields = append(failedFields, fmt.Sprintf("%s: %s", err.Namespace(), tagErr))
		}
	}

	if len(failedFields) > 0 {
		return invalid(
			fmt.Sprintf("invalid fields in %s config -> %s", env, strings.Join(failedFields, ",  ")),
			nil,
		)
	}
	return nil
}

// printConfig logs the loaded config with `mask:"true"` fields hidden.
func printConfig(config any, env string) {
	var b strings.Builder
	for pair := mask.StructToOrdMap(config).Oldest(); pair != nil; pair = pair.Next() {
		fmt.Fprintf(&b, "\n  %s: %v", pair.Key, pair.Value)
	}
	logger.Named("cfgloader").Infof("loaded %s config:%s", env, b.String())
}

func invalid(msg string, details errx.D) error {
	return errx.New("[cfgloader]: "+msg, errx.WithCode(CodeInvalidConfig), errx.WithDetails(details))
}
