package config

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// PostgresConfig defines the configuration for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	TimeZone string `mapstructure:"timezone"`

	// SSMPrefix is prepended to HOST, USER and PASSWORD when credentials
	// are read from the Parameter Store in prod.
	SSMPrefix string `mapstructure:"ssm_prefix"`

	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// ParameterGetter is the subset of the SSM client used to resolve credentials.
type ParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// DSN builds the connection string. In prod, host, user and password come from
// the Parameter Store; a parameter that cannot be read keeps the configured value.
func (cfg *PostgresConfig) DSN(env string) string {
	return cfg.dsnWith(env, nil)
}

func (cfg *PostgresConfig) dsnWith(env string, params ParameterGetter) string {
	host, user, password := cfg.Host, cfg.User, cfg.Password

	if env == "prod" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if params == nil {
			params = newSSMClient(ctx)
		}
		if params != nil {
			host = parameterOr(ctx, params, cfg.SSMPrefix+"HOST", host)
			user = parameterOr(ctx, params, cfg.SSMPrefix+"USER", user)
			password = parameterOr(ctx, params, cfg.SSMPrefix+"PASSWORD", password)
		}
	}

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, cfg.Port, user, password, cfg.DBName, cfg.SSLMode,
	)
	if cfg.TimeZone != "" {
		dsn += fmt.Sprintf(" TimeZone=%s", cfg.TimeZone)
	}
	return dsn
}

func newSSMClient(ctx context.Context) ParameterGetter {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil
	}
	return ssm.NewFromConfig(awsCfg)
}

func parameterOr(ctx context.Context, params ParameterGetter, name, fallback string) string {
	result, err := params.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil || result.Parameter == nil || result.Parameter.Value == nil {
		return fallback
	}
	return *result.Parameter.Value
}
