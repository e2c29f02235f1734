package main

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const appID = "storefront"

type config struct {
	DBDSN             string   `envconfig:"db_dsn" required:"true"`
	DBMaxConnections  int      `envconfig:"db_max_connections" default:"20"`
	HTTPAddress       string   `envconfig:"http_address" default:":8080"`
	GRPCAddress       string   `envconfig:"grpc_address" default:":8081"`
	KafkaBrokers      []string `envconfig:"kafka_brokers"`
	KafkaTopic        string   `envconfig:"kafka_topic" default:"storefront.orders"`
	OtelEndpoint      string   `envconfig:"otel_endpoint"`
	OtelInsecure      bool     `envconfig:"otel_insecure"`
	FulfillmentPolicy string   `envconfig:"fulfillment_policy" default:"partial"`
	LogLevel          string   `envconfig:"log_level" default:"info"`
}

func parseEnv() (*config, error) {
	c := new(config)
	if err := envconfig.Process(appID, c); err != nil {
		return nil, errors.Wrap(err, "failed to parse env")
	}
	return c, nil
}
