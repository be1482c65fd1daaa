package redis_client

import (
	"context"
	"strconv"

	"github.com/adjust/rmq/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/haulwatch/pkg/util"
)

var Client *redis.Client
var QueueConnection rmq.Connection

const defaultConnectionAddress = "localhost:6379"
const defaultConnectionPassword = ""
const defaultDatabase = 0

const queueConnectionTag = "haulwatch"

func Connect() error {
	address := defaultConnectionAddress
	password := defaultConnectionPassword
	database := defaultDatabase

	env := util.GetEnvironmentVariables()

	if env["HAULWATCH_REDIS_ADDRESS"] != "" {
		address = env["HAULWATCH_REDIS_ADDRESS"]
	}

	if env["HAULWATCH_REDIS_PASSWORD"] != "" {
		password = env["HAULWATCH_REDIS_PASSWORD"]
	}

	if env["HAULWATCH_REDIS_DATABASE"] != "" {
		if n, err := strconv.Atoi(env["HAULWATCH_REDIS_DATABASE"]); err == nil {
			database = n
		} else {
			return err
		}
	}

	return ConnectWithOptions(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       database,
	})
}

// ConnectWithOptions sets up the shared client and queue connection against an explicit server
func ConnectWithOptions(options *redis.Options) error {
	Client = redis.NewClient(options)

	err := Client.Ping(context.Background()).Err()
	if err != nil {
		return err
	}

	errChan := make(chan error, 10)
	go logQueueErrors(errChan)

	QueueConnection, err = rmq.OpenConnectionWithRedisClient(queueConnectionTag, Client, errChan)
	if err != nil {
		return err
	}

	log.Info().Str("address", options.Addr).Int("database", options.DB).Msg("Connected to Redis")

	return nil
}

func logQueueErrors(errChan <-chan error) {
	for err := range errChan {
		log.Error().Err(err).Msg("Redis queue error")
	}
}
