package redis

import (
	"context"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/richxcame/waste-chat/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestNewRedisClient_Unreachable(t *testing.T) {
	cfg := &config.RedisConfig{Host: "127.0.0.1", Port: "1"}

	client, err := NewRedisClient(context.Background(), cfg)

	assert.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "unable to connect to redis at 127.0.0.1:1")
}

func TestNewRedisClient_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client, err := NewRedisClient(ctx, &config.RedisConfig{Host: "127.0.0.1", Port: "6379"})

	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestClient_Ping(t *testing.T) {
	db, mock := redismock.NewClientMock()
	client := &Client{Client: db}

	mock.ExpectPing().SetVal("PONG")
	assert.NoError(t, client.Ping(context.Background()))

	mock.ExpectPing().SetErr(assert.AnError)
	assert.Error(t, client.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
