package service

import (
	"ingresso-go/internal/config"
	postgresrepo "ingresso-go/internal/repository/postgres"
	redisrepo "ingresso-go/internal/repository/redis"
	"ingresso-go/internal/service/checkin"
	"ingresso-go/internal/service/events"
	"ingresso-go/internal/service/query"
	"ingresso-go/internal/service/sales"
	"ingresso-go/internal/state"
)

type Services struct {
	Events  *events.Service
	Sales   *sales.Service
	Checkin *checkin.Service
	Query   *query.Service
}

type Config struct {
	Query       query.Config
	CheckinMode config.CheckinMode
	QRSecret    string
}

func NewServices(
	store *postgresrepo.Store,
	cache *redisrepo.Cache,
	feed *redisrepo.ChangeFeed,
	mirror *state.Mirror,
	cfg Config,
) *Services {
	return &Services{
		Events:  events.New(store, cache, feed),
		Sales:   sales.New(store, cache, feed),
		Checkin: checkin.New(store, mirror, cache, feed, cfg.CheckinMode, cfg.QRSecret),
		Query:   query.New(store, cache, cfg.Query),
	}
}
