package main

import (
	"log"
	"os"
)

type config struct {
	InfluxURL    string
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string

	BrokerURL   string
	Topic       string
	ClientID    string
	Measurement string

	AggregatePath string
	HTTPAddr      string
}

func loadConfig() config {
	cfg := config{
		InfluxURL:     os.Getenv("INFLUXDB_URL"),
		InfluxToken:   os.Getenv("INFLUXDB_TOKEN"),
		InfluxOrg:     os.Getenv("INFLUXDB_ORG"),
		InfluxBucket:  os.Getenv("INFLUXDB_BUCKET"),
		BrokerURL:     os.Getenv("MQTT_BROKER_URL"),
		Topic:         os.Getenv("MQTT_TOPIC"),
		ClientID:      getenvDefault("MQTT_CLIENT_ID", "watt-matters-consumer"),
		Measurement:   os.Getenv("MEASUREMENT"),
		AggregatePath: getenvDefault("AGGREGATE_PATH", "total-watt.csv"),
		HTTPAddr:      getenvDefault("HTTP_ADDR", ":8080"),
	}

	if cfg.InfluxURL == "" {
		log.Fatal("INFLUXDB_URL is required")
	}
	if cfg.InfluxToken == "" {
		log.Fatal("INFLUXDB_TOKEN is required")
	}
	if cfg.InfluxOrg == "" {
		log.Fatal("INFLUXDB_ORG is required")
	}
	if cfg.InfluxBucket == "" {
		log.Fatal("INFLUXDB_BUCKET is required")
	}
	if cfg.BrokerURL == "" {
		log.Fatal("MQTT_BROKER_URL is required")
	}
	if cfg.Topic == "" {
		log.Fatal("MQTT_TOPIC is required")
	}
	if cfg.Measurement == "" {
		cfg.Measurement = cfg.Topic
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
