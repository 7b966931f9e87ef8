package presentation

import (
	"errors"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Tariff prices displayed usage. Defaults match the Greek household rate
// the dashboard was built around.
type Tariff struct {
	PricePerKWh float64 `yaml:"price_per_kwh"`
	Currency    string  `yaml:"currency"`
}

// LoadTariff loads the tariff from yaml or env. Env values override the
// defaults; a yaml file named by TARIFF_CONFIG overrides both.
func LoadTariff() (Tariff, error) {
	tariff := Tariff{
		PricePerKWh: getenvFloatDefault("PRICE_PER_KWH", 0.12),
		Currency:    getenvDefault("CURRENCY", "EUR"),
	}

	if path := os.Getenv("TARIFF_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return tariff, err
		}
		if err := yaml.Unmarshal(data, &tariff); err != nil {
			return tariff, err
		}
	}

	if tariff.PricePerKWh < 0 {
		return tariff, errors.New("presentation: negative price per kWh")
	}
	if tariff.Currency == "" {
		tariff.Currency = "EUR"
	}
	return tariff, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvFloatDefault(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
