package config

import "github.com/spf13/viper"

func Load() error {
	// API Configuration
	viper.SetDefault("API_ADDR", ":8080")

	// Database Configuration: "sqlite" for the file-based store, "pgx" for Postgres
	viper.SetDefault("DB_DRIVER", "sqlite")
	viper.SetDefault("DB_DSN", "file:data/telemetry.db?_time_format=sqlite")

	// MQTT ingest path
	viper.SetDefault("MQTT_BROKER", "tcp://localhost:1883")
	viper.SetDefault("MQTT_TOPIC", "telemetry/readings")

	// Battery threshold applied when a device has no registry entry
	viper.SetDefault("BATTERY_LOW_DEFAULT", 20)

	viper.AutomaticEnv()
	return nil
}

func APIAddr() string        { return viper.GetString("API_ADDR") }
func DBDriver() string       { return viper.GetString("DB_DRIVER") }
func DBDSN() string          { return viper.GetString("DB_DSN") }
func MQTTBroker() string     { return viper.GetString("MQTT_BROKER") }
func MQTTTopic() string      { return viper.GetString("MQTT_TOPIC") }
func BatteryLowDefault() int { return viper.GetInt("BATTERY_LOW_DEFAULT") }
