package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017/?replicaSet=rs0"
	DefaultMongoDatabaseName = "park"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultJWTTTL = 24 * time.Hour

	DefaultSlotLockTTL  = 10 * time.Second
	DefaultSlotLockWait = 3 * time.Second

	DefaultCORSAllowedOrigins = "*"

	DefaultKafkaEnabled       = false
	DefaultKafkaBookingsTopic = "park.bookings"
	DefaultKafkaBookingsDLQ   = "park.bookings.dlq"
	DefaultKafkaAuditGroupID  = "park-booking-audit"

	DefaultPaginationLimit = 100

	MinJWTSecretLength = 32
)
