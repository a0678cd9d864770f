package testutil

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custadmin/custadmin/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

// NewRedisClient connects to REDIS_URL or skips the test.
// The client is closed when the test ends.
func NewRedisClient(t testing.TB) *redis.Client {
	t.Helper()
	opt, err := redis.ParseURL(RequireEnv(t, "REDIS_URL"))
	if err != nil {
		t.Fatalf("parse REDIS_URL: %v", err)
	}
	client := redis.NewClient(opt)
	t.Cleanup(func() { client.Close() })
	return client
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestCustomer creates a customer with sensible defaults and no
// vehicles or cards.
func NewTestCustomer(t testing.TB, userID string) model.Customer {
	t.Helper()
	return model.Customer{
		UserID:   userID,
		Username: "Customer " + userID,
		Email:    userID + "@example.com",
	}
}

// NewTestCustomerWithVehicles creates a customer owning n vehicles.
func NewTestCustomerWithVehicles(t testing.TB, userID string, n int) model.Customer {
	t.Helper()
	c := NewTestCustomer(t, userID)
	c.Vehicles = make([]model.Vehicle, n)
	for i := range c.Vehicles {
		c.Vehicles[i] = model.Vehicle{
			VehicleID:   fmt.Sprintf("%s-v%d", userID, i+1),
			PlateNumber: fmt.Sprintf("PL-%03d", i+1),
		}
	}
	return c
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
